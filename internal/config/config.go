package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIURL is used when nothing overrides api_url.
const DefaultAPIURL = "http://localhost:5000/api"

type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CredentialsDir string        `mapstructure:"credentials_dir"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
	Theme          string        `mapstructure:"theme"`
	UIConfig       `mapstructure:",squash"`
}

// UIConfig holds the page controller delays.
type UIConfig struct {
	LoginRedirectDelay    time.Duration `mapstructure:"login_redirect_delay"`
	RegisterRedirectDelay time.Duration `mapstructure:"register_redirect_delay"`
	BannerTTL             time.Duration `mapstructure:"banner_ttl"`
}

// New returns a viper instance with defaults, env bindings and config
// search paths set. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	home, _ := os.UserHomeDir()
	credDir := filepath.Join(home, ".itemdesk")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("credentials_dir", credDir)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("theme", "classic")
	v.SetDefault("login_redirect_delay", time.Second)
	v.SetDefault("register_redirect_delay", 2*time.Second)
	v.SetDefault("banner_ttl", 3*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath(credDir)

	v.SetEnvPrefix("itemdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// API_URL is the historical name of the base URL override.
	_ = v.BindEnv("api_url", "ITEMDESK_API_URL", "API_URL")

	return v
}

// Load reads the optional config file (file may name one explicitly) and
// unmarshals everything into a Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: unsupported scheme %q", u.Scheme)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout: must not be negative")
	}
	if c.CredentialsDir == "" {
		return fmt.Errorf("credentials_dir: empty")
	}
	return nil
}
