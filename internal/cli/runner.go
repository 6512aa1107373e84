// Package cli is the non-interactive face of itemdesk: one cobra command
// per API operation plus the ui and devserver entry points.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/config"
	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/logging"
	"github.com/Makepad-fr/itemdesk/internal/session"
	"github.com/Makepad-fr/itemdesk/internal/store/jsonstore"
	"github.com/Makepad-fr/itemdesk/internal/ui"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks bad invocations (flags, arguments, invalid input).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

// exitCode is returned by commands that already told the user what went
// wrong.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// runtime is what the commands share once flags and config are resolved.
type runtime struct {
	v       *viper.Viper
	cfgFile string
	noColor bool

	stdin io.Reader
	in    *bufio.Reader
	out   io.Writer
	err   io.Writer

	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	store  *jsonstore.Store
	client *api.Client
}

// Run executes the command line in args and returns the process exit
// code (0 ok, 1 error, 2 usage).
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rt := &runtime{
		v:     config.New(),
		stdin: stdin,
		in:    bufio.NewReader(stdin),
		out:   stdout,
		err:   stderr,
	}
	root := rt.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if rt.closer != nil {
		rt.closer.Close()
	}
	return rt.exit(err)
}

func (rt *runtime) exit(err error) int {
	var code exitCode
	var usage usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &code):
		return int(code)
	case errors.Is(err, api.ErrUnauthorized):
		ui.Fail(rt.err, "session expired, run `itemdesk login`")
		return exitError
	case errors.Is(err, session.ErrNoSession):
		ui.Fail(rt.err, "not logged in")
		ui.Hint(rt.err, "Run: itemdesk login")
		return exitUsage
	case errors.As(err, &usage), strings.HasPrefix(err.Error(), "unknown command"):
		ui.Fail(rt.err, err.Error())
		ui.Hint(rt.err, "Run: itemdesk --help")
		return exitUsage
	default:
		ui.Fail(rt.err, err.Error())
		return exitError
	}
}

func (rt *runtime) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "itemdesk",
		Short:         "Terminal client for the items API",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.cfgFile, "config", "", "config file (default ./config.yml or ~/.itemdesk/config.yml)")
	pf.String("api-url", config.DefaultAPIURL, "API base URL")
	pf.String("theme", "classic", "output theme: classic, neon or mono")
	pf.String("log-file", "", "write JSON logs to this file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&rt.noColor, "no-color", false, "disable ANSI colors")
	for key, name := range map[string]string{
		"api_url":   "api-url",
		"theme":     "theme",
		"log_file":  "log-file",
		"log_level": "log-level",
	} {
		_ = rt.v.BindPFlag(key, pf.Lookup(name))
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(rt.loginCmd())
	root.AddCommand(rt.registerCmd())
	root.AddCommand(rt.logoutCmd())
	root.AddCommand(rt.statusCmd())
	root.AddCommand(rt.whoamiCmd())
	root.AddCommand(rt.itemsCmd())
	root.AddCommand(rt.uiCmd())
	root.AddCommand(rt.devserverCmd())
	return root
}

// setup resolves config, logging, the session store and the API client.
func (rt *runtime) setup() error {
	cfg, err := config.Load(rt.v, rt.cfgFile)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	ui.SetColorForcing(false, rt.noColor)
	ui.SetTheme(cfg.Theme)

	log, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	rt.log, rt.closer = log, closer

	rt.store = jsonstore.New(cfg.CredentialsDir)
	rt.client = api.New(api.Options{
		BaseURL: cfg.APIURL,
		Session: rt.store,
		Timeout: cfg.Timeout,
		Logger:  log,
	})
	rt.log.Debug("cli ready", "api_url", cfg.APIURL, "credentials", rt.store.Path())
	return nil
}

// args wraps a cobra positional-args check so that failures exit with the
// usage code.
func args(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := check(cmd, a); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// prompt reads one line from stdin after printing label. EOF yields "".
func (rt *runtime) prompt(label string) (string, error) {
	fmt.Fprint(rt.out, label)
	line, err := rt.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret is prompt without echo when stdin is a terminal.
func (rt *runtime) promptSecret(label string) (string, error) {
	f, ok := rt.stdin.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return rt.prompt(label)
	}
	fmt.Fprint(rt.out, label)
	b, err := term.ReadPassword(f.Fd())
	fmt.Fprintln(rt.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// fieldErrors prints every validation error and returns the usage code.
func (rt *runtime) fieldErrors(errs form.Errors) error {
	ui.Fail(rt.err, "invalid input")
	for _, f := range errs.Fields() {
		ui.FieldError(rt.err, f, errs.Get(f))
	}
	return exitCode(exitUsage)
}

// apiFailure reports a failed request. 401s are left to exit, everything
// else shows the server message or fallback.
func (rt *runtime) apiFailure(err error, fallback string) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	rt.log.Info("request failed", "status", api.StatusOf(err), "error", err)
	ui.Fail(rt.err, api.Message(err, fallback))
	return exitCode(exitError)
}
