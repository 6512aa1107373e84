package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
	"github.com/Makepad-fr/itemdesk/internal/session"
	"github.com/Makepad-fr/itemdesk/internal/store/jsonstore"
	"github.com/Makepad-fr/itemdesk/internal/ui"
)

func (rt *runtime) loginCmd() *cobra.Command {
	var cred model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if !cmd.Flags().Changed("email") {
				if cred.Email, err = rt.prompt("Email: "); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("password") {
				if cred.Password, err = rt.promptSecret("Password: "); err != nil {
					return err
				}
			}
			if errs := form.ValidateLogin(cred); !errs.OK() {
				return rt.fieldErrors(errs)
			}

			res, err := rt.client.Login(cmd.Context(), cred)
			if err != nil {
				// a 401 here means bad credentials, not an expired session
				rt.log.Info("login failed", "error", err)
				ui.Fail(rt.err, api.Message(err, "Invalid email or password"))
				return exitCode(exitError)
			}
			s, err := session.New(res.Token)
			if err != nil {
				return err
			}
			if err := rt.store.Save(s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			ui.OK(rt.out, "Login successful!")
			if res.User != nil && res.User.Name != "" {
				ui.Hint(rt.out, "Signed in as "+res.User.Name+" <"+res.User.Email+">")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cred.Email, "email", "", "account email (prompted when omitted)")
	cmd.Flags().StringVar(&cred.Password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (rt *runtime) registerCmd() *cobra.Command {
	var reg model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			for _, p := range []struct {
				flag, label string
				dst         *string
				secret      bool
			}{
				{"name", "Full name: ", &reg.Name, false},
				{"email", "Email: ", &reg.Email, false},
				{"password", "Password: ", &reg.Password, true},
			} {
				if cmd.Flags().Changed(p.flag) {
					continue
				}
				read := rt.prompt
				if p.secret {
					read = rt.promptSecret
				}
				if *p.dst, err = read(p.label); err != nil {
					return err
				}
			}
			if errs := form.ValidateRegister(reg); !errs.OK() {
				return rt.fieldErrors(errs)
			}
			if err := rt.client.Register(cmd.Context(), reg); err != nil {
				return rt.apiFailure(err, "Registration failed. Please try again.")
			}
			ui.OK(rt.out, "Registration successful!")
			ui.Hint(rt.out, "Run: itemdesk login --email "+reg.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password, at least 6 characters")
	return cmd
}

func (rt *runtime) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.store.Load()
			if err != nil {
				return err
			}
			switch {
			case s == nil:
				ui.OK(rt.out, "not logged in")
				return nil
			case s.Source == session.SourceEnv:
				ui.OK(rt.out, "token is provided by "+jsonstore.TokenEnv+" env var (nothing to delete)")
				return nil
			}
			if err := rt.store.Clear(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(rt.out, "logged out")
			return nil
		},
	}
}

func (rt *runtime) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the session comes from and when it expires",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.store.Load()
			if err != nil {
				return err
			}
			t := ui.Current()
			if s == nil {
				fmt.Fprintln(rt.out, ui.C(t.Muted, "not logged in"))
				fmt.Fprintln(rt.out, "Run: itemdesk login")
				return nil
			}
			fmt.Fprintf(rt.out, "api: %s\n", rt.cfg.APIURL)
			fmt.Fprintf(rt.out, "source: %s\n", s.Source)
			if s.Source == session.SourceFile {
				fmt.Fprintf(rt.out, "file: %s\n", rt.store.Path())
			}
			exp := s.ExpiresAt
			if exp == nil {
				if c, err := session.ParseClaims(s.Token); err == nil {
					exp = c.ExpiresAt
				}
			}
			switch {
			case exp == nil:
				fmt.Fprintln(rt.out, "expires: (unknown)")
			case time.Now().After(*exp):
				fmt.Fprintf(rt.out, "expires: %s %s\n", exp.UTC().Format(time.RFC3339), ui.C(t.Warn, "(expired)"))
			default:
				fmt.Fprintf(rt.out, "expires: %s\n", exp.UTC().Format(time.RFC3339))
			}
			fmt.Fprintf(rt.out, "env override: %s\n", jsonstore.TokenEnv)
			return nil
		},
	}
}

// whoami decodes the JWT locally without checking its signature.
func (rt *runtime) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity carried by the session token",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.NewGuard(rt.store).Check()
			if err != nil {
				return err
			}
			c, err := session.ParseClaims(s.Token)
			if err != nil {
				fmt.Fprintln(rt.out, "Opaque token (cannot introspect locally).")
				fmt.Fprintln(rt.out, "source:", s.Source)
				return nil
			}
			t := ui.Current()
			lines := []string{ui.C(t.Title, "Session")}
			add := func(k, v string) {
				if v != "" {
					lines = append(lines, fmt.Sprintf("%s %s", ui.C(t.Muted, fmt.Sprintf("%-8s", k+":")), v))
				}
			}
			add("subject", c.Subject)
			add("name", c.Name)
			add("email", c.Email)
			add("issuer", c.Issuer)
			if c.IssuedAt != nil {
				add("issued", c.IssuedAt.UTC().Format(time.RFC3339))
			}
			if c.ExpiresAt != nil {
				exp := c.ExpiresAt.UTC().Format(time.RFC3339)
				if c.Expired(time.Now()) {
					exp += " " + ui.C(t.Warn, "(expired)")
				}
				add("expires", exp)
			}
			add("source", s.Source)
			ui.Panel(rt.out, lines)
			return nil
		},
	}
}
