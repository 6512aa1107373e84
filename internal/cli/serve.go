package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdesk/internal/devserver"
	"github.com/Makepad-fr/itemdesk/internal/logging"
	"github.com/Makepad-fr/itemdesk/internal/tui"
	"github.com/Makepad-fr/itemdesk/internal/ui"
)

func (rt *runtime) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui [route]",
		Short: "Start the interactive client (routes: /login, /register, /dashboard)",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			start := tui.RouteRoot
			if len(a) == 1 {
				start = a[0]
			}
			err := tui.Run(tui.Deps{
				Backend: rt.client,
				Session: rt.store,
				Delays:  rt.cfg.UIConfig,
				Log:     rt.log,
			}, start)
			if err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
}

func (rt *runtime) devserverCmd() *cobra.Command {
	var (
		addr   string
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory items API for local use",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the server owns the terminal, so it logs there
			log := logging.NewWriter(rt.err, rt.cfg.LogLevel)
			srv := &http.Server{
				Addr: addr,
				Handler: devserver.New(devserver.Options{
					Secret:   secret,
					TokenTTL: ttl,
					Logger:   log,
				}).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			ui.OK(rt.out, "dev API listening on "+addr+"/api")

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("devserver: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (random when empty)")
	cmd.Flags().DurationVar(&ttl, "token-ttl", time.Hour, "lifetime of issued tokens")
	return cmd
}
