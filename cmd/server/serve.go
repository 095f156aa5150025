package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warp/erp-engine/api"
	"github.com/warp/erp-engine/auth"
	"github.com/warp/erp-engine/generic"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the ERP API server.
The schema is migrated before the listener opens. On SIGINT or SIGTERM the
server stops accepting connections and waits for in-flight requests up to
server.shutdown_timeout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.store.Close()

			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	clock := generic.SystemClock{}
	handler := api.NewHandler(a.store, api.Deps{
		Tokens:        auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL, clock),
		Clock:         clock,
		Log:           a.log,
		AllowNegative: a.cfg.Inventory.AllowNegative,
	})
	router := api.NewRouter(handler, api.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		LoginRate:      a.cfg.Auth.LoginRate,
		LoginBurst:     a.cfg.Auth.LoginBurst,
		Scenarios:      a.cfg.Server.Scenarios,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Bool("scenarios", a.cfg.Server.Scenarios).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("server stopped")
	return nil
}
