package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/api"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/refresh"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	var schedule string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the indicator JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if schedule != "" {
				a.cfg.Server.RefreshSchedule = schedule
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&schedule, "refresh", "", "cron spec for refreshing the latest period (overrides server.refresh_schedule)")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	svc, err := a.service(nil)
	if err != nil {
		return err
	}

	cache := refresh.New(svc, refresh.Options{
		Logger:    a.log,
		RunLogDir: a.cfg.RunLog.Dir,
	})
	if spec := a.cfg.Server.RefreshSchedule; spec != "" {
		if _, err := cache.Schedule(spec, model.Period{}); err != nil {
			return err
		}
		cache.Start()
		defer cache.Stop()
	}

	handler := api.New(svc, api.Options{
		Periods: cache,
		Targets: a.cfg.TargetValues(),
		Logger:  a.log,
	}).Handler()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorLog:     slog.NewLogLogger(a.log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(a.log, "server shutdown failed", err)
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
