package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/config"
	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/datasource/files"
	"github.com/vcollos/dashboard-rn518/internal/datasource/postgres"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/ledger"
	"github.com/vcollos/dashboard-rn518/internal/logging"
)

// app is the per-invocation wiring of config, logger and data source.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	src   datasource.Source
	close func()
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyEnv(opts.envFile); err != nil {
		return nil, err
	}
	// Relative directories in the config file are relative to the file.
	base := filepath.Dir(opts.configPath)
	cfg.DataSource.Dir = resolvePath(base, cfg.DataSource.Dir)
	cfg.RunLog.Dir = resolvePath(base, cfg.RunLog.Dir)
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.dataDir != "" {
		cfg.DataSource.Driver = config.DriverFiles
		cfg.DataSource.Dir = opts.dataDir
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	log := logging.NewStructuredLogger(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	src, closeFn, err := openSource(cmd.Context(), cfg.DataSource, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, src: src, close: closeFn}, nil
}

func openSource(ctx context.Context, ds config.DataSourceConfig, log *slog.Logger) (datasource.Source, func(), error) {
	switch ds.Driver {
	case config.DriverPostgres:
		src, err := postgres.Open(ctx, ds.DSN, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres source: %w", err)
		}
		return src, src.Close, nil
	case config.DriverFiles:
		format := ds.LedgerFormat
		if format == "" {
			format = "canonical"
		}
		parser := ledger.DefaultRegistry(ds.Encoding).Get(format)
		if parser == nil {
			return nil, nil, fmt.Errorf("unknown ledger format %q", format)
		}
		src, err := files.New(ds.Dir, parser)
		if err != nil {
			return nil, nil, fmt.Errorf("opening files source: %w", err)
		}
		return src, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown datasource driver %q", ds.Driver)
	}
}

// service builds an indicator service from the loaded config.
func (a *app) service(progress func(done, total int)) (*indicators.Service, error) {
	periods, err := a.cfg.HistoryPeriods()
	if err != nil {
		return nil, err
	}
	return indicators.NewService(a.src, indicators.Options{
		Concurrency:    a.cfg.Processing.Concurrency,
		HistoryPeriods: periods,
		HistoryDepth:   a.cfg.History.Depth,
		Logger:         a.log,
		Progress:       progress,
	}), nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
