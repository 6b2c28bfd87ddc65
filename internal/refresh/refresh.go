// Package refresh caches period results and recomputes them on a schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/runlog"
)

// Options configures a Cache.
type Options struct {
	Logger *slog.Logger
	// RunLogDir, if set, receives one run log row per computation.
	RunLogDir string
	// Timeout bounds every recomputation. Zero means ten minutes.
	Timeout time.Duration
	// Location for cron schedules. Nil means time.Local.
	Location *time.Location
}

// Cache holds the latest PeriodResult per period.
type Cache struct {
	svc  *indicators.Service
	opts Options
	log  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	results map[model.Period]indicators.PeriodResult

	cron *cron.Cron
}

// New creates a Cache over svc.
func New(svc *indicators.Service, opts Options) *Cache {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Cache{
		svc:     svc,
		opts:    opts,
		log:     log,
		results: make(map[model.Period]indicators.PeriodResult),
		cron:    cron.New(cron.WithLocation(opts.Location)),
	}
}

// Service returns the wrapped indicator service.
func (c *Cache) Service() *indicators.Service {
	return c.svc
}

// Period returns the cached result for p, computing it on first use.
// Concurrent callers for the same period share one computation.
func (c *Cache) Period(ctx context.Context, p model.Period) (indicators.PeriodResult, error) {
	c.mu.RLock()
	res, ok := c.results[p]
	c.mu.RUnlock()
	if ok {
		return res, nil
	}
	return c.Refresh(ctx, p)
}

// Refresh recomputes p and replaces the cached result. Concurrent callers
// share one computation, which runs detached from any single caller and is
// bounded by Options.Timeout; each caller stops waiting when its own ctx
// is done.
func (c *Cache) Refresh(ctx context.Context, p model.Period) (indicators.PeriodResult, error) {
	if err := ctx.Err(); err != nil {
		return indicators.PeriodResult{}, err
	}
	ch := c.group.DoChan(p.String(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.Timeout)
		defer cancel()

		res, err := c.svc.CalculatePeriod(runCtx, p)
		if err != nil {
			return indicators.PeriodResult{}, err
		}
		c.mu.Lock()
		c.results[p] = res
		c.mu.Unlock()

		if c.opts.RunLogDir != "" {
			if err := runlog.Append(c.opts.RunLogDir, []runlog.Entry{runlog.FromResult(res, time.Now())}); err != nil {
				logging.LogError(c.log, "run log append failed", err, slog.String("period", p.String()))
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return indicators.PeriodResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return indicators.PeriodResult{}, r.Err
		}
		return r.Val.(indicators.PeriodResult), nil
	}
}

// Invalidate drops the cached result for p.
func (c *Cache) Invalidate(p model.Period) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, p)
}

// Cached lists the periods currently held.
func (c *Cache) Cached() []model.Period {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Period, 0, len(c.results))
	for p := range c.results {
		out = append(out, p)
	}
	return out
}

// LatestPeriod returns the most recent period known to the data source.
func (c *Cache) LatestPeriod(ctx context.Context) (model.Period, bool, error) {
	meta, ok, err := c.svc.Source().Metadata(ctx)
	if err != nil {
		return model.Period{}, false, fmt.Errorf("reading metadata: %w", err)
	}
	return meta.LatestPeriod, ok, nil
}

// Schedule recomputes p on the cron spec. A zero period refreshes the
// latest period known to the data source at each run.
func (c *Cache) Schedule(spec string, p model.Period) (cron.EntryID, error) {
	id, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
		defer cancel()
		c.runScheduled(ctx, p)
	})
	if err != nil {
		return 0, fmt.Errorf("scheduling refresh %q: %w", spec, err)
	}
	return id, nil
}

func (c *Cache) runScheduled(ctx context.Context, p model.Period) {
	target := p
	if target == (model.Period{}) {
		latest, ok, err := c.LatestPeriod(ctx)
		if err != nil {
			logging.LogError(c.log, "scheduled refresh skipped", err)
			return
		}
		if !ok {
			c.log.Info("scheduled refresh skipped: no ledger data")
			return
		}
		target = latest
	}

	res, err := c.Refresh(ctx, target)
	if err != nil {
		logging.LogError(c.log, "scheduled refresh failed", err, slog.String("period", target.String()))
		return
	}
	logging.LogOperation(c.log, "scheduled refresh finished",
		slog.String("period", target.String()),
		slog.String("run_id", res.RunID),
		slog.Int("included", res.Included))
}

// Start runs the scheduler in the background.
func (c *Cache) Start() {
	c.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (c *Cache) Stop() {
	<-c.cron.Stop().Done()
}
