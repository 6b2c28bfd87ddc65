package indicators

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/vcollos/dashboard-rn518/internal/classify"
	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/period"
)

// DefaultConcurrency is the number of operators processed at once.
const DefaultConcurrency = 4

// diagnosticSample is how many descriptions are logged when an operator has
// no usable revenue.
const diagnosticSample = 10

// DefaultHistoryPeriods returns the built-in history candidates in lookup
// order, most recent first.
func DefaultHistoryPeriods() []model.Period {
	return []model.Period{
		{Year: 2024, Quarter: 4},
		{Year: 2024, Quarter: 3},
		{Year: 2024, Quarter: 2},
		{Year: 2024, Quarter: 1},
		{Year: 2023, Quarter: 4},
	}
}

// Options configures a Service.
type Options struct {
	// Concurrency bounds CalculatePeriod fan-out. Values below 1 use
	// DefaultConcurrency.
	Concurrency int
	// HistoryPeriods are the BuildHistory candidates in lookup order.
	// When empty, HistoryDepth quarters back from the latest known period
	// are used instead.
	HistoryPeriods []model.Period
	HistoryDepth   int
	Classifier     *classify.Classifier
	Logger         *slog.Logger
	// Progress, if set, is called after each operator of a period run.
	Progress func(done, total int)
}

// Service computes indicator records from a data source.
type Service struct {
	src  datasource.Source
	opts Options
	log  *slog.Logger
}

// NewService creates a Service over src.
func NewService(src datasource.Source, opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Service{src: src, opts: opts, log: log}
}

// Source returns the underlying data source.
func (s *Service) Source() datasource.Source {
	return s.src
}

// CalculateIndicators computes the record for one operator and period.
// ok is false when there are no entries or no positive revenue.
func (s *Service) CalculateIndicators(ctx context.Context, operatorID string, p model.Period) (model.IndicatorRecord, bool, error) {
	entries, err := s.src.LedgerEntries(ctx, datasource.ForPeriod(operatorID, p))
	if err != nil {
		return model.IndicatorRecord{}, false, fmt.Errorf("fetching entries for %s %s: %w", operatorID, p, err)
	}
	if len(entries) == 0 {
		s.log.Info("no ledger entries", "operator_id", operatorID, "period", p.String())
		return model.IndicatorRecord{}, false, nil
	}

	rec, ok := CalculateWith(s.opts.Classifier, operatorID, p, entries)
	if !ok {
		s.log.Info("no positive revenue", "operator_id", operatorID, "period", p.String(), "entries", len(entries))
		if s.log.Enabled(ctx, slog.LevelDebug) {
			s.log.Debug("sample descriptions", "operator_id", operatorID, "descriptions", sampleDescriptions(entries))
		}
		return model.IndicatorRecord{}, false, nil
	}

	lives, found, err := s.src.CoveredLives(ctx, operatorID, p)
	switch {
	case err != nil:
		s.log.Debug("covered lives lookup failed", "operator_id", operatorID, "period", p.String(), "error", err)
	case found:
		rec.CoveredLives = &lives
	}
	return rec, true, nil
}

func sampleDescriptions(entries []model.LedgerEntry) []string {
	n := min(len(entries), diagnosticSample)
	out := make([]string, n)
	for i := range n {
		out[i] = entries[i].Description
	}
	return out
}

// PeriodResult is the outcome of one period run.
type PeriodResult struct {
	RunID    string
	Period   model.Period
	Records  []model.IndicatorRecord // roster order
	Included int
	Excluded int // no result
	Failed   int // data source errors
	Failures error
	Duration time.Duration
}

type slot struct {
	rec model.IndicatorRecord
	ok  bool
}

// CalculatePeriod computes records for every active operator. Failures of
// individual operators are counted and combined in Failures; only a roster
// failure or cancellation is returned as an error.
func (s *Service) CalculatePeriod(ctx context.Context, p model.Period) (PeriodResult, error) {
	start := time.Now()
	res := PeriodResult{RunID: uuid.NewString(), Period: p}
	log := s.log.With("run_id", res.RunID, "period", p.String())

	ops, err := s.src.ActiveOperators(ctx)
	if err != nil {
		return res, fmt.Errorf("listing active operators: %w", err)
	}

	slots := make([]slot, len(ops))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, op := range ops {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, ok, err := s.CalculateIndicators(gctx, op.ID, p)

			mu.Lock()
			defer mu.Unlock()
			done++
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res.Failed++
				res.Failures = multierr.Append(res.Failures, err)
				log.Debug("operator processed", "operator_id", op.ID, "outcome", "failed", "error", err)
			case ok:
				slots[i] = slot{rec: rec, ok: true}
				log.Debug("operator processed", "operator_id", op.ID, "outcome", "included")
			default:
				res.Excluded++
				log.Debug("operator processed", "operator_id", op.ID, "outcome", "excluded")
			}
			if s.opts.Progress != nil {
				s.opts.Progress(done, len(ops))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, sl := range slots {
		if sl.ok {
			res.Records = append(res.Records, sl.rec)
		}
	}
	res.Included = len(res.Records)
	res.Duration = time.Since(start)

	logging.LogOperation(log, "period calculated",
		slog.Int("operators", len(ops)),
		slog.Int("included", res.Included),
		slog.Int("excluded", res.Excluded),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

// HistoryCandidates returns the periods BuildHistory will look up, most
// recent first.
func (s *Service) HistoryCandidates(ctx context.Context) ([]model.Period, error) {
	if len(s.opts.HistoryPeriods) > 0 {
		return append([]model.Period(nil), s.opts.HistoryPeriods...), nil
	}
	if s.opts.HistoryDepth <= 0 {
		return DefaultHistoryPeriods(), nil
	}
	meta, ok, err := s.src.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return period.Lookback(meta.LatestPeriod, s.opts.HistoryDepth), nil
}

// BuildHistory returns the operator's records over the candidate periods in
// ascending order. Periods without a result, or whose lookup fails, are
// skipped. Only cancellation is reported as an error.
func (s *Service) BuildHistory(ctx context.Context, operatorID string) ([]model.IndicatorRecord, error) {
	candidates, err := s.HistoryCandidates(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.LogError(s.log, "history candidates unavailable", err, slog.String("operator_id", operatorID))
		return nil, nil
	}

	var history []model.IndicatorRecord
	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, ok, err := s.CalculateIndicators(ctx, operatorID, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.LogError(s.log, "history lookup failed", err,
				slog.String("operator_id", operatorID), slog.String("period", p.String()))
			continue
		}
		if ok {
			history = append(history, rec)
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Period().Before(history[j].Period())
	})
	return history, nil
}
