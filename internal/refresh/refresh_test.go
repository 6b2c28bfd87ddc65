package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/runlog"
)

var q4 = model.Period{Year: 2024, Quarter: 4}

// countingSource counts roster lookups, one per period computation.
type countingSource struct {
	*datasource.Memory
	rosterCalls atomic.Int32
}

func (s *countingSource) ActiveOperators(ctx context.Context) ([]model.Operator, error) {
	s.rosterCalls.Add(1)
	return s.Memory.ActiveOperators(ctx)
}

func newSource() *countingSource {
	entries := []model.LedgerEntry{
		{OperatorID: "A001", Period: q4, Description: "Receita de Contraprestações", ClosingBalance: decimal.NewFromInt(1000)},
		{OperatorID: "A001", Period: q4, Description: "Despesas Administrativas", ClosingBalance: decimal.NewFromInt(100)},
	}
	return &countingSource{Memory: datasource.NewMemory(entries, []model.Operator{{ID: "A001"}})}
}

func TestCache_PeriodComputesOnce(t *testing.T) {
	src := newSource()
	c := New(indicators.NewService(src, indicators.Options{}), Options{})

	res, err := c.Period(context.Background(), q4)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	again, err := c.Period(context.Background(), q4)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, again.RunID)
	assert.Equal(t, int32(1), src.rosterCalls.Load())
	assert.Equal(t, []model.Period{q4}, c.Cached())
}

func TestCache_RefreshReplaces(t *testing.T) {
	src := newSource()
	c := New(indicators.NewService(src, indicators.Options{}), Options{})

	first, err := c.Period(context.Background(), q4)
	require.NoError(t, err)
	second, err := c.Refresh(context.Background(), q4)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	cached, err := c.Period(context.Background(), q4)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, cached.RunID)

	c.Invalidate(q4)
	assert.Empty(t, c.Cached())
}

func TestCache_WritesRunLog(t *testing.T) {
	dir := t.TempDir()
	c := New(indicators.NewService(newSource(), indicators.Options{}), Options{RunLogDir: dir})

	res, err := c.Refresh(context.Background(), q4)
	require.NoError(t, err)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.RunID, entries[0].RunID)
	assert.Equal(t, "2024Q4", entries[0].Period)
	assert.Equal(t, 1, entries[0].Included)
}

func TestCache_ErrorNotCached(t *testing.T) {
	src := newSource()
	c := New(indicators.NewService(src, indicators.Options{}), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Period(ctx, q4)
	require.Error(t, err)
	assert.Empty(t, c.Cached())
}

// failingSource fails every roster lookup.
type failingSource struct {
	*datasource.Memory
}

func (failingSource) ActiveOperators(context.Context) ([]model.Operator, error) {
	return nil, errors.New("connection refused")
}

func TestCache_SourceErrorNotCached(t *testing.T) {
	c := New(indicators.NewService(failingSource{datasource.NewMemory(nil, nil)}, indicators.Options{}), Options{})

	_, err := c.Refresh(context.Background(), q4)
	require.ErrorContains(t, err, "connection refused")
	assert.Empty(t, c.Cached())
}

// blockingSource holds roster lookups until release is closed.
type blockingSource struct {
	*countingSource
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) ActiveOperators(ctx context.Context) ([]model.Operator, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.countingSource.ActiveOperators(ctx)
}

func TestCache_RefreshSurvivesFirstCallerCancel(t *testing.T) {
	src := &blockingSource{
		countingSource: newSource(),
		entered:        make(chan struct{}, 1),
		release:        make(chan struct{}),
	}
	c := New(indicators.NewService(src, indicators.Options{}), Options{})

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Refresh(first, q4)
		firstErr <- err
	}()
	<-src.entered

	type outcome struct {
		res indicators.PeriodResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := c.Refresh(context.Background(), q4)
		second <- outcome{res, err}
	}()
	// Give the second caller time to join the running computation.
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.res.Records, 1)
	assert.Equal(t, int32(1), src.rosterCalls.Load())
	assert.Equal(t, []model.Period{q4}, c.Cached())
}

func TestCache_RunScheduledUsesLatestPeriod(t *testing.T) {
	c := New(indicators.NewService(newSource(), indicators.Options{}), Options{})

	c.runScheduled(context.Background(), model.Period{})
	assert.Equal(t, []model.Period{q4}, c.Cached())
}

func TestCache_RunScheduledNoData(t *testing.T) {
	empty := &countingSource{Memory: datasource.NewMemory(nil, nil)}
	c := New(indicators.NewService(empty, indicators.Options{}), Options{})

	c.runScheduled(context.Background(), model.Period{})
	assert.Empty(t, c.Cached())
	assert.Equal(t, int32(0), empty.rosterCalls.Load())
}

func TestCache_Schedule(t *testing.T) {
	c := New(indicators.NewService(newSource(), indicators.Options{}), Options{})

	_, err := c.Schedule("not a cron spec", q4)
	require.Error(t, err)

	id, err := c.Schedule("@every 1h", q4)
	require.NoError(t, err)
	assert.NotZero(t, id)

	c.Start()
	c.Stop()
}
