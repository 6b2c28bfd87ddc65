package datasource

import (
	"context"
	"sync"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

type livesKey struct {
	operatorID string
	period     model.Period
}

// Memory is a Source over in-memory slices. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	entries   []model.LedgerEntry
	operators []model.Operator
	lives     map[livesKey]int64
}

// NewMemory creates a Memory source with the given entries and operators.
func NewMemory(entries []model.LedgerEntry, operators []model.Operator) *Memory {
	return &Memory{
		entries:   entries,
		operators: operators,
		lives:     make(map[livesKey]int64),
	}
}

// SetCoveredLives records a beneficiary count.
func (m *Memory) SetCoveredLives(operatorID string, p model.Period, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lives[livesKey{operatorID, p}] = count
}

// LedgerEntries implements Source.
func (m *Memory) LedgerEntries(ctx context.Context, f Filter) ([]model.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.LedgerEntry
	for _, e := range m.entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ActiveOperators implements Source. Roster order is preserved.
func (m *Memory) ActiveOperators(ctx context.Context) ([]model.Operator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Operator
	for _, op := range m.operators {
		if op.Active() {
			out = append(out, op)
		}
	}
	return out, nil
}

// CoveredLives implements Source.
func (m *Memory) CoveredLives(ctx context.Context, operatorID string, p model.Period) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.lives[livesKey{operatorID, p}]
	return n, ok, nil
}

// Metadata implements Source. The latest entry by period wins; ties keep the
// first entry seen.
func (m *Memory) Metadata(ctx context.Context) (model.Metadata, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Metadata{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		latest model.LedgerEntry
		found  bool
	)
	for _, e := range m.entries {
		if !found || latest.Period.Before(e.Period) {
			latest = e
			found = true
		}
	}
	if !found {
		return model.Metadata{}, false, nil
	}
	return model.Metadata{
		LatestPeriod: latest.Period,
		OperatorID:   latest.OperatorID,
		SourceFile:   latest.SourceFile,
	}, true, nil
}
