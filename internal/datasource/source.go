// Package datasource defines the collaborator that supplies ledger entries,
// the operator roster and covered-lives counts.
package datasource

import (
	"context"
	"errors"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// ErrNotConfigured is returned when no usable data source settings exist.
var ErrNotConfigured = errors.New("data source not configured")

// Filter narrows a ledger query. Zero values match everything.
type Filter struct {
	OperatorID string
	Year       int
	Quarter    int
}

// ForPeriod returns a filter for one operator and period.
func ForPeriod(operatorID string, p model.Period) Filter {
	return Filter{OperatorID: operatorID, Year: p.Year, Quarter: p.Quarter}
}

// Match reports whether an entry satisfies the filter.
func (f Filter) Match(e model.LedgerEntry) bool {
	if f.OperatorID != "" && e.OperatorID != f.OperatorID {
		return false
	}
	if f.Year != 0 && e.Period.Year != f.Year {
		return false
	}
	if f.Quarter != 0 && e.Period.Quarter != f.Quarter {
		return false
	}
	return true
}

// Source is implemented by every backing store.
type Source interface {
	// LedgerEntries returns the entries matching f.
	LedgerEntries(ctx context.Context, f Filter) ([]model.LedgerEntry, error)
	// ActiveOperators returns operators that have not been deregistered.
	ActiveOperators(ctx context.Context) ([]model.Operator, error)
	// CoveredLives returns the beneficiary count for an operator and period.
	// ok is false when the count is unknown.
	CoveredLives(ctx context.Context, operatorID string, p model.Period) (count int64, ok bool, err error)
	// Metadata describes the most recent ledger upload.
	Metadata(ctx context.Context) (model.Metadata, bool, error)
}
