package consolidate

import (
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Variation returns the percentage change from previous to current.
// ok is false when previous is zero.
func Variation(current, previous float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	cur := decimal.NewFromFloat(current)
	prev := decimal.NewFromFloat(previous)
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64(), true
}

// Previous picks the record current is compared against: the same year's
// previous quarter or the previous year's fourth quarter, whichever is
// later.
func Previous(history []model.IndicatorRecord, current model.Period) (model.IndicatorRecord, bool) {
	var (
		best  model.IndicatorRecord
		found bool
	)
	for _, r := range history {
		p := r.Period()
		sameYear := p.Year == current.Year && p.Quarter == current.Quarter-1
		lastYearQ4 := p.Year == current.Year-1 && p.Quarter == 4
		if !sameYear && !lastYearQ4 {
			continue
		}
		if !found || best.Period().Before(p) {
			best = r
			found = true
		}
	}
	return best, found
}

// Trend is one indicator's latest value against the comparison period.
type Trend struct {
	Indicator model.Indicator `json:"indicator"`
	Period    string          `json:"period"`
	Current   float64         `json:"current"`
	Previous  *float64        `json:"previous,omitempty"`
	Variation *float64        `json:"variation,omitempty"` // percent
	Improved  *bool           `json:"improved,omitempty"`  // nil when unchanged
}

// Trends reports every indicator of the latest record in history against
// its comparison record. An empty history yields nil.
func Trends(history []model.IndicatorRecord) []Trend {
	if len(history) == 0 {
		return nil
	}
	latest := history[0]
	for _, r := range history[1:] {
		if latest.Period().Before(r.Period()) {
			latest = r
		}
	}
	prev, hasPrev := Previous(history, latest.Period())

	trends := make([]Trend, 0, len(model.Indicators()))
	for _, ind := range model.Indicators() {
		t := Trend{
			Indicator: ind,
			Period:    latest.Period().String(),
			Current:   latest.Value(ind),
		}
		if hasPrev {
			pv := prev.Value(ind)
			t.Previous = &pv
			if v, ok := Variation(t.Current, pv); ok {
				t.Variation = &v
			}
			if t.Current != pv {
				better := t.Current > pv
				if ind.Info().Direction == model.LowerIsBetter {
					better = !better
				}
				t.Improved = &better
			}
		}
		trends = append(trends, t)
	}
	return trends
}
