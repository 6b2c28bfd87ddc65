package consolidate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Ranked is one operator's position for an indicator.
type Ranked struct {
	Position   int     `json:"position"`
	OperatorID string  `json:"operator_id"`
	Value      float64 `json:"value"`
}

// Rank orders records best first by the indicator's direction. Values are
// compared rounded to two places; ties keep input order.
func Rank(records []model.IndicatorRecord, ind model.Indicator) []Ranked {
	out := make([]Ranked, len(records))
	for i, r := range records {
		v := decimal.NewFromFloat(r.Value(ind)).Round(2).InexactFloat64()
		out[i] = Ranked{OperatorID: r.OperatorID, Value: v}
	}

	lower := ind.Info().Direction == model.LowerIsBetter
	sort.SliceStable(out, func(i, j int) bool {
		if lower {
			return out[i].Value < out[j].Value
		}
		return out[i].Value > out[j].Value
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
