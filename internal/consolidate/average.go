// Package consolidate combines indicator records across operators and
// periods: averages, trends, targets and rankings.
package consolidate

import (
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Average returns the per-indicator mean of records, rounded with Round to
// each indicator's consolidation places. The period is taken from
// the first record. ok is false for an empty list.
func Average(records []model.IndicatorRecord) (model.ConsolidatedRecord, bool) {
	if len(records) == 0 {
		return model.ConsolidatedRecord{}, false
	}

	n := decimal.NewFromInt(int64(len(records)))
	values := make(map[model.Indicator]float64, len(model.Indicators()))
	for _, ind := range model.Indicators() {
		sum := decimal.Zero
		for _, r := range records {
			sum = sum.Add(decimal.NewFromFloat(r.Value(ind)))
		}
		values[ind] = Round(sum.Div(n), ind)
	}

	return model.ConsolidatedRecord{
		Year:      records[0].Year,
		Quarter:   records[0].Quarter,
		Ratios:    ratiosFrom(values),
		Operators: len(records),
	}, true
}

var half = decimal.New(5, -1)

// Round rounds v to the indicator's places. Whole-day indicators round half
// up (-0.5 becomes 0); fractional places round half away from zero.
func Round(v decimal.Decimal, ind model.Indicator) float64 {
	places := ind.Info().Places
	if places == 0 {
		return v.Add(half).Floor().InexactFloat64()
	}
	return v.Round(places).InexactFloat64()
}

func ratiosFrom(v map[model.Indicator]float64) model.Ratios {
	return model.Ratios{
		MLL:  v[model.MLL],
		ROE:  v[model.ROE],
		DM:   v[model.DM],
		DA:   v[model.DA],
		DC:   v[model.DC],
		DOP:  v[model.DOP],
		IRF:  v[model.IRF],
		LC:   v[model.LC],
		CTCP: v[model.CTCP],
		PMCR: v[model.PMCR],
		PMPE: v[model.PMPE],
	}
}
