// Package indicators turns classified ledger entries into RN 518 ratios and
// runs the calculation across operators and periods.
package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/classify"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Sum adds the closing balances of every entry classified as category.
// A nil classifier uses the built-in table.
func Sum(entries []model.LedgerEntry, category model.Category, c *classify.Classifier) decimal.Decimal {
	if c == nil {
		c = classify.Default()
	}
	total := decimal.Zero
	for _, e := range entries {
		if c.Classify(e.Description) == category {
			total = total.Add(e.ClosingBalance)
		}
	}
	return total
}

// Totals classifies entries once and returns the closing-balance sum per
// category. Categories with no entries are absent and read as zero.
func Totals(entries []model.LedgerEntry, c *classify.Classifier) map[model.Category]decimal.Decimal {
	if c == nil {
		c = classify.Default()
	}
	totals := make(map[model.Category]decimal.Decimal)
	for _, e := range entries {
		cat := c.Classify(e.Description)
		totals[cat] = totals[cat].Add(e.ClosingBalance)
	}
	return totals
}
