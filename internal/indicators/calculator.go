package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/classify"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

var (
	hundred    = decimal.NewFromInt(100)
	ninetyDays = decimal.NewFromInt(90)
)

// Calculate derives the eleven ratios for one operator and period with the
// built-in classification table. ok is false when the operator has no
// positive revenue.
func Calculate(operatorID string, p model.Period, entries []model.LedgerEntry) (model.IndicatorRecord, bool) {
	return CalculateWith(classify.Default(), operatorID, p, entries)
}

// CalculateWith is Calculate with an explicit classifier.
func CalculateWith(c *classify.Classifier, operatorID string, p model.Period, entries []model.LedgerEntry) (model.IndicatorRecord, bool) {
	t := Totals(entries, c)

	revContrib := t[model.CategoryRevenueContributions]
	totalRevenue := decimal.Max(t[model.CategoryTotalRevenue], revContrib)
	if !totalRevenue.IsPositive() {
		return model.IndicatorRecord{}, false
	}

	medExp := t[model.CategoryMedicalExpense]
	adminExp := t[model.CategoryAdminExpense]
	commExp := t[model.CategoryCommercialExpense]
	equity := t[model.CategoryEquity]
	netIncome := t[model.CategoryNetIncome]

	r := model.Ratios{
		MLL:  percent(netIncome, totalRevenue),
		ROE:  percent(netIncome, equity),
		DM:   percent(medExp, revContrib),
		DA:   percent(adminExp, totalRevenue),
		DC:   percent(commExp, totalRevenue),
		DOP:  percent(adminExp.Add(commExp).Add(medExp), totalRevenue),
		IRF:  percent(t[model.CategoryFinancialRevenue].Sub(t[model.CategoryFinancialExpense]), totalRevenue),
		LC:   ratio(t[model.CategoryCurrentAssets], t[model.CategoryCurrentLiabilities]),
		CTCP: percent(t[model.CategoryThirdPartyCapital], equity),
		PMCR: days(t[model.CategoryReceivables], revContrib),
		PMPE: days(t[model.CategoryPayablesEvents], medExp),
	}

	return model.IndicatorRecord{
		OperatorID: operatorID,
		Year:       p.Year,
		Quarter:    p.Quarter,
		Ratios:     r,
	}, true
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den decimal.Decimal) float64 {
	if !den.IsPositive() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}

func percent(num, den decimal.Decimal) float64 {
	return ratio(num.Mul(hundred), den)
}

// days expresses a balance in days of the quarterly flow den.
func days(balance, flow decimal.Decimal) float64 {
	return ratio(balance.Mul(ninetyDays), flow)
}
