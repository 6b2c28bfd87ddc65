package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

func TestCalculate_ExpenseRatios(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("A001", q4_2024, "receita de contraprestações", 1_000_000),
		entry("A001", q4_2024, "eventos indenizáveis líquidos", 680_000),
		entry("A001", q4_2024, "despesas administrativas", 150_000),
	}

	rec, ok := Calculate("A001", q4_2024, entries)
	require.True(t, ok)
	assert.Equal(t, "A001", rec.OperatorID)
	assert.Equal(t, q4_2024, rec.Period())
	assert.InDelta(t, 68.0, rec.DM, 1e-9)
	assert.InDelta(t, 15.0, rec.DA, 1e-9)
	assert.InDelta(t, 83.0, rec.DOP, 1e-9)
	assert.Nil(t, rec.CoveredLives)
}

func TestCalculate_ZeroEquityGuarded(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("A001", q4_2024, "receita de contraprestações", 1_000_000),
		entry("A001", q4_2024, "lucro líquido", 10_000),
		entry("A001", q4_2024, "capital de terceiros", 300_000),
		entry("A001", q4_2024, "patrimônio líquido", 0),
	}

	rec, ok := Calculate("A001", q4_2024, entries)
	require.True(t, ok)
	assert.Zero(t, rec.ROE)
	assert.Zero(t, rec.CTCP)
	assert.InDelta(t, 1.0, rec.MLL, 1e-9)
}

func TestCalculate_NoRevenue(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("B002", q4_2024, "despesas com marketing", 500),
	}
	_, ok := Calculate("B002", q4_2024, entries)
	assert.False(t, ok)

	_, ok = Calculate("B002", q4_2024, nil)
	assert.False(t, ok)
}

func TestCalculate_NegativeRevenue(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("C003", q4_2024, "receita total", -10),
		entry("C003", q4_2024, "receita de contraprestações", -5),
	}
	_, ok := Calculate("C003", q4_2024, entries)
	assert.False(t, ok)
}

func TestCalculate_AllRatios(t *testing.T) {
	rec, ok := Calculate("A001", q4_2024, fullLedger("A001", q4_2024))
	require.True(t, ok)

	want := model.Ratios{
		MLL:  8,
		ROE:  20,
		DM:   70,
		DA:   10,
		DC:   4,
		DOP:  84,
		IRF:  3,
		LC:   1.5,
		CTCP: 75,
		PMCR: 9,
		PMPE: 18,
	}
	for _, ind := range model.Indicators() {
		assert.InDelta(t, want.Value(ind), rec.Value(ind), 1e-9, "indicator %s", ind)
	}
}

func TestCalculate_TotalRevenueTakesLargerBasis(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("A001", q4_2024, "receita total", 2_000_000),
		entry("A001", q4_2024, "receita de contraprestações", 1_000_000),
		entry("A001", q4_2024, "despesas administrativas", 100_000),
		entry("A001", q4_2024, "eventos indenizáveis líquidos", 500_000),
	}

	rec, ok := Calculate("A001", q4_2024, entries)
	require.True(t, ok)
	assert.InDelta(t, 5.0, rec.DA, 1e-9)
	assert.InDelta(t, 50.0, rec.DM, 1e-9)
}

func TestCalculate_DivisionSafety(t *testing.T) {
	// revenue only from TOTAL_REVENUE: revContrib, medExp, liabilities and
	// equity are all zero
	entries := []model.LedgerEntry{
		entry("A001", q4_2024, "receita total", 1_000),
		entry("A001", q4_2024, "contas a receber", 10),
		entry("A001", q4_2024, "provisão para eventos a liquidar", 10),
		entry("A001", q4_2024, "ativo circulante", 10),
		entry("A001", q4_2024, "passivo circulante", -10),
	}

	rec, ok := Calculate("A001", q4_2024, entries)
	require.True(t, ok)
	for _, ind := range model.Indicators() {
		v := rec.Value(ind)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "indicator %s is %v", ind, v)
	}
	assert.Zero(t, rec.DM)
	assert.Zero(t, rec.PMCR)
	assert.Zero(t, rec.PMPE)
	assert.Zero(t, rec.LC)
	assert.Zero(t, rec.ROE)
	assert.Zero(t, rec.CTCP)
}
