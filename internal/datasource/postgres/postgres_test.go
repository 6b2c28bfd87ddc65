package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

func TestLedgerQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    datasource.Filter
		wantWhere string
		wantArgs  []any
	}{
		{"all", datasource.Filter{}, "", nil},
		{"operator", datasource.Filter{OperatorID: "316458"}, "WHERE reg_ans = $1", []any{"316458"}},
		{
			"operator and period",
			datasource.ForPeriod("316458", model.Period{Year: 2024, Quarter: 4}),
			"WHERE reg_ans = $1 AND ano = $2 AND trimestre = $3",
			[]any{"316458", 2024, 4},
		},
		{"quarter only", datasource.Filter{Quarter: 2}, "WHERE trimestre = $1", []any{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := ledgerQuery(tt.filter)
			assert.Contains(t, sql, "FROM demonstracoes_financeiras")
			if tt.wantWhere == "" {
				assert.NotContains(t, sql, "WHERE")
			} else {
				assert.Contains(t, sql, tt.wantWhere)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestLedgerQuery_NullableColumnsCoalesced(t *testing.T) {
	sql, _ := ledgerQuery(datasource.Filter{})
	for _, col := range []string{
		"COALESCE(cd_conta_contabil::text, '')",
		"COALESCE(vl_saldo_inicial, 0)::text",
		"COALESCE(vl_saldo_final, 0)::text",
		"COALESCE(arquivo_origem, '')",
	} {
		assert.Contains(t, sql, col)
	}
}

func TestLedgerRowEntry(t *testing.T) {
	desc := "Eventos Indenizáveis Líquidos"
	r := ledgerRow{
		OperatorID:  "316458",
		AccountCode: "41",
		Description: &desc,
		Opening:     "0",
		Closing:     "875210.10",
		SourceFile:  "4T2024.csv",
		Year:        2024,
		Quarter:     4,
	}

	e, err := r.entry()
	require.NoError(t, err)
	assert.Equal(t, "316458", e.OperatorID)
	assert.Equal(t, model.Period{Year: 2024, Quarter: 4}, e.Period)
	assert.Equal(t, desc, e.Description)
	assert.Equal(t, "875210.10", e.ClosingBalance.StringFixed(2))

	r.Description = nil
	e, err = r.entry()
	require.NoError(t, err)
	assert.Empty(t, e.Description)

	r.Closing = "NaN"
	_, err = r.entry()
	assert.ErrorContains(t, err, "vl_saldo_final")
}

func TestOperatorRow(t *testing.T) {
	op := operatorRow{ID: "316458", LegalName: "COOPERATIVA ALFA", Region: "Grande Curitiba - PR"}.operator()
	assert.Equal(t, "PR", op.State)
	assert.Equal(t, "N/A", op.Municipality)
	assert.Equal(t, "COOPERATIVA ALFA", op.DisplayName())
	assert.True(t, op.Active())

	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	op = operatorRow{ID: "1", LegalName: "X", TradeName: "Y", City: "Natal", Deregistered: &d}.operator()
	assert.Equal(t, "BR", op.State)
	assert.Equal(t, "Natal", op.Municipality)
	assert.Equal(t, "Y", op.DisplayName())
	assert.False(t, op.Active())
}

func TestOpen_NotConfigured(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.ErrorIs(t, err, datasource.ErrNotConfigured)
}
