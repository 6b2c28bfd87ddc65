package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

var (
	q4_2024 = model.Period{Year: 2024, Quarter: 4}
	q3_2024 = model.Period{Year: 2024, Quarter: 3}
	q4_2023 = model.Period{Year: 2023, Quarter: 4}
)

func entry(op string, p model.Period, desc string, closing int64) model.LedgerEntry {
	return model.LedgerEntry{
		OperatorID:     op,
		Period:         p,
		Description:    desc,
		ClosingBalance: decimal.NewFromInt(closing),
	}
}

// fullLedger exercises every category with round numbers.
func fullLedger(op string, p model.Period) []model.LedgerEntry {
	return []model.LedgerEntry{
		entry(op, p, "Receita de Contraprestações", 1_000_000),
		entry(op, p, "Receitas Financeiras", 50_000),
		entry(op, p, "Despesas Financeiras", 20_000),
		entry(op, p, "Eventos Indenizáveis Líquidos", 700_000),
		entry(op, p, "Despesas Administrativas", 100_000),
		entry(op, p, "Despesas Comerciais", 40_000),
		entry(op, p, "Patrimônio Líquido", 400_000),
		entry(op, p, "Lucro Líquido", 80_000),
		entry(op, p, "Ativo Circulante", 600_000),
		entry(op, p, "Passivo Circulante", 400_000),
		entry(op, p, "Capital de Terceiros", 300_000),
		entry(op, p, "Contas a Receber", 100_000),
		entry(op, p, "Provisão para Eventos a Liquidar", 140_000),
	}
}
