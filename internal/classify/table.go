package classify

import "github.com/vcollos/dashboard-rn518/internal/model"

// Rule binds a category to its ordered pattern phrases.
type Rule struct {
	Category model.Category
	Patterns []string
}

// defaultRules is the hand-curated account mapping. Rule order and pattern
// order decide which category wins when several could match, so neither may
// be reordered without changing published figures.
var defaultRules = []Rule{
	{Category: model.CategoryRevenueContributions, Patterns: []string{
		"receita de contraprestações",
		"contraprestações pecuniárias",
		"receita de mensalidades",
		"receita operacional",
		"contraprestação",
		"mensalidade",
		"receitas de contraprestacoes",
		"contraprestacoes",
	}},
	{Category: model.CategoryTotalRevenue, Patterns: []string{
		"receita total",
		"receita operacional total",
		"receitas totais",
		"total das receitas",
		"receita bruta",
		"faturamento",
		"receitas operacionais",
	}},
	{Category: model.CategoryFinancialRevenue, Patterns: []string{
		"receitas financeiras",
		"receita financeira",
		"aplicações financeiras",
		"rendimento de aplicações",
		"juros recebidos",
		"resultado financeiro positivo",
		"rendimento financeiro",
	}},
	{Category: model.CategoryMedicalExpense, Patterns: []string{
		"eventos indenizáveis líquidos",
		"despesas médicas",
		"despesas com eventos",
		"sinistralidade",
		"despesas assistenciais",
		"custos assistenciais",
		"eventos médicos",
		"despesas com sinistros",
		"custos médicos",
		"eventos indenizaveis",
	}},
	{Category: model.CategoryAdminExpense, Patterns: []string{
		"despesas administrativas",
		"despesas gerais",
		"despesas operacionais administrativas",
		"outras despesas administrativas",
		"despesas de administração",
		"custos administrativos",
		"despesas admin",
	}},
	{Category: model.CategoryCommercialExpense, Patterns: []string{
		"despesas comerciais",
		"despesas de comercialização",
		"despesas com vendas",
		"comissões de vendas",
		"marketing",
		"publicidade",
		"despesas de vendas",
	}},
	{Category: model.CategoryFinancialExpense, Patterns: []string{
		"despesas financeiras",
		"despesa financeira",
		"encargos financeiros",
		"juros pagos",
		"resultado financeiro negativo",
		"custos financeiros",
	}},
	{Category: model.CategoryEquity, Patterns: []string{
		"patrimônio líquido",
		"capital social",
		"reservas",
		"total do patrimônio líquido",
		"patrimonio liquido",
		"pl",
	}},
	{Category: model.CategoryNetIncome, Patterns: []string{
		"lucro líquido",
		"resultado líquido",
		"resultado do exercício",
		"lucro do período",
		"lucro liquido",
		"ll",
		"resultado liquido",
	}},
	{Category: model.CategoryCurrentAssets, Patterns: []string{
		"ativo circulante",
		"total do ativo circulante",
		"disponibilidades",
		"aplicações",
		"caixa e equivalentes",
		"ac",
	}},
	{Category: model.CategoryCurrentLiabilities, Patterns: []string{
		"passivo circulante",
		"total do passivo circulante",
		"eventos a pagar",
		"obrigações correntes",
		"pc",
	}},
	{Category: model.CategoryThirdPartyCapital, Patterns: []string{
		"capital de terceiros",
		"passivo total",
		"total do passivo",
		"empréstimos e financiamentos",
		"dívidas",
		"financiamentos",
	}},
	{Category: model.CategoryReceivables, Patterns: []string{
		"contraprestações a receber",
		"mensalidades a receber",
		"créditos de contraprestações",
		"contas a receber",
		"clientes",
	}},
	{Category: model.CategoryPayablesEvents, Patterns: []string{
		"eventos a pagar",
		"provisão para eventos a liquidar",
		"despesas médicas a pagar",
		"provisões técnicas",
		"fornecedores médicos",
	}},
}

// Categories returns the classifiable categories in declaration order.
func Categories() []model.Category {
	cats := make([]model.Category, len(defaultRules))
	for i, r := range defaultRules {
		cats[i] = r.Category
	}
	return cats
}

// DefaultTable returns a copy of the built-in rules with patterns as declared.
func DefaultTable() []Rule {
	rules := make([]Rule, len(defaultRules))
	for i, r := range defaultRules {
		rules[i] = Rule{Category: r.Category, Patterns: append([]string(nil), r.Patterns...)}
	}
	return rules
}
