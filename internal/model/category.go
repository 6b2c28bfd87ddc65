package model

// Category is a semantic bucket ledger entries are classified into.
type Category string

const (
	CategoryRevenueContributions Category = "REVENUE_CONTRIBUTIONS"
	CategoryTotalRevenue         Category = "TOTAL_REVENUE"
	CategoryFinancialRevenue     Category = "FINANCIAL_REVENUE"
	CategoryMedicalExpense       Category = "MEDICAL_EXPENSE"
	CategoryAdminExpense         Category = "ADMIN_EXPENSE"
	CategoryCommercialExpense    Category = "COMMERCIAL_EXPENSE"
	CategoryFinancialExpense     Category = "FINANCIAL_EXPENSE"
	CategoryEquity               Category = "EQUITY"
	CategoryNetIncome            Category = "NET_INCOME"
	CategoryCurrentAssets        Category = "CURRENT_ASSETS"
	CategoryCurrentLiabilities   Category = "CURRENT_LIABILITIES"
	CategoryThirdPartyCapital    Category = "THIRD_PARTY_CAPITAL"
	CategoryReceivables          Category = "RECEIVABLES"
	CategoryPayablesEvents       Category = "PAYABLES_EVENTS"
	CategoryUncategorized        Category = "UNCATEGORIZED"
)
