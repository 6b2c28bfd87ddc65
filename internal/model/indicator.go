package model

import "fmt"

// Direction tells whether larger values of an indicator are favorable.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// Indicator names one of the eleven RN 518 ratios.
type Indicator string

const (
	MLL  Indicator = "mll"  // net margin, %
	ROE  Indicator = "roe"  // return on equity, %
	DM   Indicator = "dm"   // loss ratio, %
	DA   Indicator = "da"   // administrative expenses, %
	DC   Indicator = "dc"   // commercial expenses, %
	DOP  Indicator = "dop"  // operating expenses, %
	IRF  Indicator = "irf"  // financial result, %
	LC   Indicator = "lc"   // current ratio
	CTCP Indicator = "ctcp" // third-party over own capital, %
	PMCR Indicator = "pmcr" // average collection period, days
	PMPE Indicator = "pmpe" // average payment period, days
)

// IndicatorInfo is the static description of an indicator.
type IndicatorInfo struct {
	Name      string
	Unit      string
	Direction Direction
	Places    int32 // rounding places used by consolidation
}

var indicatorInfo = map[Indicator]IndicatorInfo{
	MLL:  {Name: "Margem de Lucro Líquida", Unit: "%", Direction: HigherIsBetter, Places: 1},
	ROE:  {Name: "Retorno sobre Patrimônio Líquido", Unit: "%", Direction: HigherIsBetter, Places: 1},
	DM:   {Name: "Sinistralidade", Unit: "%", Direction: LowerIsBetter, Places: 1},
	DA:   {Name: "Despesas Administrativas", Unit: "%", Direction: LowerIsBetter, Places: 1},
	DC:   {Name: "Despesas Comerciais", Unit: "%", Direction: LowerIsBetter, Places: 1},
	DOP:  {Name: "Despesas Operacionais", Unit: "%", Direction: LowerIsBetter, Places: 1},
	IRF:  {Name: "Resultado Financeiro", Unit: "%", Direction: HigherIsBetter, Places: 1},
	LC:   {Name: "Liquidez Corrente", Unit: "", Direction: HigherIsBetter, Places: 2},
	CTCP: {Name: "Capital de Terceiros sobre Capital Próprio", Unit: "%", Direction: LowerIsBetter, Places: 1},
	PMCR: {Name: "Prazo Médio de Contraprestações a Receber", Unit: "days", Direction: LowerIsBetter, Places: 0},
	PMPE: {Name: "Prazo Médio de Pagamento de Eventos", Unit: "days", Direction: LowerIsBetter, Places: 0},
}

// Indicators lists the eleven ratios in regulatory order.
func Indicators() []Indicator {
	return []Indicator{MLL, ROE, DM, DA, DC, DOP, IRF, LC, CTCP, PMCR, PMPE}
}

// Info returns the static description of an indicator.
func (i Indicator) Info() IndicatorInfo {
	return indicatorInfo[i]
}

// ParseIndicator validates an indicator key such as "mll".
func ParseIndicator(s string) (Indicator, error) {
	ind := Indicator(s)
	if _, ok := indicatorInfo[ind]; !ok {
		return "", fmt.Errorf("unknown indicator %q", s)
	}
	return ind, nil
}

// Ratios holds the eleven indicator values.
type Ratios struct {
	MLL  float64 `json:"mll" yaml:"mll,omitempty"`
	ROE  float64 `json:"roe" yaml:"roe,omitempty"`
	DM   float64 `json:"dm" yaml:"dm,omitempty"`
	DA   float64 `json:"da" yaml:"da,omitempty"`
	DC   float64 `json:"dc" yaml:"dc,omitempty"`
	DOP  float64 `json:"dop" yaml:"dop,omitempty"`
	IRF  float64 `json:"irf" yaml:"irf,omitempty"`
	LC   float64 `json:"lc" yaml:"lc,omitempty"`
	CTCP float64 `json:"ctcp" yaml:"ctcp,omitempty"`
	PMCR float64 `json:"pmcr" yaml:"pmcr,omitempty"`
	PMPE float64 `json:"pmpe" yaml:"pmpe,omitempty"`
}

// Value returns the ratio for an indicator key. Unknown keys yield 0.
func (r Ratios) Value(ind Indicator) float64 {
	switch ind {
	case MLL:
		return r.MLL
	case ROE:
		return r.ROE
	case DM:
		return r.DM
	case DA:
		return r.DA
	case DC:
		return r.DC
	case DOP:
		return r.DOP
	case IRF:
		return r.IRF
	case LC:
		return r.LC
	case CTCP:
		return r.CTCP
	case PMCR:
		return r.PMCR
	case PMPE:
		return r.PMPE
	}
	return 0
}

// IndicatorRecord is the result of the calculator for one operator and period.
type IndicatorRecord struct {
	OperatorID   string `json:"operator_id"`
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	Ratios
	CoveredLives *int64 `json:"covered_lives,omitempty"`
}

// Period returns the record's quarter.
func (r IndicatorRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}

// ConsolidatedRecord is the mean of several records of the same period.
type ConsolidatedRecord struct {
	Year      int `json:"year"`
	Quarter   int `json:"quarter"`
	Ratios
	Operators int `json:"operators"`
}

// Period returns the record's quarter.
func (r ConsolidatedRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}
