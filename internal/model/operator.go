package model

import "time"

// Operator is a health-plan operator from the regulator's registry.
type Operator struct {
	ID             string
	LegalName      string
	TradeName      string
	Municipality   string
	Region         string // commercialization region, free text
	State          string // two-letter UF, "BR" when unknown
	DeregisteredOn *time.Time
}

// DisplayName returns the trade name, falling back to the legal name.
func (o Operator) DisplayName() string {
	if o.TradeName != "" {
		return o.TradeName
	}
	return o.LegalName
}

// Active reports whether the operator has not been deregistered.
func (o Operator) Active() bool {
	return o.DeregisteredOn == nil
}

// Metadata describes the most recent ledger upload known to a data source.
type Metadata struct {
	LatestPeriod Period    `json:"latest_period"`
	LatestDate   time.Time `json:"latest_date"`
	OperatorID   string    `json:"operator_id"`
	SourceFile   string    `json:"source_file"`
}
