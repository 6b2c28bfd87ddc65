package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Period identifies a fiscal quarter.
type Period struct {
	Year    int
	Quarter int // 1..4
}

// String formats the period as "2024Q4".
func (p Period) String() string {
	return fmt.Sprintf("%04dQ%d", p.Year, p.Quarter)
}

// Valid reports whether the quarter is in range and the year is positive.
func (p Period) Valid() bool {
	return p.Year > 0 && p.Quarter >= 1 && p.Quarter <= 4
}

// Before reports whether p is chronologically earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// Previous returns the quarter immediately before p.
func (p Period) Previous() Period {
	if p.Quarter <= 1 {
		return Period{Year: p.Year - 1, Quarter: 4}
	}
	return Period{Year: p.Year, Quarter: p.Quarter - 1}
}

// LedgerEntry is one line of an operator's quarterly financial statement.
type LedgerEntry struct {
	OperatorID     string // opaque registry code, never numeric
	Period         Period
	AccountCode    string
	Description    string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	SourceFile     string
}
