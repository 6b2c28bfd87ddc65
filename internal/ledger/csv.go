// Package ledger reads and writes ledger entry files.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Header is the CSV header of the canonical ledger format.
const Header = "operator_id,year,quarter,account_code,description,opening_balance,closing_balance,source_file"

const (
	numFields      = 8
	colOperatorID  = 0
	colYear        = 1
	colQuarter     = 2
	colAccountCode = 3
	colDesc        = 4
	colOpening     = 5
	colClosing     = 6
	colSourceFile  = 7
)

// ReadEntries reads all entries from a canonical ledger CSV reader.
func ReadEntries(r io.Reader) ([]model.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.LedgerEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a canonical ledger CSV writer (including header).
func WriteEntries(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an entry to a CSV row.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, numFields)
	row[colOperatorID] = e.OperatorID
	row[colYear] = strconv.Itoa(e.Period.Year)
	row[colQuarter] = strconv.Itoa(e.Period.Quarter)
	row[colAccountCode] = e.AccountCode
	row[colDesc] = e.Description
	row[colOpening] = e.OpeningBalance.StringFixed(2)
	row[colClosing] = e.ClosingBalance.StringFixed(2)
	row[colSourceFile] = e.SourceFile
	return row
}

// UnmarshalEntry converts a CSV row to an entry.
func UnmarshalEntry(record []string) (model.LedgerEntry, error) {
	if len(record) != numFields {
		return model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	year, err := strconv.Atoi(record[colYear])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing year %q: %w", record[colYear], err)
	}
	quarter, err := strconv.Atoi(record[colQuarter])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing quarter %q: %w", record[colQuarter], err)
	}
	p := model.Period{Year: year, Quarter: quarter}
	if !p.Valid() {
		return model.LedgerEntry{}, fmt.Errorf("invalid period %d/%d", year, quarter)
	}

	var opening, closing decimal.Decimal
	if record[colOpening] != "" {
		opening, err = decimal.NewFromString(record[colOpening])
		if err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing opening_balance %q: %w", record[colOpening], err)
		}
	}
	if record[colClosing] != "" {
		closing, err = decimal.NewFromString(record[colClosing])
		if err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing closing_balance %q: %w", record[colClosing], err)
		}
	}

	return model.LedgerEntry{
		OperatorID:     record[colOperatorID],
		Period:         p,
		AccountCode:    record[colAccountCode],
		Description:    record[colDesc],
		OpeningBalance: opening,
		ClosingBalance: closing,
		SourceFile:     record[colSourceFile],
	}, nil
}
