package operators

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

const (
	numFields       = 6
	dateFormat      = "2006-01-02"
	colID           = 0
	colLegalName    = 1
	colTradeName    = 2
	colMunicipality = 3
	colRegion       = 4
	colDeregistered = 5
)

// ReadOperators reads operators.csv. Rows are completed with Normalize.
func ReadOperators(r io.Reader) ([]model.Operator, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading operators CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var ops []model.Operator
	for i, rec := range records[1:] {
		op, err := UnmarshalOperator(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		ops = append(ops, Normalize(op))
	}
	return ops, nil
}

// WriteOperators writes operators.csv.
func WriteOperators(w io.Writer, ops []model.Operator) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "legal_name", "trade_name", "municipality", "region", "deregistered_on"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, op := range ops {
		if err := cw.Write(MarshalOperator(op)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalOperator converts an Operator to a CSV row.
func MarshalOperator(op model.Operator) []string {
	row := make([]string, numFields)
	row[colID] = op.ID
	row[colLegalName] = op.LegalName
	row[colTradeName] = op.TradeName
	row[colMunicipality] = op.Municipality
	row[colRegion] = op.Region
	if op.DeregisteredOn != nil {
		row[colDeregistered] = op.DeregisteredOn.Format(dateFormat)
	}
	return row
}

// UnmarshalOperator converts a CSV row to an Operator.
func UnmarshalOperator(record []string) (model.Operator, error) {
	if len(record) != numFields {
		return model.Operator{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Operator{}, fmt.Errorf("missing operator id")
	}

	var deregistered *time.Time
	if record[colDeregistered] != "" {
		d, err := time.Parse(dateFormat, record[colDeregistered])
		if err != nil {
			return model.Operator{}, fmt.Errorf("parsing deregistered_on %q: %w", record[colDeregistered], err)
		}
		deregistered = &d
	}

	return model.Operator{
		ID:             record[colID],
		LegalName:      record[colLegalName],
		TradeName:      record[colTradeName],
		Municipality:   record[colMunicipality],
		Region:         record[colRegion],
		DeregisteredOn: deregistered,
	}, nil
}
