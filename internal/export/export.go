// Package export writes indicator records as CSV or XLSX files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	recordsSheet = "Indicadores"
	averageSheet = "Consolidado"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FormatCSV, FormatXLSX:
		return ext, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", ext)
	}
}

// Header returns the column names shared by both formats.
func Header() []string {
	cols := []string{"operator_id", "year", "quarter"}
	for _, ind := range model.Indicators() {
		cols = append(cols, string(ind))
	}
	return append(cols, "covered_lives")
}

func recordRow(r model.IndicatorRecord) []string {
	row := []string{r.OperatorID, strconv.Itoa(r.Year), strconv.Itoa(r.Quarter)}
	for _, ind := range model.Indicators() {
		row = append(row, formatValue(r.Value(ind)))
	}
	lives := ""
	if r.CoveredLives != nil {
		lives = strconv.FormatInt(*r.CoveredLives, 10)
	}
	return append(row, lives)
}

func formatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []model.IndicatorRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records to a workbook. A non-nil avg adds a sheet with
// the consolidated values.
func WriteXLSX(w io.Writer, records []model.IndicatorRecord, avg *model.ConsolidatedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := setRow(f, recordsSheet, 1, Header()); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRecordRow(f, recordsSheet, i+2, r); err != nil {
			return err
		}
	}

	if avg != nil {
		if _, err := f.NewSheet(averageSheet); err != nil {
			return fmt.Errorf("creating sheet: %w", err)
		}
		if err := setRow(f, averageSheet, 1, []string{"indicator", "value"}); err != nil {
			return err
		}
		for i, ind := range model.Indicators() {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(averageSheet, cell, &[]any{string(ind), avg.Value(ind)}); err != nil {
				return fmt.Errorf("writing %s: %w", averageSheet, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func setRecordRow(f *excelize.File, sheet string, row int, r model.IndicatorRecord) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := []any{r.OperatorID, r.Year, r.Quarter}
	for _, ind := range model.Indicators() {
		vals = append(vals, r.Value(ind))
	}
	if r.CoveredLives != nil {
		vals = append(vals, *r.CoveredLives)
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

// WriteFile renders records in the format implied by path and replaces the
// file atomically.
func WriteFile(path string, records []model.IndicatorRecord, avg *model.ConsolidatedRecord) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, records)
	case FormatXLSX:
		err = WriteXLSX(&buf, records, avg)
	}
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
