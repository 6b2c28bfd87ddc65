package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/period"
)

// ANSParser reads the regulator's quarterly accounting open-data files:
// semicolon separated, decimal comma, one row per account.
type ANSParser struct {
	// Latin1 decodes the input from ISO-8859-1, the encoding the files are
	// published in.
	Latin1 bool
}

var ansColumns = []string{"DATA", "REG_ANS", "CD_CONTA_CONTABIL", "DESCRICAO", "VL_SALDO_INICIAL", "VL_SALDO_FINAL"}

var ansDateFormats = []string{"2006-01-02", "02/01/2006"}

// Format returns the parser name.
func (p *ANSParser) Format() string { return "ans" }

// Parse reads an ANS CSV. Columns are located by header name, so extra or
// reordered columns are accepted.
func (p *ANSParser) Parse(r io.Reader, sourceFile string) ([]model.LedgerEntry, error) {
	if p.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ANS header: %w", err)
	}
	idx, err := ansIndex(header)
	if err != nil {
		return nil, err
	}

	var entries []model.LedgerEntry
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ANS CSV: %w", err)
		}
		e, err := parseANSRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		e.SourceFile = sourceFile
		entries = append(entries, e)
	}
	return entries, nil
}

func ansIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx[h] = i
	}
	for _, c := range ansColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %s", c)
		}
	}
	return idx, nil
}

func parseANSRow(rec []string, idx map[string]int) (model.LedgerEntry, error) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseANSDate(field("DATA"))
	if err != nil {
		return model.LedgerEntry{}, err
	}

	opening, err := ParseAmount(field("VL_SALDO_INICIAL"))
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing VL_SALDO_INICIAL: %w", err)
	}
	closing, err := ParseAmount(field("VL_SALDO_FINAL"))
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing VL_SALDO_FINAL: %w", err)
	}

	return model.LedgerEntry{
		OperatorID:     field("REG_ANS"),
		Period:         period.FromQuarterStart(date.Year(), int(date.Month())),
		AccountCode:    field("CD_CONTA_CONTABIL"),
		Description:    field("DESCRICAO"),
		OpeningBalance: opening,
		ClosingBalance: closing,
	}, nil
}

func parseANSDate(s string) (time.Time, error) {
	for _, layout := range ansDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

// ParseAmount parses a Brazilian-formatted number such as "1.234.567,89".
// Values without a comma are read as plain decimals. Empty is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
