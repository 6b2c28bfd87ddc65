// Package files is a data source backed by a directory of CSV files:
// operators.csv, beneficiaries.csv and ledger/*.csv.
package files

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/ledger"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/operators"
)

const (
	ledgerDir         = "ledger"
	beneficiariesFile = "beneficiaries.csv"
)

// Source reads the directory on first successful use and serves from
// memory afterwards. A failed read is retried on the next call.
type Source struct {
	dir    string
	parser ledger.Parser

	mu  sync.Mutex
	mem *datasource.Memory // nil until a load succeeds
}

// New creates a Source over dir. Ledger files are read with parser.
func New(dir string, parser ledger.Parser) (*Source, error) {
	if dir == "" {
		return nil, datasource.ErrNotConfigured
	}
	if parser == nil {
		parser = ledger.CanonicalParser{}
	}
	return &Source{dir: dir, parser: parser}, nil
}

func (s *Source) load() (*datasource.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem != nil {
		return s.mem, nil
	}

	roster, err := operators.Load(s.dir)
	if err != nil {
		return nil, err
	}
	entries, err := ledger.LoadDir(filepath.Join(s.dir, ledgerDir), s.parser)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	mem := datasource.NewMemory(entries, roster.All())
	if err := loadBeneficiaries(filepath.Join(s.dir, beneficiariesFile), mem); err != nil {
		return nil, err
	}
	s.mem = mem
	return mem, nil
}

// LedgerEntries implements datasource.Source.
func (s *Source) LedgerEntries(ctx context.Context, f datasource.Filter) ([]model.LedgerEntry, error) {
	mem, err := s.load()
	if err != nil {
		return nil, err
	}
	return mem.LedgerEntries(ctx, f)
}

// ActiveOperators implements datasource.Source.
func (s *Source) ActiveOperators(ctx context.Context) ([]model.Operator, error) {
	mem, err := s.load()
	if err != nil {
		return nil, err
	}
	return mem.ActiveOperators(ctx)
}

// CoveredLives implements datasource.Source.
func (s *Source) CoveredLives(ctx context.Context, operatorID string, p model.Period) (int64, bool, error) {
	mem, err := s.load()
	if err != nil {
		return 0, false, err
	}
	return mem.CoveredLives(ctx, operatorID, p)
}

// Metadata implements datasource.Source.
func (s *Source) Metadata(ctx context.Context) (model.Metadata, bool, error) {
	mem, err := s.load()
	if err != nil {
		return model.Metadata{}, false, err
	}
	return mem.Metadata(ctx)
}

// loadBeneficiaries reads operator_id,year,quarter,covered_lives rows. A
// missing file is not an error.
func loadBeneficiaries(path string, mem *datasource.Memory) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening beneficiaries: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 4
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("reading beneficiaries header: %w", err)
	}

	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading beneficiaries CSV: %w", err)
		}
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("beneficiaries row %d: parsing year %q: %w", row, rec[1], err)
		}
		quarter, err := strconv.Atoi(rec[2])
		if err != nil {
			return fmt.Errorf("beneficiaries row %d: parsing quarter %q: %w", row, rec[2], err)
		}
		count, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return fmt.Errorf("beneficiaries row %d: parsing covered_lives %q: %w", row, rec[3], err)
		}
		mem.SetCoveredLives(rec[0], model.Period{Year: year, Quarter: quarter}, count)
	}
}
