// Package operators holds the roster of health-plan operators.
package operators

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// FileName is the roster file inside a data directory.
const FileName = "operators.csv"

// Service provides in-memory lookup over the operator roster.
type Service struct {
	operators []model.Operator
	byID      map[string]model.Operator
}

// NewService creates a Service from a slice of operators. Roster order is
// kept.
func NewService(ops []model.Operator) *Service {
	byID := make(map[string]model.Operator, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	return &Service{operators: ops, byID: byID}
}

// Load reads operators.csv from a data directory and returns a Service.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening operator roster: %w", err)
	}
	defer f.Close()

	ops, err := ReadOperators(f)
	if err != nil {
		return nil, fmt.Errorf("reading operator roster: %w", err)
	}
	return NewService(ops), nil
}

// All returns all operators.
func (s *Service) All() []model.Operator {
	return s.operators
}

// Get returns an operator by ID.
func (s *Service) Get(id string) (model.Operator, bool) {
	op, ok := s.byID[id]
	return op, ok
}

// Exists reports whether an operator ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Active returns operators that have not been deregistered.
func (s *Service) Active() []model.Operator {
	var result []model.Operator
	for _, op := range s.operators {
		if op.Active() {
			result = append(result, op)
		}
	}
	return result
}

// ByState returns all operators of a UF.
func (s *Service) ByState(uf string) []model.Operator {
	var result []model.Operator
	for _, op := range s.operators {
		if op.State == uf {
			result = append(result, op)
		}
	}
	return result
}

// Save writes the roster to operators.csv in dataDir.
func (s *Service) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating operator roster file: %w", err)
	}
	defer f.Close()

	if err := WriteOperators(f, s.operators); err != nil {
		return fmt.Errorf("writing operator roster: %w", err)
	}
	return nil
}
