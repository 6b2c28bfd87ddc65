package ledger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Parser converts a ledger file into entries. sourceFile is recorded on
// every entry.
type Parser interface {
	Parse(r io.Reader, sourceFile string) ([]model.LedgerEntry, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in a ledger directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers. Latin-1 is
// assumed for ANS files unless encoding is "utf8".
func DefaultRegistry(encoding string) *Registry {
	r := NewRegistry()
	r.Register(CanonicalParser{})
	r.Register(&ANSParser{Latin1: !strings.EqualFold(encoding, "utf8")})
	return r
}

// CanonicalParser reads the canonical ledger format.
type CanonicalParser struct{}

// Format returns the parser name.
func (CanonicalParser) Format() string { return "canonical" }

// Parse reads canonical CSV. Rows without a source file get sourceFile.
func (CanonicalParser) Parse(r io.Reader, sourceFile string) ([]model.LedgerEntry, error) {
	entries, err := ReadEntries(r)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].SourceFile == "" {
			entries[i].SourceFile = sourceFile
		}
	}
	return entries, nil
}

// Scan returns the CSV files in dir sorted by name. A missing directory
// yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// LoadDir parses every CSV file in dir with p.
func LoadDir(dir string, p Parser) ([]model.LedgerEntry, error) {
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	var all []model.LedgerEntry
	for _, fi := range files {
		entries, err := loadFile(fi, p)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

func loadFile(fi FileInfo, p Parser) ([]model.LedgerEntry, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fi.Name, err)
	}
	defer f.Close()

	entries, err := p.Parse(f, fi.Name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fi.Name, err)
	}
	return entries, nil
}
