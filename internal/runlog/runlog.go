// Package runlog records one CSV row per period computation.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vcollos/dashboard-rn518/internal/indicators"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Period    string
	Included  int
	Excluded  int
	Failed    int
	Duration  time.Duration
}

// Header is the CSV header for runs.csv.
const Header = "timestamp,run_id,period,included,excluded,failed,duration_ms"

// FileName is the run log file inside the log directory.
const FileName = "runs.csv"

const (
	numFields   = 7
	colTime     = 0
	colRunID    = 1
	colPeriod   = 2
	colIncluded = 3
	colExcluded = 4
	colFailed   = 5
	colDuration = 6
)

// appendMu serializes writers within the process.
var appendMu sync.Mutex

// FromResult builds an entry for a finished period run.
func FromResult(res indicators.PeriodResult, at time.Time) Entry {
	return Entry{
		Timestamp: at.UTC(),
		RunID:     res.RunID,
		Period:    res.Period.String(),
		Included:  res.Included,
		Excluded:  res.Excluded,
		Failed:    res.Failed,
		Duration:  res.Duration,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colPeriod] = e.Period
	row[colIncluded] = strconv.Itoa(e.Included)
	row[colExcluded] = strconv.Itoa(e.Excluded)
	row[colFailed] = strconv.Itoa(e.Failed)
	row[colDuration] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colIncluded, colExcluded, colFailed} {
		counts[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	ms, err := strconv.ParseInt(record[colDuration], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing duration %q: %w", record[colDuration], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Period:    record[colPeriod],
		Included:  counts[0],
		Excluded:  counts[1],
		Failed:    counts[2],
		Duration:  time.Duration(ms) * time.Millisecond,
	}, nil
}

// Append writes entries to <dir>/runs.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	appendMu.Lock()
	defer appendMu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/runs.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
