package period

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// Format returns a period label like "2024Q4".
func Format(p model.Period) string {
	return p.String()
}

// Parse parses "2024Q4", "2024-Q4", "2024q4" or the Brazilian "4T2024".
func Parse(s string) (model.Period, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))

	var yearPart, quarterPart string
	switch {
	case strings.Contains(raw, "Q"):
		parts := strings.SplitN(raw, "Q", 2)
		yearPart = strings.TrimSuffix(parts[0], "-")
		quarterPart = parts[1]
	case strings.Contains(raw, "T"):
		parts := strings.SplitN(raw, "T", 2)
		quarterPart = parts[0]
		yearPart = parts[1]
	default:
		return model.Period{}, fmt.Errorf("invalid period format: %q", s)
	}

	if len(yearPart) != 4 {
		return model.Period{}, fmt.Errorf("invalid year in period %q", s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid year in period %q: %w", s, err)
	}

	quarter, err := strconv.Atoi(quarterPart)
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid quarter in period %q: %w", s, err)
	}

	p := model.Period{Year: year, Quarter: quarter}
	if !p.Valid() {
		return model.Period{}, fmt.Errorf("period %q out of range", s)
	}
	return p, nil
}

// ParseAll parses a list of period labels, failing on the first bad one.
func ParseAll(labels []string) ([]model.Period, error) {
	periods := make([]model.Period, 0, len(labels))
	for _, l := range labels {
		p, err := Parse(l)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// FromQuarterStart derives the quarter containing the given month (1..12).
func FromQuarterStart(year, month int) model.Period {
	return model.Period{Year: year, Quarter: (month-1)/3 + 1}
}

// Lookback returns depth periods ending at latest, most recent first.
// 2024Q4 with depth 5 yields 2024Q4, 2024Q3, 2024Q2, 2024Q1, 2023Q4.
func Lookback(latest model.Period, depth int) []model.Period {
	if depth <= 0 {
		return nil
	}
	periods := make([]model.Period, 0, depth)
	p := latest
	for i := 0; i < depth; i++ {
		periods = append(periods, p)
		p = p.Previous()
	}
	return periods
}

// SortAscending orders periods chronologically in place.
func SortAscending(periods []model.Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Before(periods[j])
	})
}
