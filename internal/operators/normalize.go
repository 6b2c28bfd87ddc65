package operators

import (
	"regexp"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

// UnknownState is used when no UF can be read from the region.
const UnknownState = "BR"

// UnknownMunicipality is used when the registry has no city.
const UnknownMunicipality = "N/A"

var ufPattern = regexp.MustCompile(`\b([A-Z]{2})\b`)

// StateFromRegion extracts the first two-letter uppercase word of a
// commercialization region, or UnknownState.
func StateFromRegion(region string) string {
	if m := ufPattern.FindStringSubmatch(region); m != nil {
		return m[1]
	}
	return UnknownState
}

// Normalize fills the derived state and default municipality.
func Normalize(op model.Operator) model.Operator {
	if op.State == "" {
		op.State = StateFromRegion(op.Region)
	}
	if op.Municipality == "" {
		op.Municipality = UnknownMunicipality
	}
	return op
}
