package consolidate

import "github.com/vcollos/dashboard-rn518/internal/model"

// Targets maps indicators to their reference values.
type Targets map[model.Indicator]float64

// DefaultTargets returns the reference values used when none are configured.
// IRF has no target.
func DefaultTargets() Targets {
	return Targets{
		model.MLL:  10,
		model.ROE:  15,
		model.DM:   70,
		model.DA:   15,
		model.DC:   5,
		model.DOP:  85,
		model.LC:   1.2,
		model.CTCP: 80,
		model.PMCR: 30,
		model.PMPE: 20,
	}
}

// Assessment is the outcome of comparing one value with its target.
type Assessment struct {
	Indicator model.Indicator `json:"indicator"`
	Value     float64         `json:"value"`
	Target    float64         `json:"target"`
	Met       bool            `json:"met"`
}

// Evaluate compares each indicator of r with its target. Indicators without
// a target are left out.
func Evaluate(r model.Ratios, targets Targets) []Assessment {
	var out []Assessment
	for _, ind := range model.Indicators() {
		target, ok := targets[ind]
		if !ok {
			continue
		}
		v := r.Value(ind)
		met := v >= target
		if ind.Info().Direction == model.LowerIsBetter {
			met = v <= target
		}
		out = append(out, Assessment{Indicator: ind, Value: v, Target: target, Met: met})
	}
	return out
}
