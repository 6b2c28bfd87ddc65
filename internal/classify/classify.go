// Package classify maps ledger descriptions to account categories using a
// fixed, ordered pattern table. The first matching rule wins.
package classify

import (
	"strings"

	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/textnorm"
)

// Match describes how a description was classified.
type Match struct {
	Category   model.Category `json:"category"`
	Pattern    string         `json:"pattern,omitempty"` // normalized pattern that fired
	Normalized string         `json:"normalized"`
}

type compiledRule struct {
	category model.Category
	patterns []string
}

// Classifier holds a normalized copy of a rule table. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	rules []compiledRule
}

var defaultClassifier = New(defaultRules)

// New builds a Classifier from rules, normalizing every pattern once.
// Empty patterns are dropped since they would match everything.
func New(rules []Rule) *Classifier {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{category: r.Category}
		for _, p := range r.Patterns {
			if np := textnorm.Normalize(p); np != "" {
				cr.patterns = append(cr.patterns, np)
			}
		}
		compiled = append(compiled, cr)
	}
	return &Classifier{rules: compiled}
}

// Default returns the classifier over the built-in table.
func Default() *Classifier {
	return defaultClassifier
}

// Classify returns the category of a raw description, or
// model.CategoryUncategorized when no pattern matches.
func (c *Classifier) Classify(description string) model.Category {
	return c.Explain(description).Category
}

// Explain classifies a description and reports which pattern fired.
func (c *Classifier) Explain(description string) Match {
	normalized := textnorm.Normalize(description)
	for _, r := range c.rules {
		for _, p := range r.patterns {
			if strings.Contains(normalized, p) {
				return Match{Category: r.category, Pattern: p, Normalized: normalized}
			}
		}
	}
	return Match{Category: model.CategoryUncategorized, Normalized: normalized}
}

// Classify classifies with the built-in table.
func Classify(description string) model.Category {
	return defaultClassifier.Classify(description)
}
