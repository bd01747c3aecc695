package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField marks a claim input with an empty required field
var ErrMissingField = errors.New("missing required field")

// ClaimInput is what a caller submits for analysis
type ClaimInput struct {
	BrandName string `json:"brand_name" yaml:"brand_name"`
	Tagline   string `json:"tagline" yaml:"tagline"`
	Claim     string `json:"claim" yaml:"claim"`
}

// Validate requires all three fields to be non-blank.
// The analysis core accepts empty strings; callers taking user input validate first.
func (c ClaimInput) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"brand_name", c.BrandName},
		{"tagline", c.Tagline},
		{"claim", c.Claim},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// StanceLabel classifies the relationship between evidence and a claim
type StanceLabel string

const (
	StanceEntailment    StanceLabel = "entailment"    // Evidence supports the claim
	StanceContradiction StanceLabel = "contradiction" // Evidence contradicts the claim
	StanceNeutral       StanceLabel = "neutral"       // No clear relationship
)

// StanceResult is the classification of one (evidence, claim) pair
type StanceResult struct {
	Label   StanceLabel  `json:"label"`
	Score   float64      `json:"score"`
	Details StanceDetail `json:"details"`
}

// StanceDetail carries the diagnostic inputs of a stance decision
type StanceDetail struct {
	Similarity          float64 `json:"similarity"`           // Jaccard similarity of token sets
	CommonWords         int     `json:"common_words"`         // Size of the token intersection
	ContradictionSignal bool    `json:"contradiction_signal"` // Negation present on exactly one side
}

// StanceEvaluation ties a retrieved evidence item to its stance
type StanceEvaluation struct {
	Evidence      RetrievedEvidence `json:"evidence"`
	Stance        StanceResult      `json:"stance"`
	AdjustedScore float64           `json:"adjusted_score"` // stance score * relevance
}
