// Package stance classifies whether an evidence text supports, contradicts,
// or is unrelated to a claim using token overlap and negation mismatch.
package stance

import (
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/textproc"
)

const (
	entailmentThreshold    = 0.4 // similarity must exceed this, with no negation mismatch
	contradictionThreshold = 0.3 // similarity must exceed this, with a negation mismatch
)

// negations flip the polarity of a statement.
// Apostrophe forms never survive tokenization; they are kept for parity with
// token streams produced elsewhere.
var negations = []string{"not", "no", "never", "cannot", "doesn't", "isn't", "don't", "won't"}

// Scorer computes stance results. It holds no state.
type Scorer struct{}

// NewScorer creates a stance scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score classifies hypothesis (the claim) against premise (the evidence).
//
// Rules, first match wins:
//   - similarity > 0.4 and no contradiction signal: entailment, 0.5 + sim/2
//   - similarity > 0.3 and contradiction signal:    contradiction, 0.5 + sim/2
//   - otherwise:                                    neutral, 0.5 - sim/2
//
// Similarity in (0.3, 0.4] without a contradiction signal is neutral.
func (s *Scorer) Score(premise, hypothesis string) model.StanceResult {
	p := textproc.TokenSet(premise)
	h := textproc.TokenSet(hypothesis)

	common := 0
	for tok := range p {
		if _, ok := h[tok]; ok {
			common++
		}
	}

	similarity := 0.0
	if len(p) > 0 && len(h) > 0 {
		union := len(p) + len(h) - common
		similarity = float64(common) / float64(union)
	}

	contradiction := hasNegation(p) != hasNegation(h)

	var label model.StanceLabel
	var score float64
	switch {
	case similarity > entailmentThreshold && !contradiction:
		label = model.StanceEntailment
		score = 0.5 + similarity/2
	case similarity > contradictionThreshold && contradiction:
		label = model.StanceContradiction
		score = 0.5 + similarity/2
	default:
		label = model.StanceNeutral
		score = 0.5 - similarity/2
	}

	return model.StanceResult{
		Label: label,
		Score: score,
		Details: model.StanceDetail{
			Similarity:          similarity,
			CommonWords:         common,
			ContradictionSignal: contradiction,
		},
	}
}

func hasNegation(tokens map[string]struct{}) bool {
	for _, neg := range negations {
		if _, ok := tokens[neg]; ok {
			return true
		}
	}
	return false
}
