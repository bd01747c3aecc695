// Package verdict turns per-evidence stances into a final verdict, score and
// explanation for a marketing claim.
package verdict

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/stance"
)

const (
	// MsgNoEvidence explains an Insufficient Evidence verdict with nothing retrieved
	MsgNoEvidence = "No relevant evidence found to verify this claim."
	// MsgUnrelatedEvidence explains an Insufficient Evidence verdict when every item was too short
	MsgUnrelatedEvidence = "Available evidence is not directly related to this claim."
	// ErrorPrefix starts the explanation of an Error verdict
	ErrorPrefix = "An error occurred during analysis: "

	minEvidenceWords       = 5   // Whitespace-separated words, counted on raw text
	substantiatedThreshold = 0.7 // finalScore >= this
	partiallyTrueThreshold = 0.4 // finalScore >= this (and below substantiated)
)

// Analyzer aggregates evidence stances into a verdict.
// It reads an immutable standards table and keeps no per-call state.
type Analyzer struct {
	standards model.StandardsTable
	scorer    *stance.Scorer
	log       *zap.Logger
}

// NewAnalyzer creates an analyzer over a regulatory standards table
func NewAnalyzer(standards model.StandardsTable, log *zap.Logger) *Analyzer {
	if standards == nil {
		standards = model.StandardsTable{}
	}
	return &Analyzer{
		standards: standards,
		scorer:    stance.NewScorer(),
		log:       logging.OrNop(log),
	}
}

// Analyze produces the assessment of a claim against retrieved evidence.
// It never panics and never returns an error: failures become an
// Assessment with VerdictError whose explanation carries the cause.
func (a *Analyzer) Analyze(brandName, tagline, claim string, evidence []model.RetrievedEvidence) (out model.Assessment) {
	if len(evidence) == 0 {
		return model.Assessment{
			Verdict:     model.VerdictInsufficientEvidence,
			Score:       0,
			Explanation: MsgNoEvidence,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out = a.failure(fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := a.assess(brandName, tagline, claim, evidence)
	if err != nil {
		return a.failure(err)
	}

	a.log.Info("claim analysis complete",
		zap.String("verdict", string(result.Verdict)),
		zap.Float64("score", result.Score),
		zap.String("domain", result.Domain))

	return result
}

func (a *Analyzer) assess(brandName, tagline, claim string, evidence []model.RetrievedEvidence) (model.Assessment, error) {
	domain := DetectDomain(brandName, tagline, claim)
	standards := a.standards.Lookup(domain)

	var evals []model.StanceEvaluation
	for i, ev := range evidence {
		if len(strings.Fields(ev.Text)) < minEvidenceWords {
			continue
		}
		if math.IsNaN(ev.RelevanceScore) || math.IsInf(ev.RelevanceScore, 0) || ev.RelevanceScore < 0 {
			return model.Assessment{}, fmt.Errorf("malformed evidence item %d: relevance score %v", i, ev.RelevanceScore)
		}

		result := a.scorer.Score(ev.Text, claim)
		evals = append(evals, model.StanceEvaluation{
			Evidence:      ev,
			Stance:        result,
			AdjustedScore: result.Score * ev.RelevanceScore,
		})
	}

	if len(evals) == 0 {
		return model.Assessment{
			Verdict:     model.VerdictInsufficientEvidence,
			Score:       0,
			Explanation: MsgUnrelatedEvidence,
			Domain:      domain,
		}, nil
	}

	var supporting, contradicting []model.StanceEvaluation
	var supportScore, contradictScore float64
	for _, e := range evals {
		switch e.Stance.Label {
		case model.StanceEntailment:
			supporting = append(supporting, e)
			supportScore += e.AdjustedScore
		case model.StanceContradiction:
			contradicting = append(contradicting, e)
			contradictScore += e.AdjustedScore
		}
	}

	// Neutral items count toward the total and so dilute the score.
	// rawScore is not clamped to [-1, 1]; see DESIGN.md.
	rawScore := (supportScore - contradictScore) / float64(len(evals))
	finalScore := (rawScore + 1) / 2
	if math.IsNaN(finalScore) || math.IsInf(finalScore, 0) {
		return model.Assessment{}, fmt.Errorf("non-finite score (support %v, contradict %v)", supportScore, contradictScore)
	}

	v := Classify(finalScore)

	byAdjustedDesc := func(s []model.StanceEvaluation) {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].AdjustedScore > s[j].AdjustedScore
		})
	}
	byAdjustedDesc(supporting)
	byAdjustedDesc(contradicting)

	return model.Assessment{
		Verdict:     v,
		Score:       finalScore,
		Explanation: explain(v, supporting, contradicting, standards),
		Domain:      domain,
		Stances:     evals,
	}, nil
}

// Classify maps a final score to a verdict
func Classify(finalScore float64) model.Verdict {
	switch {
	case finalScore >= substantiatedThreshold:
		return model.VerdictSubstantiated
	case finalScore >= partiallyTrueThreshold:
		return model.VerdictPartiallyTrue
	default:
		return model.VerdictMisleading
	}
}

func (a *Analyzer) failure(err error) model.Assessment {
	a.log.Error("claim analysis failed", zap.Error(err))
	return model.Assessment{
		Verdict:     model.VerdictError,
		Score:       0,
		Explanation: ErrorPrefix + err.Error(),
		Failure:     err.Error(),
	}
}
