package stance

import (
	"math"
	"testing"

	"github.com/ppiankov/tagline/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_Classification(t *testing.T) {
	tests := []struct {
		name          string
		premise       string
		hypothesis    string
		label         model.StanceLabel
		similarity    float64
		score         float64
		common        int
		contradiction bool
	}{
		{
			name:       "entailment",
			premise:    "Yogurt contains live probiotic cultures",
			hypothesis: "Yogurt contains probiotic cultures",
			label:      model.StanceEntailment,
			similarity: 0.8, score: 0.9, common: 4,
		},
		{
			name:       "contradiction",
			premise:    "The product does not cure diabetes",
			hypothesis: "This product cures diabetes",
			label:      model.StanceContradiction,
			similarity: 0.4, score: 0.7, common: 2, contradiction: true,
		},
		{
			// "no" on the premise side is a negation mismatch
			name:       "negated premise with high overlap",
			premise:    "This product contains no harmful chemicals and is completely safe for daily use",
			hypothesis: "This product is safe for daily use",
			label:      model.StanceContradiction,
			similarity: 4.0 / 9.0, score: 0.5 + 2.0/9.0, common: 4, contradiction: true,
		},
		{
			name:       "both negated entail",
			premise:    "Ghee does not contain gluten or lactose",
			hypothesis: "Ghee does not contain gluten",
			label:      model.StanceEntailment,
			similarity: 0.8, score: 0.9, common: 4,
		},
		{
			name:       "gap band is neutral",
			premise:    "mango pulp sweet",
			hypothesis: "mango pulp juice bottle",
			label:      model.StanceNeutral,
			similarity: 0.4, score: 0.3, common: 2,
		},
		{
			name:       "low overlap with negation is neutral",
			premise:    "Never store batteries near heat sources or open flame",
			hypothesis: "Battery lasts two days",
			label:      model.StanceNeutral,
			similarity: 0, score: 0.5, contradiction: true,
		},
	}

	s := NewScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.premise, tt.hypothesis)
			if got.Label != tt.label {
				t.Errorf("label = %s, want %s", got.Label, tt.label)
			}
			if !approx(got.Details.Similarity, tt.similarity) {
				t.Errorf("similarity = %v, want %v", got.Details.Similarity, tt.similarity)
			}
			if !approx(got.Score, tt.score) {
				t.Errorf("score = %v, want %v", got.Score, tt.score)
			}
			if got.Details.CommonWords != tt.common {
				t.Errorf("common = %d, want %d", got.Details.CommonWords, tt.common)
			}
			if got.Details.ContradictionSignal != tt.contradiction {
				t.Errorf("contradiction = %v, want %v", got.Details.ContradictionSignal, tt.contradiction)
			}
		})
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	s := NewScorer()
	for _, pair := range [][2]string{{"", "anything"}, {"anything", ""}, {"", ""}, {"the and of", "milk"}} {
		got := s.Score(pair[0], pair[1])
		if got.Details.Similarity != 0 {
			t.Errorf("%q vs %q: expected zero similarity, got %v", pair[0], pair[1], got.Details.Similarity)
		}
		if got.Label != model.StanceNeutral {
			t.Errorf("%q vs %q: expected neutral, got %s", pair[0], pair[1], got.Label)
		}
		if got.Score != 0.5 {
			t.Errorf("%q vs %q: expected score 0.5, got %v", pair[0], pair[1], got.Score)
		}
	}
}

func TestScore_SimilaritySymmetric(t *testing.T) {
	texts := []string{
		"",
		"This yogurt cures diabetes",
		"The product does not cure diabetes",
		"Clinically proven to reduce hair fall by 50%",
		"Hair fall reduction claims lack clinical proof",
		"घी is pure and healthy",
	}

	s := NewScorer()
	for _, a := range texts {
		for _, b := range texts {
			ab := s.Score(a, b).Details
			ba := s.Score(b, a).Details
			if ab.Similarity != ba.Similarity {
				t.Errorf("similarity(%q, %q) = %v but reversed = %v", a, b, ab.Similarity, ba.Similarity)
			}
			if ab.CommonWords != ba.CommonWords || ab.ContradictionSignal != ba.ContradictionSignal {
				t.Errorf("details not symmetric for %q / %q", a, b)
			}
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer()
	got := s.Score("identical words here", "identical words here")
	if got.Details.Similarity != 1 || got.Score != 1 || got.Label != model.StanceEntailment {
		t.Errorf("expected perfect entailment, got %+v", got)
	}
}
