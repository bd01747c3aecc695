package verdict

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/tagline/internal/model"
)

func evidence(text, source string, relevance float64) model.RetrievedEvidence {
	return model.RetrievedEvidence{
		Text:           text,
		Metadata:       model.EvidenceMeta{Source: source},
		RelevanceScore: relevance,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyze_NoEvidence(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	for _, ev := range [][]model.RetrievedEvidence{nil, {}} {
		got := a.Analyze("Brand", "Tagline", "This yogurt cures diabetes", ev)
		if got.Verdict != model.VerdictInsufficientEvidence || got.Score != 0 || got.Explanation != MsgNoEvidence {
			t.Errorf("unexpected assessment: %+v", got)
		}
	}
}

func TestAnalyze_ShortEvidenceBoundary(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	four := a.Analyze("Dahi", "", "Yogurt contains probiotic cultures",
		[]model.RetrievedEvidence{evidence("Yogurt contains probiotic cultures", "FSSAI", 1)})
	if four.Verdict != model.VerdictInsufficientEvidence || four.Explanation != MsgUnrelatedEvidence {
		t.Errorf("4-word evidence should be skipped, got %+v", four)
	}

	five := a.Analyze("Dahi", "", "Yogurt contains probiotic cultures",
		[]model.RetrievedEvidence{evidence("Yogurt contains live probiotic cultures", "FSSAI", 1)})
	if five.Verdict == model.VerdictInsufficientEvidence {
		t.Errorf("5-word evidence should be scored, got %+v", five)
	}
	if len(five.Stances) != 1 {
		t.Errorf("expected one stance, got %d", len(five.Stances))
	}
}

func TestAnalyze_WordCountUsesRawText(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	// five raw words, only one token after stopword removal
	got := a.Analyze("", "", "milk", []model.RetrievedEvidence{evidence("it is the same milk", "X", 1)})
	if got.Verdict == model.VerdictInsufficientEvidence {
		t.Errorf("expected raw word count to admit the item, got %+v", got)
	}
}

func TestAnalyze_Substantiated(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Analyze("Dahi", "Pure taste", "Yogurt contains live probiotic cultures",
		[]model.RetrievedEvidence{evidence("Yogurt contains live probiotic cultures that aid digestion", "FSSAI", 1)})

	// similarity 5/7, stance 0.5 + 5/14, final (stance + 1) / 2
	want := (0.5 + 5.0/14.0 + 1) / 2
	if got.Verdict != model.VerdictSubstantiated {
		t.Errorf("verdict = %s, want Substantiated", got.Verdict)
	}
	if !approx(got.Score, want) {
		t.Errorf("score = %v, want %v", got.Score, want)
	}
	if got.Domain != "food" {
		t.Errorf("domain = %s, want food", got.Domain)
	}
	if !strings.HasPrefix(got.Explanation, leads[model.VerdictSubstantiated]) {
		t.Errorf("unexpected lead: %q", got.Explanation)
	}
}

func TestAnalyze_ContradictionIsMisleading(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Analyze("Brand", "Tagline", "This product cures diabetes",
		[]model.RetrievedEvidence{evidence("The product does not cure diabetes", "ICMR", 1)})

	// contradiction with similarity 0.4: stance 0.7, raw -0.7, final 0.15
	if got.Verdict != model.VerdictMisleading {
		t.Errorf("verdict = %s, want Misleading", got.Verdict)
	}
	if !approx(got.Score, 0.15) {
		t.Errorf("score = %v, want 0.15", got.Score)
	}
	if got.Domain != "health" {
		t.Errorf("domain = %s, want health", got.Domain)
	}
	if !strings.Contains(got.Explanation, "- Contradicting Evidence:\n  1. ICMR: The product does not cure diabetes...") {
		t.Errorf("expected contradicting citation, got %q", got.Explanation)
	}
	if !strings.Contains(got.Explanation, "- No clear supporting evidence found.") {
		t.Errorf("expected no-support note, got %q", got.Explanation)
	}
}

func TestAnalyze_NegatedSafetyEvidence(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Analyze("Brand", "", "This product is safe for daily use",
		[]model.RetrievedEvidence{evidence("This product contains no harmful chemicals and is completely safe for daily use", "Lab", 1)})

	// "no" makes this a negation mismatch, so it counts against the claim
	stanceScore := 0.5 + 2.0/9.0
	if !approx(got.Score, (1-stanceScore)/2) {
		t.Errorf("score = %v, want %v", got.Score, (1-stanceScore)/2)
	}
	if got.Stances[0].Stance.Label != model.StanceContradiction {
		t.Errorf("label = %s, want contradiction", got.Stances[0].Stance.Label)
	}
}

func TestAnalyze_NeutralItemsDilute(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Analyze("Dahi", "", "Yogurt contains live probiotic cultures", []model.RetrievedEvidence{
		evidence("Yogurt contains live probiotic cultures that aid digestion", "A", 1),
		evidence("Exercise improves cardiovascular fitness over time", "B", 1),
		evidence("Sunlight helps the body produce vitamin D", "C", 1),
	})

	stanceScore := 0.5 + 5.0/14.0
	want := (stanceScore/3 + 1) / 2
	if !approx(got.Score, want) {
		t.Errorf("score = %v, want %v", got.Score, want)
	}
	if got.Verdict != model.VerdictPartiallyTrue {
		t.Errorf("verdict = %s, want Partially True", got.Verdict)
	}
	if len(got.Stances) != 3 {
		t.Errorf("expected 3 stances, got %d", len(got.Stances))
	}
}

func TestAnalyze_RelevanceWeighting(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Analyze("", "", "Yogurt contains live probiotic cultures",
		[]model.RetrievedEvidence{evidence("Yogurt contains live probiotic cultures", "A", 0.5)})

	// similarity 1, stance 1.0, adjusted 0.5, final 0.75
	if !approx(got.Stances[0].AdjustedScore, 0.5) || !approx(got.Score, 0.75) {
		t.Errorf("adjusted = %v, score = %v", got.Stances[0].AdjustedScore, got.Score)
	}
}

func TestAnalyze_ExplanationLimits(t *testing.T) {
	standards := model.StandardsTable{
		"food": {
			{Name: "FSSAI-1", Description: "Food claims must be substantiated."},
			{Name: "FSSAI-2", Description: "Health benefit claims need approval."},
			{Name: "FSSAI-3", Description: "Third standard must not appear."},
		},
	}
	a := NewAnalyzer(standards, nil)

	padded := "Yogurt contains live probiotic cultures" + strings.Repeat(" and the", 40)
	got := a.Analyze("Dahi", "Pure taste", "Yogurt contains live probiotic cultures", []model.RetrievedEvidence{
		evidence(padded, "S-low", 0.6),
		evidence(padded, "S-high", 1.0),
		evidence(padded, "S-mid", 0.8),
	})

	if got.Verdict != model.VerdictSubstantiated || !approx(got.Score, 0.9) {
		t.Fatalf("unexpected result: %s %v", got.Verdict, got.Score)
	}

	exp := got.Explanation
	high := strings.Index(exp, "1. S-high: ")
	mid := strings.Index(exp, "2. S-mid: ")
	if high < 0 || mid < 0 || high > mid {
		t.Errorf("expected S-high then S-mid, got %q", exp)
	}
	if strings.Contains(exp, "S-low") {
		t.Error("expected at most two supporting citations")
	}

	wantCitation := "S-high: " + string([]rune(padded)[:150]) + "...\n"
	if !strings.Contains(exp, wantCitation) {
		t.Errorf("expected 150-rune excerpt, got %q", exp)
	}

	if !strings.Contains(exp, "\n\nApplicable Regulatory Standards:\n- Food claims must be substantiated.\n- Health benefit claims need approval.") {
		t.Errorf("expected first two standards, got %q", exp)
	}
	if strings.Contains(exp, "Third standard") {
		t.Error("expected at most two standards")
	}
}

func TestAnalyze_GeneralStandardsFallback(t *testing.T) {
	standards := model.StandardsTable{
		"general": {{Name: "ASCI", Description: "Advertisements must be truthful."}},
	}
	a := NewAnalyzer(standards, nil)
	got := a.Analyze("Acme", "", "Acme is number one",
		[]model.RetrievedEvidence{evidence("Acme is not number one in any market survey", "Survey", 1)})

	if got.Domain != "general" {
		t.Fatalf("domain = %s, want general", got.Domain)
	}
	if !strings.Contains(got.Explanation, "- Advertisements must be truthful.") {
		t.Errorf("expected general standard, got %q", got.Explanation)
	}
}

func TestAnalyze_NoStandards(t *testing.T) {
	a := NewAnalyzer(model.StandardsTable{}, nil)
	got := a.Analyze("Acme", "", "Acme is number one",
		[]model.RetrievedEvidence{evidence("Acme is not number one in any market survey", "", 1)})

	if strings.Contains(got.Explanation, "Applicable Regulatory Standards") {
		t.Errorf("expected no standards section, got %q", got.Explanation)
	}
	if !strings.Contains(got.Explanation, "1. Unknown: ") {
		t.Errorf("expected Unknown source, got %q", got.Explanation)
	}
}

func TestAnalyze_MalformedEvidenceIsError(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	for _, rel := range []float64{math.NaN(), math.Inf(1), -0.5} {
		got := a.Analyze("Brand", "", "This product cures diabetes",
			[]model.RetrievedEvidence{evidence("The product does not cure diabetes", "ICMR", rel)})

		if got.Verdict != model.VerdictError || got.Score != 0 {
			t.Errorf("relevance %v: expected Error verdict, got %+v", rel, got)
		}
		if !got.Failed() || got.Failure == "" {
			t.Errorf("relevance %v: expected failure message", rel)
		}
		if !strings.HasPrefix(got.Explanation, ErrorPrefix) || !strings.Contains(got.Explanation, "relevance") {
			t.Errorf("relevance %v: unexpected explanation %q", rel, got.Explanation)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Verdict
	}{
		{1.0, model.VerdictSubstantiated},
		{0.7, model.VerdictSubstantiated},
		{0.6999, model.VerdictPartiallyTrue},
		{0.4, model.VerdictPartiallyTrue},
		{0.3999, model.VerdictMisleading},
		{0, model.VerdictMisleading},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestExcerpt_RuneSafe(t *testing.T) {
	text := strings.Repeat("घी", 100)
	got := excerpt(text)
	if utf8.RuneCountInString(got) != 150 || !utf8.ValidString(got) {
		t.Errorf("expected 150 valid runes, got %d", utf8.RuneCountInString(got))
	}
	if excerpt("short") != "short" {
		t.Error("short text should be unchanged")
	}
}
