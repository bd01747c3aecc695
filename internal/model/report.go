package model

import "time"

// Verdict is the final label assigned to a claim
type Verdict string

const (
	VerdictSubstantiated        Verdict = "Substantiated"
	VerdictPartiallyTrue        Verdict = "Partially True"
	VerdictMisleading           Verdict = "Misleading"
	VerdictInsufficientEvidence Verdict = "Insufficient Evidence"
	VerdictError                Verdict = "Error"
)

// Icon returns the display marker used in terminal and Markdown output
func (v Verdict) Icon() string {
	switch v {
	case VerdictSubstantiated:
		return "✅"
	case VerdictPartiallyTrue:
		return "⚠️"
	case VerdictMisleading:
		return "❌"
	case VerdictInsufficientEvidence:
		return "❔"
	default:
		return "⛔"
	}
}

// Assessment is the outcome of analyzing one claim.
// A failed analysis has Verdict == VerdictError and a non-empty Failure.
type Assessment struct {
	Verdict     Verdict            `json:"verdict"`
	Score       float64            `json:"score"`
	Explanation string             `json:"explanation"`
	Domain      string             `json:"domain,omitempty"`
	Stances     []StanceEvaluation `json:"stances,omitempty"`
	Failure     string             `json:"failure,omitempty"`
}

// Failed reports whether the analysis hit its failure boundary
func (a Assessment) Failed() bool {
	return a.Verdict == VerdictError
}

// Report is the complete result of one engine analysis
type Report struct {
	ID          string              `json:"id"`
	Input       ClaimInput          `json:"input"`
	Verdict     Verdict             `json:"verdict"`
	Score       float64             `json:"score"`
	Explanation string              `json:"explanation"`
	Domain      string              `json:"domain,omitempty"`
	Evidence    []RetrievedEvidence `json:"evidence"`
	Stances     []StanceEvaluation  `json:"stances,omitempty"`
	Failure     string              `json:"failure,omitempty"`
	AnalyzedAt  time.Time           `json:"analyzed_at"`
	Cached      bool                `json:"cached,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (never affects verdict or score)
}

// LLMSummary contains an optional LLM-generated narrative
type LLMSummary struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	StrictEvidence bool     `json:"strict_evidence"`
	SummaryMD      string   `json:"summary_md,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}
