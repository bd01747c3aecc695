// Package llm produces an optional narrative summary of a claim report.
// The narrative is generated after the verdict and never changes it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/tagline/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative for the report in strict evidence mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// EvidenceURLs is the allowlist of URLs the narrative may cite
	EvidenceURLs []string

	Prompt    string // Overrides BuildPrompt when set
	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string // URLs found in Summary
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	Provider          string // "openai" or "" (disabled)
	Model             string
	APIKey            string
	BaseURL           string // Any OpenAI-compatible endpoint
	Timeout           int    // seconds
	StrictEvidence    bool
	MaxTokens         int
	RequestsPerSecond float64 // <= 0 means unlimited
}

// DefaultConfig returns the disabled default
func DefaultConfig() Config {
	return Config{
		Timeout:           30,
		StrictEvidence:    true,
		MaxTokens:         600,
		RequestsPerSecond: 1,
	}
}

const maxPromptURLs = 20
const maxPromptEvidence = 5

// BuildPrompt constructs the summarization prompt for a claim report
func BuildPrompt(report model.Report, evidenceURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining the result of an automated check of a marketing claim against an evidence corpus. The verdict below was computed by a deterministic scorer; do not change it or argue with it.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. DO NOT infer, speculate, or cite sources beyond this list.
3. If evidence is insufficient or missing, state that explicitly.
4. Describe how the evidence relates to the claim. Never state that the claim is true or false on your own authority.

Claim under review:
- Brand: %s
- Tagline: %s
- Claim: %s

Result:
- Verdict: %s
- Score: %.2f
- Domain: %s

Evidence considered:
`, joinURLs(evidenceURLs), report.Input.BrandName, report.Input.Tagline, report.Input.Claim,
		report.Verdict, report.Score, orDash(report.Domain))

	// List the strongest evidence; the rest is only counted
	if len(report.Stances) == 0 {
		b.WriteString("- (none)\n")
	}
	for i, st := range report.Stances {
		if i >= maxPromptEvidence {
			fmt.Fprintf(&b, "- ... and %d more items\n", len(report.Stances)-maxPromptEvidence)
			break
		}
		// Unknown tiers are left out of the prompt
		tier := ""
		if st.Evidence.Authority != model.TierUnknown {
			tier = fmt.Sprintf(", %s source", st.Evidence.Authority)
		}
		fmt.Fprintf(&b, "- [%s, relevance %.2f%s] %s: %s\n",
			st.Stance.Label, st.Evidence.RelevanceScore, tier, st.Evidence.Metadata.SourceOrUnknown(), st.Evidence.Text)
	}

	b.WriteString("\nProvide a 3-4 sentence plain-language summary for a consumer.")
	return b.String()
}

// EvidenceURLs collects the distinct URLs of a report's retrieved evidence
func EvidenceURLs(report model.Report) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, ev := range report.Evidence {
		// Deduplicate, keeping retrieval order
		u := strings.TrimSpace(ev.Metadata.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// joinURLs renders the allowlist as a bullet list, capped at maxPromptURLs
func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No evidence URLs available)"
	}
	var b strings.Builder
	for i, u := range urls {
		if i >= maxPromptURLs {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-maxPromptURLs)
			break
		}
		b.WriteString("\n- ")
		b.WriteString(u)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
