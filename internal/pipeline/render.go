package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/tagline/internal/llm"
	"github.com/ppiankov/tagline/internal/model"
)

const markdownExcerptLength = 120

const footer = "_Generated by tagline. Verdicts are computed by token overlap against the configured evidence corpus and are not legal or regulatory advice._"

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderReport writes the requested files and prints a summary to out.
// Progress lines go to progress when verbose.
func (r *Renderer) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool, out, progress io.Writer) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(progress, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(progress, "✓ Wrote Markdown: %s\n", mdPath)
		}

		if report.LLM != nil && report.LLM.Enabled {
			llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
			if err := writeFile(llmPath, []byte(llm.RenderSeparateMarkdown(report.LLM))); err != nil {
				fmt.Fprintf(progress, "Warning: failed to write LLM summary: %v\n", err)
			} else if verbose {
				fmt.Fprintf(progress, "✓ Wrote LLM Summary: %s\n", llmPath)
			}
		}
	}

	r.RenderSummary(out, report)
	return nil
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats a report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Claim Verification Report\n\n")
	fmt.Fprintf(&b, "- **Brand:** %s\n", report.Input.BrandName)
	fmt.Fprintf(&b, "- **Tagline:** %s\n", report.Input.Tagline)
	fmt.Fprintf(&b, "- **Claim:** %s\n", report.Input.Claim)
	fmt.Fprintf(&b, "- **Report ID:** `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Verdict\n\n")
	fmt.Fprintf(&b, "%s **%s** (score %.2f)\n\n", report.Verdict.Icon(), report.Verdict, report.Score)
	if report.Domain != "" {
		fmt.Fprintf(&b, "Domain: `%s`\n\n", report.Domain)
	}

	b.WriteString("## Explanation\n\n")
	b.WriteString(report.Explanation)
	b.WriteString("\n\n")

	b.WriteString("## Evidence\n\n")
	if len(report.Evidence) == 0 {
		b.WriteString("_No evidence retrieved._\n")
	} else {
		stances := stanceByText(report.Stances)
		b.WriteString("| # | Relevance | Stance | Source | Authority | Excerpt |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for i, ev := range report.Evidence {
			stance := "skipped"
			if s, ok := stances[ev.Text]; ok {
				stance = fmt.Sprintf("%s (%.2f)", s.Stance.Label, s.AdjustedScore)
			}
			source := ev.Metadata.SourceOrUnknown()
			if ev.Metadata.URL != "" {
				source = fmt.Sprintf("[%s](%s)", source, ev.Metadata.URL)
			}
			tier := "-"
			if ev.Authority != model.TierUnknown {
				tier = ev.Authority.String()
			}
			fmt.Fprintf(&b, "| %d | %.2f | %s | %s | %s | %s |\n",
				i+1, ev.RelevanceScore, stance, cell(source), tier, cell(truncate(ev.Text, markdownExcerptLength)))
		}
	}

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		b.WriteString("\n## Narrative\n\n")
		b.WriteString("> Generated text; it does not affect the verdict.\n\n")
		b.WriteString(report.LLM.SummaryMD)
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "%s %s  (score %.2f)\n", report.Verdict.Icon(), report.Verdict, report.Score)
	fmt.Fprintf(w, "   Brand:    %s\n", report.Input.BrandName)
	fmt.Fprintf(w, "   Claim:    %s\n", report.Input.Claim)
	if report.Domain != "" {
		fmt.Fprintf(w, "   Domain:   %s\n", report.Domain)
	}
	fmt.Fprintf(w, "   Evidence: %d items\n", len(report.Evidence))
	if report.Cached {
		fmt.Fprintln(w, "   (cached result)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.Explanation)
}

func stanceByText(stances []model.StanceEvaluation) map[string]model.StanceEvaluation {
	m := make(map[string]model.StanceEvaluation, len(stances))
	for _, s := range stances {
		if _, ok := m[s.Evidence.Text]; !ok {
			m[s.Evidence.Text] = s
		}
	}
	return m
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// cell makes text safe inside a Markdown table cell
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
