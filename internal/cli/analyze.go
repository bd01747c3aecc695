package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/pipeline"
)

var (
	brandName  string
	tagline    string
	claimText  string
	outJSON    string
	outMD      string
	timeout    time.Duration
	noCache    bool
	noFooter   bool
	llmEnabled bool
	llmModel   string
	topK       int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Verify one marketing claim against the evidence corpus",
	Long: `Analyze retrieves the evidence most related to a claim, scores the
stance of each item and aggregates a verdict:
- Substantiated, Partially True, Misleading or Insufficient Evidence
- An explanation citing the regulatory standards of the detected industry
- Optional JSON and Markdown reports

Example:
  tagline analyze --brand "Dahi Pure" --tagline "Pure taste" --claim "Yogurt contains live probiotic cultures"
  tagline analyze -b Acme -t "Best ever" -c "Acme cures colds" --json report.json --md report.md
  tagline analyze -b Acme -t "Best ever" -c "Acme cures colds" --llm`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVarP(&brandName, "brand", "b", "", "brand name")
	analyzeCmd.Flags().StringVarP(&tagline, "tagline", "t", "", "brand tagline")
	analyzeCmd.Flags().StringVarP(&claimText, "claim", "c", "", "claim to verify")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Engine flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	analyzeCmd.Flags().IntVar(&topK, "top-k", 0, "evidence items to retrieve (default from config)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "add an LLM narrative (uses OPENAI_API_KEY); --llm=false overrides llm.provider")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default from config)")
}

// applyFlags layers the shared command flags of cmd over cfg.
// The narrative follows llm.provider unless --llm is given explicitly.
func applyFlags(cmd *cobra.Command) func(*model.Config) {
	llmSet := cmd.Flags().Changed("llm")
	return func(cfg *model.Config) {
		if topK > 0 {
			cfg.Retrieval.TopK = topK
		}
		if noCache {
			cfg.Cache.Enabled = false
		}
		if noFooter {
			cfg.Output.IncludeFooter = false
		}
		if llmSet && llmEnabled && cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "openai"
		}
		if llmSet && !llmEnabled {
			cfg.LLM.Provider = ""
		}
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	in := model.ClaimInput{BrandName: brandName, Tagline: tagline, Claim: claimText}
	if err := in.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, log, engine, err := setup(ctx, applyFlags(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Output.Verbose {
		stats := engine.Stats()
		fmt.Fprintf(os.Stderr, "Evidence: %d records (%d distinct tokens)\n", stats.Documents, stats.Vocabulary)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := engine.Analyze(ctx, in)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Retrieved %d evidence items\n", len(report.Evidence))
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM narrative using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderReport(report, outJSON, outMD, cfg.Output.Verbose, cmd.OutOrStdout(), os.Stderr); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
