package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tagline/internal/ingest"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/pipeline"
	"github.com/ppiankov/tagline/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noFooter, topK and the LLM flags are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file in parallel",
	Long: `Batch analyzes a list of claims concurrently:
- Read {brand_name, tagline, claim} entries from a JSON or YAML file (or URL)
- Analyze them in parallel against one shared evidence index
- Write a JSON and Markdown report per claim
- Print a verdict tally

Example:
  tagline batch claims.yaml
  tagline batch claims.json --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./tagline-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with analyze
	batchCmd.Flags().IntVar(&topK, "top-k", 0, "evidence items to retrieve (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "add an LLM narrative to every report (uses OPENAI_API_KEY)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	flags := applyFlags(cmd)
	cfg, log, engine, err := setup(ctx, func(cfg *model.Config) {
		flags(cfg)
		if concurrency > 0 {
			cfg.Concurrency.Workers = concurrency
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Tagline Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Evidence:     %d records\n", engine.Stats().Documents)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	loader := ingest.NewLoader(ingest.OptionsFromConfig(cfg), log.Named("ingest"))
	processor := worker.NewBatchProcessor(engine, cfg.Concurrency.Workers, log.Named("worker"))

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing claims with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, loader, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		label := fmt.Sprintf("#%d %s", result.Index+1, result.Input.BrandName)
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		base := filepath.Join(outputDir, reportFilename(result.Index, result.Input))
		if err := renderer.RenderJSON(result.Report, base+".json"); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, base+".md"); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "%s %s: %s (score %.2f, %v)\n",
			result.Report.Verdict.Icon(), label, result.Report.Verdict, result.Report.Score, result.Duration.Round(time.Millisecond))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	for _, vc := range worker.Tally(results) {
		fmt.Fprintf(os.Stderr, "    %s %-22s %d\n", vc.Verdict.Icon(), vc.Verdict, vc.Count)
	}
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d claims failed", failureCount)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// reportFilename names the report files of one batch item, e.g. "003-acme"
func reportFilename(index int, in model.ClaimInput) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(in.BrandName), "-"), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if slug == "" {
		slug = "claim"
	}
	return fmt.Sprintf("%03d-%s", index+1, slug)
}
