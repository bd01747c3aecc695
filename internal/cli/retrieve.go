package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tagline/internal/model"
)

var retrieveJSON bool

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "List the evidence retrieved for a claim, without a verdict",
	Long: `Retrieve runs only the retrieval step and prints the ranked evidence
with its query-relative relevance (1.00 is the best match).

Example:
  tagline retrieve --brand "Dahi Pure" --tagline "Pure taste" --claim "Yogurt aids digestion"
  tagline retrieve -b Acme -t "Best ever" -c "Acme cures colds" --top-k 10 --json`,
	Args: cobra.NoArgs,
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().StringVarP(&brandName, "brand", "b", "", "brand name")
	retrieveCmd.Flags().StringVarP(&tagline, "tagline", "t", "", "brand tagline")
	retrieveCmd.Flags().StringVarP(&claimText, "claim", "c", "", "claim to search evidence for")
	retrieveCmd.Flags().IntVar(&topK, "top-k", 0, "evidence items to retrieve (default from config)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "print results as JSON")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	in := model.ClaimInput{BrandName: brandName, Tagline: tagline, Claim: claimText}
	if err := in.Validate(); err != nil {
		return err
	}

	flags := applyFlags(cmd)
	cfg, log, engine, err := setup(cmd.Context(), func(cfg *model.Config) {
		flags(cfg)
		cfg.Cache.Enabled = false
		cfg.LLM.Provider = ""
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	results := engine.Retrieve(in.BrandName, in.Tagline, in.Claim, cfg.Retrieval.TopK)

	out := cmd.OutOrStdout()
	if retrieveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No relevant evidence found.")
		return nil
	}
	for i, ev := range results {
		fmt.Fprintf(out, "%d. [%.2f] %s (%s)\n", i+1, ev.RelevanceScore, ev.Metadata.SourceOrUnknown(), ev.Authority)
		fmt.Fprintf(out, "   %s\n", ev.Text)
		if ev.Metadata.URL != "" {
			fmt.Fprintf(out, "   %s\n", ev.Metadata.URL)
		}
	}
	return nil
}
