package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tagline/internal/model"
)

var (
	indexTop  int
	indexYAML bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show statistics of the indexed evidence corpus",
	Long: `Index loads the evidence corpus, builds the inverted index and prints
its size, its fingerprint (part of every cache key) and the tokens found in
the most documents.

Example:
  tagline index
  tagline index --evidence data/evidence.yaml --top 25`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().IntVar(&indexTop, "top", 10, "number of top tokens to list")
	indexCmd.Flags().BoolVar(&indexYAML, "yaml", false, "print statistics as YAML")
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, log, engine, err := setup(cmd.Context(), func(cfg *model.Config) {
		cfg.Cache.Enabled = false
		cfg.LLM.Provider = ""
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	stats := engine.Stats()
	stats.TopTokens = engine.TopTokens(indexTop)

	out := cmd.OutOrStdout()
	if indexYAML {
		data, err := yaml.Marshal(stats)
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintf(out, "Documents:   %d\n", stats.Documents)
	fmt.Fprintf(out, "Vocabulary:  %d tokens\n", stats.Vocabulary)
	fmt.Fprintf(out, "Fingerprint: %s\n", stats.Fingerprint)
	if len(stats.TopTokens) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Top tokens (by document count):")
		for _, tf := range stats.TopTokens {
			fmt.Fprintf(out, "  %-20s %d\n", tf.Token, tf.Documents)
		}
	}
	return nil
}
