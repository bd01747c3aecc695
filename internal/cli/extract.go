package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tagline/internal/extract"
	"github.com/ppiankov/tagline/internal/ingest"
	"github.com/ppiankov/tagline/internal/model"
)

var (
	extractOut      string
	extractKeywords []string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|url>",
	Short: "Find candidate claims in a product page or ad copy",
	Long: `Extract reads an HTML page or a text file, keeps the sentences that
contain claim keywords ("clinically proven", "rich in", "100%", ...) and
writes them as a batch file for 'tagline batch'.

Example:
  tagline extract https://brand.example/yogurt --brand "Dahi Pure" --tagline "Pure taste"
  tagline extract ad-copy.txt -b Acme -t "Best ever" --out claims.yaml
  tagline extract page.html -b Acme -t "Best ever" --keyword mileage --keyword "top speed"`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&brandName, "brand", "b", "", "brand name for the extracted claims")
	extractCmd.Flags().StringVarP(&tagline, "tagline", "t", "", "brand tagline for the extracted claims")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write the batch file here (.json or .yaml); default prints YAML")
	extractCmd.Flags().StringSliceVar(&extractKeywords, "keyword", nil, "claim keyword (repeatable; replaces the defaults)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Pages are fetched as-is; cleaning happens in the extractor
	loader := ingest.NewLoader(ingest.Options{Fetch: cfg.Fetch}, log.Named("ingest"))
	data, err := loader.ReadSource(cmd.Context(), source)
	if err != nil {
		return err
	}

	candidates, err := extract.NewClaimExtractor(extractKeywords...).Extract(string(data))
	if err != nil {
		return fmt.Errorf("extract claims: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d candidate claims in %s\n", len(candidates), source)
	if cfg.Output.Verbose {
		for _, c := range candidates {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", c.Heuristic, c.Text)
		}
	}

	inputs := extract.ClaimInputs(brandName, tagline, candidates)
	if extractOut == "" {
		return writeClaims(cmd.OutOrStdout(), inputs, ingest.FormatYAML)
	}

	f, err := os.Create(extractOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", extractOut, err)
	}
	if err := writeClaims(f, inputs, ingest.FormatOf(extractOut)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", extractOut, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote batch file: %s\n", filepath.Clean(extractOut))
	return nil
}

func writeClaims(w io.Writer, inputs []model.ClaimInput, format ingest.Format) error {
	if format == ingest.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(inputs); err != nil {
			return fmt.Errorf("encode claims: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inputs); err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}
	return nil
}
