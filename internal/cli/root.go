package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tagline",
	Short: "Tagline - evidence-based verification of marketing claims",
	Long: `Tagline checks a brand's marketing claim against a local corpus of
evidence snippets and labels it Substantiated, Partially True, Misleading
or Insufficient Evidence, citing the regulatory standards of the detected
industry.

Verdicts come from token overlap with the configured corpus. They are an
aid for review, not legal or regulatory advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; cancelling ctx aborts running analyses
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of tagline.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tagline %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tagline/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("evidence", "", "evidence corpus path or URL (JSON or YAML)")
	flags.String("standards", "", "regulatory standards path or URL (JSON or YAML)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("data.evidence_path", flags.Lookup("evidence"))
	_ = viper.BindPFlag("data.standards_path", flags.Lookup("standards"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and TAGLINE_* variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".tagline"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// TAGLINE_LLM_API_KEY sets llm.api_key
	viper.SetEnvPrefix("TAGLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

// setDefaults registers every config key so env variables and Unmarshal
// see it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("data.evidence_path", d.Data.EvidencePath)
	v.SetDefault("data.standards_path", d.Data.StandardsPath)
	v.SetDefault("ingest.strip_html", d.Ingest.StripHTML)
	v.SetDefault("ingest.skip_invalid", d.Ingest.SkipInvalid)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_bytes", d.Fetch.MaxBytes)
	v.SetDefault("fetch.respect_robots", d.Fetch.RespectRobots)
	v.SetDefault("fetch.http_proxy", d.Fetch.HTTPProxy)
	v.SetDefault("fetch.https_proxy", d.Fetch.HTTPSProxy)
	v.SetDefault("retrieval.top_k", d.Retrieval.TopK)
	v.SetDefault("authority.primary_domains", d.Authority.PrimaryDomains)
	v.SetDefault("authority.secondary_domains", d.Authority.SecondaryDomains)
	v.SetDefault("authority.domain_map", d.Authority.DomainMap)
	v.SetDefault("authority.path_patterns", d.Authority.PathPatterns)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.strict_evidence", d.LLM.StrictEvidence)
	v.SetDefault("llm.requests_per_second", d.LLM.RequestsPerSecond)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig resolves the effective configuration from v
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	return cfg, nil
}

// newLogger builds the logger for cfg; verbose lowers the level to info
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if cfg.Output.Verbose && (level == "" || level == "warn" || level == "error") {
		level = "info"
	}
	log, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return log, nil
}
