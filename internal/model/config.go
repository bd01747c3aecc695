package model

import "time"

// Config is the complete runtime configuration.
// Tags serve both viper (mapstructure) and `config show` (yaml).
type Config struct {
	Data        DataConfig        `mapstructure:"data" yaml:"data"`
	Ingest      IngestConfig      `mapstructure:"ingest" yaml:"ingest"`
	Fetch       FetchConfig       `mapstructure:"fetch" yaml:"fetch"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval" yaml:"retrieval"`
	Authority   AuthorityConfig   `mapstructure:"authority" yaml:"authority"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// DataConfig locates the evidence corpus and the regulatory standards table
type DataConfig struct {
	EvidencePath  string `mapstructure:"evidence_path" yaml:"evidence_path"`
	StandardsPath string `mapstructure:"standards_path" yaml:"standards_path"`
}

// IngestConfig controls how evidence records are cleaned at load time
type IngestConfig struct {
	StripHTML   bool `mapstructure:"strip_html" yaml:"strip_html"`     // Reduce HTML markup in content to visible text
	SkipInvalid bool `mapstructure:"skip_invalid" yaml:"skip_invalid"` // Drop records without content instead of failing
}

// FetchConfig controls downloading data files given as http(s) URLs
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBytes      int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
}

// RetrievalConfig controls evidence retrieval
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k" yaml:"top_k"`
}

// AuthorityConfig lists the source hosts of each authority tier.
// Subdomains match their parent entry.
type AuthorityConfig struct {
	PrimaryDomains   []string          `mapstructure:"primary_domains" yaml:"primary_domains"`
	SecondaryDomains []string          `mapstructure:"secondary_domains" yaml:"secondary_domains"`
	DomainMap        map[string]string `mapstructure:"domain_map" yaml:"domain_map,omitempty"` // host -> tier name, checked first
	PathPatterns     []PathPattern     `mapstructure:"path_patterns" yaml:"path_patterns,omitempty"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern
type PathPattern struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Tier    string `mapstructure:"tier" yaml:"tier"`
}

// CacheConfig controls the report cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir     string        `mapstructure:"dir" yaml:"dir"` // Disk layer; empty means memory only
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console, json
}

// LLMConfig controls the optional narrative summary
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" yaml:"provider"` // "" disables
	Model             string  `mapstructure:"model" yaml:"model"`
	APIKey            string  `mapstructure:"api_key" yaml:"-"`
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout           int     `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	StrictEvidence    bool    `mapstructure:"strict_evidence" yaml:"strict_evidence"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// ConcurrencyConfig controls batch analysis
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	IncludeFooter bool `mapstructure:"include_footer" yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			EvidencePath:  "data/evidence_database.json",
			StandardsPath: "data/regulatory_standards.json",
		},
		Ingest: IngestConfig{
			StripHTML: true,
		},
		Fetch: FetchConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "tagline/0.1 (+https://github.com/ppiankov/tagline)",
			MaxBytes:      10 << 20,
			RespectRobots: true,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"fssai.gov.in",
				"cdsco.gov.in",
				"bis.gov.in",
				"ascionline.in",
				"icmr.gov.in",
				"nin.res.in",
				"rbi.org.in",
				"sebi.gov.in",
				"who.int",
				"ncbi.nlm.nih.gov",
				"doi.org",
				"scholar.google.com",
			},
			SecondaryDomains: []string{
				"wikipedia.org",
				"britannica.com",
				"reuters.com",
				"thehindu.com",
				"bbc.co.uk",
			},
			PathPatterns: []PathPattern{
				{Pattern: `\.pdf$`, Tier: "secondary"},
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		LLM: LLMConfig{
			Timeout:           30,
			MaxTokens:         600,
			StrictEvidence:    true,
			RequestsPerSecond: 1,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
