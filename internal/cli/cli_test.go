package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/tagline/internal/model"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Retrieval.TopK != want.Retrieval.TopK || cfg.Fetch.Timeout != want.Fetch.Timeout || cfg.Cache.TTL != want.Cache.TTL {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TAGLINE_RETRIEVAL_TOP_K", "9")
	t.Setenv("TAGLINE_CACHE_TTL", "90m")
	t.Setenv("TAGLINE_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("TAGLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Retrieval.TopK != 9 {
		t.Errorf("Expected top_k 9, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("Expected ttl 90m, got %v", cfg.Cache.TTL)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("Expected OPENAI_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tagline", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected refusal to overwrite an existing config")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Data != want.Data || cfg.Fetch != want.Fetch || cfg.Cache != want.Cache || cfg.Concurrency != want.Concurrency {
		t.Errorf("Written config does not read back as defaults: %+v", cfg)
	}
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		index int
		brand string
		want  string
	}{
		{0, "Acme", "001-acme"},
		{11, "Dahi Pure!", "012-dahi-pure"},
		{2, "../../etc", "003-etc"},
		{3, "दही", "004-claim"},
	}
	for _, tt := range tests {
		if got := reportFilename(tt.index, model.ClaimInput{BrandName: tt.brand}); got != tt.want {
			t.Errorf("reportFilename(%d, %q) = %q, want %q", tt.index, tt.brand, got, tt.want)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	evidence := writeTemp(t, dir, "evidence.json", `[
		{"id": "e1", "content": "Yogurt contains live probiotic cultures that aid digestion", "source": "NIN"},
		{"id": "e2", "content": "Regular exercise improves cardiovascular fitness over time", "source": "WHO"}
	]`)
	standards := writeTemp(t, dir, "standards.yaml", "food:\n  FSSAI: Food claims must be substantiated.\ngeneral:\n  ASCI: Advertising must be truthful.\n")
	configFile := writeTemp(t, dir, "config.yaml", "cache:\n  enabled: false\n")
	jsonPath := filepath.Join(dir, "report.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"analyze",
		"--config", configFile,
		"--evidence", evidence,
		"--standards", standards,
		"--brand", "Dahi Pure",
		"--tagline", "Pure taste",
		"--claim", "Yogurt contains live probiotic cultures",
		"--json", jsonPath,
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := Execute(context.Background()); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if !strings.Contains(out.String(), "✅ Substantiated") {
		t.Errorf("Expected Substantiated summary, got:\n%s", out.String())
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Expected JSON report: %v", err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Invalid JSON report: %v", err)
	}
	if report.Domain != "food" || !strings.Contains(report.Explanation, "Food claims must be substantiated.") {
		t.Errorf("Expected food domain citing the FSSAI standard, got %s: %s", report.Domain, report.Explanation)
	}
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	page := writeTemp(t, dir, "page.html", `<html><body>
		<p>Our yogurt is clinically proven to support digestion.</p>
		<p>Visit our store for weekly offers.</p>
		<p>Every cup is rich in calcium and live cultures.</p>
	</body></html>`)
	configFile := writeTemp(t, dir, "config.yaml", "")
	outPath := filepath.Join(dir, "claims.json")

	rootCmd.SetArgs([]string{
		"extract", page,
		"--config", configFile,
		"--brand", "Dahi Pure",
		"--tagline", "Pure taste",
		"--out", outPath,
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := Execute(context.Background()); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected batch file: %v", err)
	}
	var claims []model.ClaimInput
	if err := json.Unmarshal(data, &claims); err != nil {
		t.Fatalf("Invalid batch file: %v", err)
	}

	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %+v", claims)
	}
	if claims[0].BrandName != "Dahi Pure" || claims[0].Tagline != "Pure taste" || claims[1].Claim != "Every cup is rich in calcium and live cultures." {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestApplyFlags_LLMProvider(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured string
		want       string
	}{
		{"flag absent keeps configured provider", nil, "openai", "openai"},
		{"flag absent keeps narrative off", nil, "", ""},
		{"--llm enables the default provider", []string{"--llm"}, "", "openai"},
		{"--llm keeps configured provider", []string{"--llm"}, "custom", "custom"},
		{"--llm=false disables configured provider", []string{"--llm=false"}, "openai", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { llmEnabled = false })

			cmd := &cobra.Command{}
			cmd.Flags().BoolVar(&llmEnabled, "llm", false, "")
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			cfg := model.DefaultConfig()
			cfg.LLM.Provider = tt.configured
			applyFlags(cmd)(cfg)

			if cfg.LLM.Provider != tt.want {
				t.Errorf("provider = %q, want %q", cfg.LLM.Provider, tt.want)
			}
		})
	}
}
