package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

// Summarizer attaches narratives to reports.
// Provider failures degrade to warnings on the summary; only context
// cancellation is returned as an error.
type Summarizer struct {
	provider Provider
	config   Config
	limiter  *rate.Limiter
	log      *zap.Logger

	availableOnce sync.Once
	available     bool
}

// NewSummarizer builds a summarizer; a disabled config yields a no-op summarizer
func NewSummarizer(config Config, log *zap.Logger) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return newSummarizer(provider, config, log), nil
}

func newSummarizer(provider Provider, config Config, log *zap.Logger) *Summarizer {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	return &Summarizer{
		provider: provider,
		config:   config,
		limiter:  rate.NewLimiter(limit, 1),
		log:      logging.OrNop(log),
	}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or ""
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// Fingerprint identifies the narrative settings; "off" when disabled
func (s *Summarizer) Fingerprint() string {
	if !s.IsEnabled() {
		return "off"
	}
	return fmt.Sprintf("%s:%s:%d:%t", s.provider.Name(), s.config.Model, s.config.MaxTokens, s.config.StrictEvidence)
}

// GenerateSummary returns the narrative for report, or nil when disabled
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Enabled:        true,
		Provider:       s.provider.Name(),
		Model:          s.config.Model,
		StrictEvidence: s.config.StrictEvidence,
	}

	if !s.isAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return summary, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for LLM rate limit: %w", err)
	}

	urls := EvidenceURLs(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		EvidenceURLs: urls,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("LLM summary failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary generation failed: %v", err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.StrictEvidence {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Verified %d citations against %d evidence URLs", len(resp.CitedURLs), len(urls)))
	}

	return summary, nil
}

// isAvailable probes the provider once per summarizer
func (s *Summarizer) isAvailable(ctx context.Context) bool {
	s.availableOnce.Do(func() {
		s.available = s.provider.IsAvailable(ctx)
		if !s.available {
			s.log.Warn("LLM provider unavailable; narratives disabled", zap.String("provider", s.provider.Name()))
		}
	})
	return s.available
}
