// Package pipeline wires the normalizer, index, retriever and verdict
// analyzer into an Engine, and renders the reports it produces.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/authority"
	"github.com/ppiankov/tagline/internal/cache"
	"github.com/ppiankov/tagline/internal/index"
	"github.com/ppiankov/tagline/internal/llm"
	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/retrieve"
	"github.com/ppiankov/tagline/internal/textproc"
	"github.com/ppiankov/tagline/internal/verdict"
)

// Options configures an Engine; the zero value is usable
type Options struct {
	TopK       int                   // Evidence items per analysis; <= 0 uses retrieve.DefaultTopK
	Cache      *cache.ReportCache    // Optional
	Summarizer *llm.Summarizer       // Optional
	Authority  *authority.Classifier // nil uses the default domain lists
	Log        *zap.Logger

	now   func() time.Time
	newID func() string
}

// Engine is the immutable analysis context: one index and one standards
// table built at startup. It is safe for concurrent use.
type Engine struct {
	index      *index.Index
	norm       *textproc.Normalizer
	retriever  *retrieve.Retriever
	analyzer   *verdict.Analyzer
	authority  *authority.Classifier
	topK       int
	scope      string
	cache      *cache.ReportCache
	summarizer *llm.Summarizer
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
}

// IndexStats describes the indexed corpus
type IndexStats struct {
	Documents   int                    `json:"documents" yaml:"documents"`
	Vocabulary  int                    `json:"vocabulary" yaml:"vocabulary"`
	Fingerprint string                 `json:"fingerprint" yaml:"fingerprint"`
	TopTokens   []index.TokenFrequency `json:"top_tokens" yaml:"top_tokens"`
}

const statsTopTokens = 10

// NewEngine indexes records and prepares the analyzer
func NewEngine(records []model.EvidenceRecord, standards model.StandardsTable, opts Options) *Engine {
	log := logging.OrNop(opts.Log)
	norm := textproc.NewNormalizer(log.Named("textproc"))
	idx := index.Build(records, norm, log.Named("index"))

	topK := opts.TopK
	if topK <= 0 {
		topK = retrieve.DefaultTopK
	}

	e := &Engine{
		index:      idx,
		norm:       norm,
		retriever:  retrieve.NewRetriever(idx, norm, log.Named("retrieve")),
		analyzer:   verdict.NewAnalyzer(standards, log.Named("verdict")),
		authority:  opts.Authority,
		topK:       topK,
		cache:      opts.Cache,
		summarizer: opts.Summarizer,
		log:        log,
		now:        opts.now,
		newID:      opts.newID,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.authority == nil {
		e.authority = authority.NewClassifier(nil)
	}

	// Everything besides the input that shapes a report
	e.scope = fmt.Sprintf("%s/%s/%s/k%d/%s",
		idx.Fingerprint(), standards.Fingerprint(), e.authority.Fingerprint(), topK, e.summarizer.Fingerprint())
	return e
}

// Retrieve returns the top k evidence items for a claim
func (e *Engine) Retrieve(brandName, tagline, claim string, k int) []model.RetrievedEvidence {
	evidence := e.retriever.Retrieve(brandName, tagline, claim, k)
	e.authority.Annotate(evidence)
	return evidence
}

// Analyze retrieves evidence for the claim and aggregates a verdict.
// Analysis failures are reported as VerdictError reports; the error return
// is reserved for context cancellation.
func (e *Engine) Analyze(ctx context.Context, in model.ClaimInput) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(e.scope, in)
	if report, ok := e.cache.Get(key); ok {
		report.Cached = true
		return report, nil
	}

	claim := e.norm.Normalize(in.Claim)
	evidence := e.retriever.Retrieve(in.BrandName, in.Tagline, claim, e.topK)
	e.authority.Annotate(evidence)
	assessment := e.analyzer.Analyze(in.BrandName, in.Tagline, claim, evidence)

	report := &model.Report{
		ID:          e.newID(),
		Input:       in,
		Verdict:     assessment.Verdict,
		Score:       assessment.Score,
		Explanation: assessment.Explanation,
		Domain:      assessment.Domain,
		Evidence:    evidence,
		Stances:     assessment.Stances,
		Failure:     assessment.Failure,
		AnalyzedAt:  e.now().UTC(),
	}

	if e.summarizer.IsEnabled() && !assessment.Failed() {
		summary, err := e.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			return nil, err
		}
		report.LLM = summary
	}

	// A narrative that degraded to warnings is retried on the next run
	if !assessment.Failed() && !narrativeDegraded(report.LLM) {
		e.cache.Put(key, report)
	}

	return report, nil
}

func narrativeDegraded(summary *model.LLMSummary) bool {
	return summary != nil && summary.SummaryMD == ""
}

// Stats describes the indexed corpus
func (e *Engine) Stats() IndexStats {
	return IndexStats{
		Documents:   e.index.Len(),
		Vocabulary:  e.index.VocabularySize(),
		Fingerprint: e.index.Fingerprint(),
		TopTokens:   e.index.TopTokens(statsTopTokens),
	}
}

// TopTokens returns the n most widespread tokens of the corpus
func (e *Engine) TopTokens(n int) []index.TokenFrequency {
	return e.index.TopTokens(n)
}
