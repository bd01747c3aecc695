package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

// Analyzer defines the interface for analyzing one claim
type Analyzer interface {
	Analyze(ctx context.Context, in model.ClaimInput) (*model.Report, error)
}

// ClaimLoader reads a batch file of claim inputs
type ClaimLoader interface {
	LoadClaims(ctx context.Context, path string) ([]model.ClaimInput, error)
}

// AnalyzeJob analyzes one claim of a batch
type AnalyzeJob struct {
	Index    int
	Input    model.ClaimInput
	Analyzer Analyzer
}

// Execute validates the input and runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	res := &AnalyzeResult{Index: j.Index, Input: j.Input}

	if err := j.Input.Validate(); err != nil {
		res.Error = err
		return res
	}

	start := time.Now()
	res.Report, res.Error = j.Analyzer.Analyze(ctx, j.Input)
	res.Duration = time.Since(start)
	return res
}

// AnalyzeResult is the outcome of one batch item
type AnalyzeResult struct {
	Index    int
	Input    model.ClaimInput
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// GetError returns the error from the analysis
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many claims concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	log         *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, log *zap.Logger) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		log:         logging.OrNop(log),
	}
}

// ProcessClaims analyzes claims and returns one result per input, in input
// order. Items not started before ctx is cancelled carry ctx's error.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []model.ClaimInput) []*AnalyzeResult {
	if len(claims) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, in := range claims {
		if !pool.Submit(&AnalyzeJob{Index: i, Input: in, Analyzer: b.analyzer}) {
			break
		}
	}

	out := make([]*AnalyzeResult, len(claims))
	for _, r := range pool.Wait() {
		res := r.(*AnalyzeResult)
		out[res.Index] = res
	}

	failed := 0
	for i, res := range out {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &AnalyzeResult{Index: i, Input: claims[i], Error: err}
		}
		if out[i].Error != nil {
			failed++
		}
	}

	b.log.Info("batch complete", zap.Int("claims", len(claims)), zap.Int("failed", failed))
	return out
}

// ProcessFile loads a batch file and analyzes its claims
func (b *BatchProcessor) ProcessFile(ctx context.Context, loader ClaimLoader, path string) ([]*AnalyzeResult, error) {
	claims, err := loader.LoadClaims(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	return b.ProcessClaims(ctx, claims), nil
}

// VerdictCount is the number of reports with one verdict
type VerdictCount struct {
	Verdict model.Verdict
	Count   int
}

// Tally counts verdicts across results, most frequent first.
// Failed items are not counted.
func Tally(results []*AnalyzeResult) []VerdictCount {
	counts := make(map[model.Verdict]int)
	for _, r := range results {
		if r != nil && r.Error == nil && r.Report != nil {
			counts[r.Report.Verdict]++
		}
	}

	out := make([]VerdictCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, VerdictCount{Verdict: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Verdict < out[j].Verdict
	})
	return out
}
