package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/authority"
	"github.com/ppiankov/tagline/internal/cache"
	"github.com/ppiankov/tagline/internal/ingest"
	"github.com/ppiankov/tagline/internal/llm"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/pipeline"
)

// loadData reads the evidence corpus and the standards table.
// A missing standards file is not fatal: every domain then cites nothing.
func loadData(ctx context.Context, cfg *model.Config, log *zap.Logger) ([]model.EvidenceRecord, model.StandardsTable, error) {
	loader := ingest.NewLoader(ingest.OptionsFromConfig(cfg), log.Named("ingest"))

	records, err := loader.LoadEvidence(ctx, cfg.Data.EvidencePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load evidence: %w", err)
	}

	standards, err := loader.LoadStandards(ctx, cfg.Data.StandardsPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("regulatory standards not found; explanations will cite none", zap.String("path", cfg.Data.StandardsPath))
		standards = model.StandardsTable{}
	} else if err != nil {
		return nil, nil, fmt.Errorf("load standards: %w", err)
	}

	return records, standards, nil
}

// newEngine loads the data files and wires the optional cache and narrative
func newEngine(ctx context.Context, cfg *model.Config, log *zap.Logger) (*pipeline.Engine, error) {
	records, standards, err := loadData(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM), log.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("configure LLM: %w", err)
	}

	return pipeline.NewEngine(records, standards, pipeline.Options{
		TopK:       cfg.Retrieval.TopK,
		Cache:      cache.NewReportCache(cache.New(cfg.Cache), cfg.Cache.TTL, log.Named("cache")),
		Summarizer: summarizer,
		Authority:  authority.NewClassifier(&cfg.Authority),
		Log:        log,
	}), nil
}

// setup resolves config and logger and builds the engine.
// adjust applies command flags on top of the resolved config.
func setup(ctx context.Context, adjust func(*model.Config)) (*model.Config, *zap.Logger, *pipeline.Engine, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := newEngine(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, engine, nil
}
