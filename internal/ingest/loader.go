// Package ingest loads the evidence corpus, the regulatory standards table
// and batch claim files, validating and defaulting records at the boundary so
// the rest of the system only sees typed, well-formed values.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

// ErrNoContent marks an evidence record without usable content
var ErrNoContent = errors.New("evidence record has no content")

// Format is a data file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the encoding of path from its extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Options controls evidence cleaning and remote downloads
type Options struct {
	StripHTML   bool // Reduce markup in content to its visible text
	SkipInvalid bool // Drop records without content instead of failing
	Fetch       model.FetchConfig
}

// OptionsFromConfig converts the ingest and fetch sections of the config
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		StripHTML:   cfg.Ingest.StripHTML,
		SkipInvalid: cfg.Ingest.SkipInvalid,
		Fetch:       cfg.Fetch,
	}
}

// Loader reads data files from disk or http(s) URLs
type Loader struct {
	opts    Options
	fetcher *Fetcher
	log     *zap.Logger
}

// NewLoader creates a loader
func NewLoader(opts Options, log *zap.Logger) *Loader {
	log = logging.OrNop(log)
	return &Loader{
		opts:    opts,
		fetcher: NewFetcher(opts.Fetch, log),
		log:     log,
	}
}

// read returns the bytes and encoding of a local path or URL
func (l *Loader) read(ctx context.Context, path string) ([]byte, Format, error) {
	if IsRemote(path) {
		data, err := l.fetcher.Fetch(ctx, path)
		return data, remoteFormat(path), err
	}
	data, err := os.ReadFile(path)
	return data, FormatOf(path), err
}

// ReadSource returns the raw bytes of a local file or URL
func (l *Loader) ReadSource(ctx context.Context, path string) ([]byte, error) {
	data, _, err := l.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// rawRecord accepts loosely typed source data (numeric ids, nulls)
type rawRecord struct {
	ID              flexString `json:"id" yaml:"id"`
	Content         flexString `json:"content" yaml:"content"`
	Source          flexString `json:"source" yaml:"source"`
	URL             flexString `json:"url" yaml:"url"`
	Domain          flexString `json:"domain" yaml:"domain"`
	PublicationDate flexString `json:"publication_date" yaml:"publication_date"`
}

// LoadEvidence reads an evidence corpus (a list of records)
func (l *Loader) LoadEvidence(ctx context.Context, path string) ([]model.EvidenceRecord, error) {
	data, format, err := l.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}

	records, err := l.ParseEvidence(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.log.Info("loaded evidence corpus", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}

// ParseEvidence decodes and validates evidence records
func (l *Loader) ParseEvidence(data []byte, format Format) ([]model.EvidenceRecord, error) {
	var raw []rawRecord
	if len(bytes.TrimSpace(data)) > 0 {
		if err := unmarshal(data, format, &raw); err != nil {
			return nil, fmt.Errorf("decode evidence: %w", err)
		}
	}

	records := make([]model.EvidenceRecord, 0, len(raw))
	for i, r := range raw {
		content, link := string(r.Content), string(r.URL)
		if l.opts.StripHTML && looksLikeHTML(content) {
			if link == "" {
				link = FirstLink(content)
			}
			text, err := VisibleText(content)
			if err != nil {
				l.log.Warn("could not parse evidence markup; keeping raw content", zap.Int("record", i), zap.Error(err))
			} else {
				content = text
			}
		}

		if strings.TrimSpace(content) == "" {
			err := fmt.Errorf("record %d (id %q): %w", i, string(r.ID), ErrNoContent)
			if !l.opts.SkipInvalid {
				return nil, err
			}
			l.log.Warn("skipping evidence record", zap.Error(err))
			continue
		}

		records = append(records, model.EvidenceRecord{
			ID:              string(r.ID),
			Content:         content,
			Source:          string(r.Source),
			URL:             link,
			Domain:          string(r.Domain),
			PublicationDate: string(r.PublicationDate),
		})
	}

	return records, nil
}

// LoadClaims reads a batch file: a list of {brand_name, tagline, claim}
func (l *Loader) LoadClaims(ctx context.Context, path string) ([]model.ClaimInput, error) {
	data, format, err := l.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	var claims []model.ClaimInput
	if err := unmarshal(data, format, &claims); err != nil {
		return nil, fmt.Errorf("%s: decode claims: %w", path, err)
	}
	return claims, nil
}

func unmarshal(data []byte, format Format, v any) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// flexString decodes any scalar (string, number, bool) as its text; null is ""
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected scalar, got %s", data[:1])
	default:
		*f = flexString(data)
	}
	return nil
}

func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = flexString(node.Value)
	return nil
}
