package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tagline/internal/model"
)

// LoadStandards reads the regulatory standards table:
// an object of domain -> object of standard name -> description.
// Source order of standards within a domain is preserved.
func (l *Loader) LoadStandards(ctx context.Context, path string) (model.StandardsTable, error) {
	data, format, err := l.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read standards: %w", err)
	}

	table, err := ParseStandards(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if _, ok := table[model.GeneralDomain]; !ok {
		l.log.Warn("standards table has no general entry", zap.String("path", path))
	}
	l.log.Info("loaded regulatory standards", zap.String("path", path), zap.Int("domains", len(table)))
	return table, nil
}

// ParseStandards decodes a standards table
func ParseStandards(data []byte, format Format) (model.StandardsTable, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.StandardsTable{}, nil
	}
	if format == FormatYAML {
		return parseStandardsYAML(data)
	}
	return parseStandardsJSON(data)
}

// parseStandardsJSON walks tokens because map decoding would lose key order
func parseStandardsJSON(data []byte) (model.StandardsTable, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	table := model.StandardsTable{}

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		domain, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("domain %q: %w", domain, err)
		}

		standards := []model.RegulatoryStandard{}
		for dec.More() {
			name, err := readKey(dec)
			if err != nil {
				return nil, fmt.Errorf("domain %q: %w", domain, err)
			}
			var desc string
			if err := dec.Decode(&desc); err != nil {
				return nil, fmt.Errorf("standard %s/%s: %w", domain, name, err)
			}
			standards = append(standards, model.RegulatoryStandard{Name: name, Description: desc})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, fmt.Errorf("domain %q: %w", domain, err)
		}
		table[domain] = standards
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return table, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode standards: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("decode standards: expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decode standards: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("decode standards: expected key, got %v", tok)
	}
	return key, nil
}

func parseStandardsYAML(data []byte) (model.StandardsTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode standards: %w", err)
	}
	if len(doc.Content) == 0 {
		return model.StandardsTable{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode standards: line %d: expected mapping of domains", root.Line)
	}

	table := model.StandardsTable{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		domain, body := root.Content[i].Value, root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("decode standards: domain %q: line %d: expected mapping", domain, body.Line)
		}

		standards := []model.RegulatoryStandard{}
		for j := 0; j+1 < len(body.Content); j += 2 {
			name := body.Content[j].Value
			var desc string
			if err := body.Content[j+1].Decode(&desc); err != nil {
				return nil, fmt.Errorf("decode standards: standard %s/%s: %w", domain, name, err)
			}
			standards = append(standards, model.RegulatoryStandard{Name: name, Description: desc})
		}
		table[domain] = standards
	}

	return table, nil
}
