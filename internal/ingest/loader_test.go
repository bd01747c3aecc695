package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/tagline/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"evidence.json": FormatJSON,
		"evidence.yaml": FormatYAML,
		"EVIDENCE.YML":  FormatYAML,
		"evidence":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoadEvidence_JSON(t *testing.T) {
	path := writeFile(t, "evidence.json", `[
		{"id": 7, "content": "Dahi contains live probiotic cultures.", "source": "NIN", "url": "https://nin.res.in", "domain": "food", "publication_date": "2021-03-01"},
		{"id": "b2", "content": "Sunscreen lowers UV damage.", "source": null}
	]`)

	records, err := NewLoader(Options{}, nil).LoadEvidence(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadEvidence failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "7" {
		t.Errorf("Expected numeric id to load as \"7\", got %q", first.ID)
	}
	if first.Source != "NIN" || first.URL != "https://nin.res.in" || first.Domain != "food" || first.PublicationDate != "2021-03-01" {
		t.Errorf("Metadata not loaded: %+v", first)
	}
	if records[1].Source != "" {
		t.Errorf("Expected null source to load as empty, got %q", records[1].Source)
	}
}

func TestLoadEvidence_YAML(t *testing.T) {
	path := writeFile(t, "evidence.yaml", `
- id: 1
  content: Regular exercise improves heart health.
  source: WHO
- id: two
  content: Whole grains add dietary fibre.
`)

	records, err := NewLoader(Options{}, nil).LoadEvidence(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadEvidence failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[0].Source != "WHO" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].ID != "two" {
		t.Errorf("Expected id \"two\", got %q", records[1].ID)
	}
}

func TestLoadEvidence_EmptyFile(t *testing.T) {
	path := writeFile(t, "evidence.json", "  \n")

	records, err := NewLoader(Options{}, nil).LoadEvidence(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected empty file to load, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestLoadEvidence_MissingFile(t *testing.T) {
	_, err := NewLoader(Options{}, nil).LoadEvidence(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestLoadEvidence_Malformed(t *testing.T) {
	path := writeFile(t, "evidence.json", `[{"id": 1, "content": `)

	if _, err := NewLoader(Options{}, nil).LoadEvidence(context.Background(), path); err == nil {
		t.Error("Expected decode error for truncated JSON")
	}
}

func TestParseEvidence_NoContent(t *testing.T) {
	data := []byte(`[{"id": 1, "content": "Valid text here."}, {"id": 2, "content": "   "}]`)

	_, err := NewLoader(Options{}, nil).ParseEvidence(data, FormatJSON)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("Expected ErrNoContent, got %v", err)
	}

	records, err := NewLoader(Options{SkipInvalid: true}, nil).ParseEvidence(data, FormatJSON)
	if err != nil {
		t.Fatalf("Expected skip_invalid to drop the record, got %v", err)
	}
	if len(records) != 1 || records[0].ID != "1" {
		t.Errorf("Expected only record 1 to survive, got %+v", records)
	}
}

func TestParseEvidence_StripHTML(t *testing.T) {
	data := []byte(`[{"id": "h1", "content": "<p>Oats <b>lower</b> cholesterol.</p><script>track()</script><a href=\"https://example.org/oats\">study</a>"}]`)

	records, err := NewLoader(Options{StripHTML: true}, nil).ParseEvidence(data, FormatJSON)
	if err != nil {
		t.Fatalf("ParseEvidence failed: %v", err)
	}

	if got, want := records[0].Content, "Oats lower cholesterol. study"; got != want {
		t.Errorf("Content = %q, want %q", got, want)
	}
	if records[0].URL != "https://example.org/oats" {
		t.Errorf("Expected missing URL to be filled from markup, got %q", records[0].URL)
	}

	raw, err := NewLoader(Options{}, nil).ParseEvidence(data, FormatJSON)
	if err != nil {
		t.Fatalf("ParseEvidence failed: %v", err)
	}
	if raw[0].Content == records[0].Content {
		t.Error("Expected markup to be kept when stripping is disabled")
	}
}

func TestParseEvidence_MarkupOnlyIsInvalid(t *testing.T) {
	data := []byte(`[{"id": "x", "content": "<script>var a = 1;</script>"}]`)

	_, err := NewLoader(Options{StripHTML: true}, nil).ParseEvidence(data, FormatJSON)
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("Expected ErrNoContent for markup without visible text, got %v", err)
	}
}

func TestParseEvidence_RejectsNonScalarField(t *testing.T) {
	data := []byte(`[{"id": {"nested": true}, "content": "text"}]`)

	if _, err := NewLoader(Options{}, nil).ParseEvidence(data, FormatJSON); err == nil {
		t.Error("Expected error for object id")
	}
}

func TestLoadClaims(t *testing.T) {
	path := writeFile(t, "claims.yaml", `
- brand_name: Amul
  tagline: The Taste of India
  claim: Amul butter is made from pure milk
- brand_name: Acme
  tagline: Best ever
  claim: Acme is number one
`)

	claims, err := NewLoader(Options{}, nil).LoadClaims(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadClaims failed: %v", err)
	}

	want := []model.ClaimInput{
		{BrandName: "Amul", Tagline: "The Taste of India", Claim: "Amul butter is made from pure milk"},
		{BrandName: "Acme", Tagline: "Best ever", Claim: "Acme is number one"},
	}
	if len(claims) != len(want) {
		t.Fatalf("Expected %d claims, got %d", len(want), len(claims))
	}
	for i := range want {
		if claims[i] != want[i] {
			t.Errorf("claims[%d] = %+v, want %+v", i, claims[i], want[i])
		}
	}
}

func TestReadSource(t *testing.T) {
	path := writeFile(t, "page.html", "<p>Rich in protein.</p>")

	data, err := NewLoader(Options{}, nil).ReadSource(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if string(data) != "<p>Rich in protein.</p>" {
		t.Errorf("Unexpected content %q", data)
	}

	if _, err := NewLoader(Options{}, nil).ReadSource(context.Background(), filepath.Join(t.TempDir(), "absent.html")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}
