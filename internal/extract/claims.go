// Package extract finds candidate marketing claims in product pages and ad
// copy so they can be fed to a batch analysis.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/tagline/internal/ingest"
	"github.com/ppiankov/tagline/internal/model"
)

const (
	minSentenceRunes = 20
	maxSentenceRunes = 400
)

// Candidate is a sentence that reads like a verifiable marketing claim
type Candidate struct {
	Text      string `json:"text" yaml:"text"`
	Heuristic string `json:"heuristic" yaml:"heuristic"` // "keyword:<kw>" that selected it
	Sentence  int    `json:"sentence" yaml:"sentence"`   // Index among the page's sentences
}

// ClaimExtractor selects sentences containing claim keywords
type ClaimExtractor struct {
	keywords []string
}

// DefaultKeywords are the phrases that mark a sentence as a claim.
// Longer phrases come first so the heuristic names the most specific match.
var DefaultKeywords = []string{
	"clinically proven", "scientifically proven", "doctor recommended",
	"dermatologically tested", "recommended by", "according to",
	"free from", "rich in", "source of", "100%", "no added",
	"proven", "guaranteed", "certified", "contains", "natural",
	"organic", "pure", "cures", "prevents", "boosts", "improves",
	"reduces", "protects", "best", "fastest", "number one", "no. 1", "#1",
}

// NewClaimExtractor creates an extractor; no keywords uses DefaultKeywords
func NewClaimExtractor(keywords ...string) *ClaimExtractor {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lower := make([]string, len(keywords))
	for i, kw := range keywords {
		lower[i] = strings.ToLower(kw)
	}
	return &ClaimExtractor{keywords: lower}
}

// Extract returns the claim sentences of content, which may be HTML or
// plain text. Duplicates (ignoring case) are dropped.
func (e *ClaimExtractor) Extract(content string) ([]Candidate, error) {
	text, err := ingest.VisibleText(content)
	if err != nil {
		return nil, err
	}

	var claims []Candidate
	for i, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, keyword := range e.keywords {
			if strings.Contains(lower, keyword) {
				claims = append(claims, Candidate{
					Text:      sentence,
					Heuristic: "keyword:" + keyword,
					Sentence:  i,
				})
				break
			}
		}
	}

	return dedupeClaims(claims), nil
}

// ClaimInputs turns candidates into batch inputs for one brand
func ClaimInputs(brandName, tagline string, candidates []Candidate) []model.ClaimInput {
	inputs := make([]model.ClaimInput, len(candidates))
	for i, c := range candidates {
		inputs[i] = model.ClaimInput{BrandName: brandName, Tagline: tagline, Claim: c.Text}
	}
	return inputs
}

// splitSentences splits on . ! ? followed by whitespace and keeps sentences
// of a plausible length
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if n := utf8.RuneCountInString(sentence); n >= minSentenceRunes && n <= maxSentenceRunes {
			sentences = append(sentences, sentence)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?' || r == '।') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()

	return sentences
}

func dedupeClaims(claims []Candidate) []Candidate {
	seen := make(map[string]bool)
	var unique []Candidate

	for _, claim := range claims {
		key := strings.ToLower(claim.Text)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
