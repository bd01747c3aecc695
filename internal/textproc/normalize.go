// Package textproc turns free text into the lowercase, stopword-free tokens
// that indexing, retrieval and stance scoring all operate on.
//
// Every function here is total: any string, including the empty string,
// yields a (possibly empty) result.
package textproc

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
)

// asciiPunctuation is replaced by spaces before splitting
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// stopwords are common English function words dropped from every token stream
var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "because", "as", "what", "which",
	"this", "that", "these", "those", "then", "just", "so", "than", "such", "both",
	"through", "about", "for", "is", "of", "while", "during", "to", "from", "in",
	"on", "at", "by", "with", "between", "into",
	"before", "after", "above", "below", "since", "be", "have", "has", "had", "do",
	"does", "did", "was", "were", "can", "could", "will", "would", "should", "must",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their", "there", "here",
)

// Language is the result of script detection
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageMixed   Language = "mixed" // Devanagari present alongside Latin text
)

// Normalizer cleans text for indexing and comparison
type Normalizer struct {
	log *zap.Logger
}

// NewNormalizer creates a normalizer; a nil logger disables logging
func NewNormalizer(log *zap.Logger) *Normalizer {
	return &Normalizer{log: logging.OrNop(log)}
}

// Normalize returns the text's tokens joined by single spaces.
// Devanagari content is detected and logged but passes through untouched.
func (n *Normalizer) Normalize(text string) string {
	if DetectLanguage(text) == LanguageMixed {
		n.log.Info("text contains Devanagari script; passing through without transliteration",
			zap.Int("bytes", len(text)))
	}

	text = strings.Join(strings.Fields(text), " ")
	tokens := Tokenize(text)
	cleaned := strings.Join(tokens, " ")

	n.log.Debug("normalized text", zap.String("in", text), zap.String("out", cleaned))
	return cleaned
}

// DetectLanguage reports LanguageMixed when text contains any rune in the
// Devanagari block (U+0900–U+097F)
func DetectLanguage(text string) Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return LanguageMixed
		}
	}
	return LanguageEnglish
}

// Tokenize lowercases text, replaces ASCII punctuation with spaces, splits on
// whitespace and drops stopwords. Token order is preserved.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(asciiPunctuation, r) {
			return ' '
		}
		return r
	}, text)

	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenSet returns the distinct tokens of text
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ExtractKeywords returns the n most frequent tokens of text.
// Equal counts keep first-encountered order.
func ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, t := range Tokenize(text) {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// IsStopword reports whether token is dropped by Tokenize
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
