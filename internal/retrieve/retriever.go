// Package retrieve ranks indexed evidence by weighted lexical overlap with a
// claim query.
package retrieve

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/index"
	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/textproc"
)

const (
	// DefaultTopK is the number of documents requested when k is not given
	DefaultTopK = 5

	keywordCount   = 5   // Query keywords that earn the boosted weight
	keywordWeight  = 3   // Match weight for a keyword token
	tokenWeight    = 1   // Match weight for any other query token
	relevanceFloor = 0.3 // Results must score strictly above this
)

// Retriever ranks documents of a shared, read-only index
type Retriever struct {
	index *index.Index
	norm  *textproc.Normalizer
	log   *zap.Logger
}

// NewRetriever creates a retriever over idx
func NewRetriever(idx *index.Index, norm *textproc.Normalizer, log *zap.Logger) *Retriever {
	log = logging.OrNop(log)
	if norm == nil {
		norm = textproc.NewNormalizer(log)
	}
	return &Retriever{index: idx, norm: norm, log: log}
}

type match struct {
	pos   int
	count int
}

// Retrieve returns at most k documents ordered by descending relevance.
//
// Each distinct query token credits every document in its posting list with
// weight 3 if it is one of the query's top keywords, else 1. The top k
// documents by credit are kept (equal credit: first credited wins), scored
// relative to the best of them, and those scoring <= 0.3 are dropped.
func (r *Retriever) Retrieve(brandName, tagline, claim string, k int) []model.RetrievedEvidence {
	results := []model.RetrievedEvidence{}
	if k <= 0 || r.index == nil || r.index.Len() == 0 {
		return results
	}

	query := brandName + " " + tagline + " " + claim
	queryTokens := dedupe(textproc.Tokenize(r.norm.Normalize(query)))
	if len(queryTokens) == 0 {
		return results
	}

	keywords := make(map[string]struct{}, keywordCount)
	for _, kw := range textproc.ExtractKeywords(query, keywordCount) {
		keywords[kw] = struct{}{}
	}

	// matches keeps first-credited order so the stable sort below breaks ties
	var matches []*match
	byPos := make(map[int]*match)
	for _, tok := range queryTokens {
		weight := tokenWeight
		if _, ok := keywords[tok]; ok {
			weight = keywordWeight
		}
		for _, pos := range r.index.Postings(tok) {
			m, ok := byPos[pos]
			if !ok {
				m = &match{pos: pos}
				byPos[pos] = m
				matches = append(matches, m)
			}
			m.count += weight
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].count > matches[j].count
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	maxMatch := 1
	if len(matches) > 0 {
		maxMatch = matches[0].count
	}

	for _, m := range matches {
		if !r.index.Valid(m.pos) {
			continue
		}
		relevance := float64(m.count) / float64(maxMatch)
		if relevance <= relevanceFloor {
			continue
		}
		results = append(results, model.RetrievedEvidence{
			Text:           r.index.Text(m.pos),
			Metadata:       r.index.Metadata(m.pos),
			RelevanceScore: relevance,
			Position:       m.pos,
		})
	}

	r.log.Info("retrieved evidence",
		zap.Int("query_tokens", len(queryTokens)),
		zap.Int("candidates", len(byPos)),
		zap.Int("results", len(results)))

	return results
}

// dedupe drops repeated tokens, keeping first occurrences in order
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
