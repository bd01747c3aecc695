// Package index holds the inverted index over the evidence corpus.
//
// An Index is built exactly once and is read-only afterwards, so a single
// instance may be shared by any number of concurrent readers without locking.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
	"github.com/ppiankov/tagline/internal/textproc"
)

// Index maps normalized tokens to the positions of the documents containing them
type Index struct {
	docs        []model.EvidenceRecord
	postings    map[string][]int // ascending positions, one entry per document
	fingerprint string
}

// TokenFrequency is a token with the number of documents containing it
type TokenFrequency struct {
	Token     string `json:"token" yaml:"token"`
	Documents int    `json:"documents" yaml:"documents"`
}

// Build indexes records in order; a record's position is its implicit ID.
// Each document contributes a token at most once regardless of term frequency.
func Build(records []model.EvidenceRecord, norm *textproc.Normalizer, log *zap.Logger) *Index {
	log = logging.OrNop(log)
	if norm == nil {
		norm = textproc.NewNormalizer(log)
	}

	idx := &Index{
		docs:     slices.Clone(records),
		postings: make(map[string][]int),
	}

	hash := sha256.New()
	for pos, rec := range idx.docs {
		// Metadata is rendered into reports, so it is part of the identity
		for _, field := range []string{rec.ID, rec.Content, rec.Source, rec.URL, rec.Domain, rec.PublicationDate} {
			hash.Write([]byte(field))
			hash.Write([]byte{0})
		}

		seen := make(map[string]struct{})
		for _, tok := range textproc.Tokenize(norm.Normalize(rec.Content)) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			idx.postings[tok] = append(idx.postings[tok], pos)
		}
	}
	idx.fingerprint = hex.EncodeToString(hash.Sum(nil))[:16]

	log.Info("built evidence index",
		zap.Int("documents", len(idx.docs)),
		zap.Int("tokens", len(idx.postings)))

	return idx
}

// Len returns the number of indexed documents
func (x *Index) Len() int {
	return len(x.docs)
}

// VocabularySize returns the number of distinct indexed tokens
func (x *Index) VocabularySize() int {
	return len(x.postings)
}

// Postings returns the ascending positions of documents containing token.
// The returned slice is a copy.
func (x *Index) Postings(token string) []int {
	return slices.Clone(x.postings[token])
}

// Text returns the raw content of the document at pos
func (x *Index) Text(pos int) string {
	return x.docs[pos].Content
}

// Metadata returns the metadata of the document at pos
func (x *Index) Metadata(pos int) model.EvidenceMeta {
	return x.docs[pos].Meta()
}

// Valid reports whether pos addresses an indexed document
func (x *Index) Valid(pos int) bool {
	return pos >= 0 && pos < len(x.docs)
}

// Fingerprint identifies the indexed corpus: text and every metadata field
func (x *Index) Fingerprint() string {
	return x.fingerprint
}

// TopTokens returns the n tokens found in the most documents.
// Ties are ordered alphabetically.
func (x *Index) TopTokens(n int) []TokenFrequency {
	freqs := make([]TokenFrequency, 0, len(x.postings))
	for tok, p := range x.postings {
		freqs = append(freqs, TokenFrequency{Token: tok, Documents: len(p)})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Documents != freqs[j].Documents {
			return freqs[i].Documents > freqs[j].Documents
		}
		return freqs[i].Token < freqs[j].Token
	})
	if n >= 0 && len(freqs) > n {
		freqs = freqs[:n]
	}
	return freqs
}
