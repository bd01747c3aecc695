package model

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// EvidenceRecord is one document of the static evidence corpus.
// Records are loaded once at startup and never mutated afterwards.
type EvidenceRecord struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	Content         string `json:"content" yaml:"content"`
	Source          string `json:"source,omitempty" yaml:"source,omitempty"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	Domain          string `json:"domain,omitempty" yaml:"domain,omitempty"`
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// EvidenceMeta is the metadata half of an EvidenceRecord (everything but content)
type EvidenceMeta struct {
	ID              string `json:"id,omitempty"`
	Source          string `json:"source,omitempty"`
	URL             string `json:"url,omitempty"`
	Domain          string `json:"domain,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
}

// Meta returns the record's metadata
func (r EvidenceRecord) Meta() EvidenceMeta {
	return EvidenceMeta{
		ID:              r.ID,
		Source:          r.Source,
		URL:             r.URL,
		Domain:          r.Domain,
		PublicationDate: r.PublicationDate,
	}
}

// SourceOrUnknown returns the attribution string, or "Unknown" when absent
func (m EvidenceMeta) SourceOrUnknown() string {
	if m.Source == "" {
		return "Unknown"
	}
	return m.Source
}

// RetrievedEvidence is an indexed document returned for one query.
// RelevanceScore is query-relative: 1.0 is the best match of this result set.
type RetrievedEvidence struct {
	Text           string       `json:"text"`
	Metadata       EvidenceMeta `json:"metadata"`
	RelevanceScore float64      `json:"relevance_score"`
	Position       int          `json:"-"` // Position in the index

	Authority AuthorityTier `json:"authority,omitempty"` // Set by the engine from Metadata.URL; never scored
}

// AuthorityTier classifies how authoritative an evidence source is
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // No URL to classify
	TierPrimary   AuthorityTier = 1 // Regulators, statutes, academic and government research
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, brand sites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts a tier name or its number
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	*t = ParseTier(string(text))
	return nil
}

// ParseTier converts "primary"/"1" etc. to a tier; anything else is tertiary
func ParseTier(s string) AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	case "unknown", "0", "":
		return TierUnknown
	default:
		return TierTertiary
	}
}

// RegulatoryStandard is one named standard applicable to a domain
type RegulatoryStandard struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// StandardsTable maps a domain name to its standards in source order.
// Order matters: explanations cite the first standards of a domain.
type StandardsTable map[string][]RegulatoryStandard

// Fingerprint identifies the table's contents, including standard order
func (t StandardsTable) Fingerprint() string {
	domains := make([]string, 0, len(t))
	for domain := range t {
		domains = append(domains, domain)
	}
	slices.Sort(domains)

	hash := sha256.New()
	for _, domain := range domains {
		hash.Write([]byte(domain))
		hash.Write([]byte{1})
		for _, std := range t[domain] {
			hash.Write([]byte(std.Name))
			hash.Write([]byte{0})
			hash.Write([]byte(std.Description))
			hash.Write([]byte{0})
		}
	}
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// GeneralDomain is the fallback domain name
const GeneralDomain = "general"

// Lookup returns the standards of a domain, falling back to the "general"
// entry, or nil when neither exists.
func (t StandardsTable) Lookup(domain string) []RegulatoryStandard {
	if s, ok := t[domain]; ok {
		return s
	}
	return t[GeneralDomain]
}
