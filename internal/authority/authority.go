// Package authority rates evidence sources by how authoritative their host is.
// Tiers are informational: they are shown in reports and never change a
// verdict or score.
package authority

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/tagline/internal/model"
)

// primarySuffixes are host suffixes of government and academic institutions
var primarySuffixes = []string{".gov", ".edu", ".ac.uk", ".gov.in", ".nic.in", ".ac.in", ".res.in", ".edu.in"}

// Classifier classifies source URLs into authority tiers
type Classifier struct {
	config       model.AuthorityConfig
	primaryMap   map[string]bool
	secondaryMap map[string]bool
	pathPatterns []*compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewClassifier creates a classifier; nil uses the default domain lists.
// Path patterns that do not compile are skipped.
func NewClassifier(config *model.AuthorityConfig) *Classifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	c := &Classifier{
		config:       *config,
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
	}

	for _, domain := range config.PrimaryDomains {
		c.primaryMap[strings.ToLower(domain)] = true
	}
	for _, domain := range config.SecondaryDomains {
		c.secondaryMap[strings.ToLower(domain)] = true
	}

	for _, pp := range config.PathPatterns {
		re, err := regexp.Compile(pp.Pattern)
		if err != nil {
			continue
		}
		c.pathPatterns = append(c.pathPatterns, &compiledPattern{
			pattern: re,
			tier:    tierOrTertiary(pp.Tier),
		})
	}

	return c
}

// Fingerprint identifies the classifier's domain lists and patterns
func (c *Classifier) Fingerprint() string {
	// Maps marshal with sorted keys, so equal configs hash equally
	data, err := json.Marshal(c.config)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Classify returns the tier of rawURL; an empty URL is TierUnknown
func (c *Classifier) Classify(rawURL string) model.AuthorityTier {
	if strings.TrimSpace(rawURL) == "" {
		return model.TierUnknown
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}

	host := strings.ToLower(parsed.Hostname())

	if tier, ok := c.config.DomainMap[host]; ok {
		return tierOrTertiary(tier)
	}

	if matchesDomain(host, c.primaryMap) {
		return model.TierPrimary
	}
	if matchesDomain(host, c.secondaryMap) {
		return model.TierSecondary
	}

	for _, cp := range c.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	for _, suffix := range primarySuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

// Annotate sets the Authority of every evidence item in place
func (c *Classifier) Annotate(evidence []model.RetrievedEvidence) {
	for i := range evidence {
		evidence[i].Authority = c.Classify(evidence[i].Metadata.URL)
	}
}

// matchesDomain reports whether host is a listed domain or a subdomain of one
func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func tierOrTertiary(s string) model.AuthorityTier {
	if tier := model.ParseTier(s); tier != model.TierUnknown {
		return tier
	}
	return model.TierTertiary
}
