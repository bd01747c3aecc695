package verdict

import (
	"strings"

	"github.com/ppiankov/tagline/internal/model"
)

// domainKeywords is one industry with the substrings that vote for it
type domainKeywords struct {
	name     string
	keywords []string
}

// domains is ordered; on equal votes the earlier domain wins
var domains = []domainKeywords{
	{"food", []string{"food", "drink", "beverage", "taste", "delicious", "nutrition", "healthy", "organic", "natural"}},
	{"beauty", []string{"beauty", "skin", "hair", "cosmetic", "makeup", "fairness", "glow", "radiant"}},
	{"health", []string{"health", "medicine", "ayurvedic", "ayurveda", "herbal", "supplement", "vitamin", "cure", "treatment"}},
	{"tech", []string{"technology", "app", "digital", "smartphone", "gadget", "electronics", "device"}},
	{"finance", []string{"bank", "finance", "insurance", "investment", "mutual fund", "loan", "credit", "saving"}},
	{"automotive", []string{"car", "bike", "vehicle", "mileage", "performance", "engine", "drive"}},
}

// Domains returns the known domain names in tie-break order
func Domains() []string {
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = d.name
	}
	return names
}

// DetectDomain votes on the claim's industry. Each keyword found as a
// substring of the lowercased "brand tagline claim" text adds one vote.
// The first domain reaching the highest count wins; no votes at all yields
// "general".
func DetectDomain(brandName, tagline, claim string) string {
	text := strings.ToLower(brandName + " " + tagline + " " + claim)

	best := model.GeneralDomain
	bestCount := 0
	for _, d := range domains {
		count := 0
		for _, kw := range d.keywords {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > bestCount {
			best = d.name
			bestCount = count
		}
	}
	return best
}
