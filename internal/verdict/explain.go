package verdict

import (
	"fmt"
	"strings"

	"github.com/ppiankov/tagline/internal/model"
)

const (
	maxCitations    = 2   // Per side (supporting, contradicting)
	maxStandards    = 2   // Regulatory standards cited
	excerptLength   = 150 // Runes of evidence text quoted per citation
	excerptEllipsis = "..."
)

var leads = map[model.Verdict]string{
	model.VerdictSubstantiated: "This claim appears to be substantiated by the available evidence. " +
		"Multiple credible sources support the key assertions made.",
	model.VerdictPartiallyTrue: "This claim appears to be partially true based on the available evidence. " +
		"Some aspects are supported while others lack sufficient evidence or may be exaggerated.",
	model.VerdictMisleading: "This claim appears to be misleading based on the available evidence. " +
		"Key assertions are contradicted by credible sources or use deceptive framing.",
}

// explain renders the verdict lead, up to two supporting and two
// contradicting citations (already sorted), and up to two standards.
func explain(v model.Verdict, supporting, contradicting []model.StanceEvaluation, standards []model.RegulatoryStandard) string {
	var b strings.Builder

	b.WriteString(leads[v])
	b.WriteString("\n\nEvidence Summary:")

	if len(supporting) > 0 {
		b.WriteString("\n- Supporting Evidence:")
		writeCitations(&b, supporting)
	} else {
		b.WriteString("\n- No clear supporting evidence found.")
	}

	if len(contradicting) > 0 {
		b.WriteString("\n- Contradicting Evidence:")
		writeCitations(&b, contradicting)
	}

	if len(standards) > 0 {
		b.WriteString("\n\nApplicable Regulatory Standards:")
		for i, std := range standards {
			if i >= maxStandards {
				break
			}
			b.WriteString("\n- ")
			b.WriteString(std.Description)
		}
	}

	return b.String()
}

func writeCitations(b *strings.Builder, evals []model.StanceEvaluation) {
	for i, e := range evals {
		if i >= maxCitations {
			break
		}
		fmt.Fprintf(b, "\n  %d. %s: %s%s", i+1, e.Evidence.Metadata.SourceOrUnknown(), excerpt(e.Evidence.Text), excerptEllipsis)
	}
}

// excerpt returns the first excerptLength runes of text
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return string(runes[:excerptLength])
}
