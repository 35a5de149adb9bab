package wikifacts

import (
	"fmt"
	"strings"
)

const noFactsSummary = "No facts were extracted from the sources."

// SynthesizeSummary derives a short summary from recorded facts. It is the
// deterministic, non-LLM fallback used when the model supplies no summary of
// its own: if a definition-category fact exists the summary leads with it,
// and a fixed sentence reports the fact and category counts.
func SynthesizeSummary(facts []Fact) string {
	if len(facts) == 0 {
		return noFactsSummary
	}

	var firstDefinition string
	categories := make(map[string]bool)
	for _, f := range facts {
		if f.Category == CategoryDefinition && firstDefinition == "" {
			firstDefinition = f.Fact
		}
		categories[f.Category] = true
	}

	var parts []string
	if firstDefinition != "" {
		parts = append(parts, firstDefinition)
	}
	parts = append(parts, fmt.Sprintf("The sources provided %d facts across %d categories.",
		len(facts), len(categories)))
	return strings.Join(parts, " ")
}
