package wikifacts

import (
	"encoding/json"
	"fmt"
)

// Fact categories. Anything outside this set is normalized to CategoryOther
// at recording time.
const (
	CategoryDefinition  = "definition"
	CategoryHistory     = "history"
	CategoryApplication = "application"
	CategoryTechnical   = "technical"
	CategoryOther       = "other"
)

var validCategories = map[string]bool{
	CategoryDefinition:  true,
	CategoryHistory:     true,
	CategoryApplication: true,
	CategoryTechnical:   true,
	CategoryOther:       true,
}

// NormalizeCategory coerces unknown categories to CategoryOther.
func NormalizeCategory(category string) string {
	if validCategories[category] {
		return category
	}
	return CategoryOther
}

// SourceIDs is a list of source identifiers. Models frequently supply a bare
// string where a list is expected, so unmarshalling accepts either form and
// coerces a scalar to a one-element list.
type SourceIDs []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SourceIDs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("source_ids must be a string or a list of strings")
	}
	*s = SourceIDs{single}
	return nil
}

// Source is the metadata of one retrieved article. The ID is assigned as the
// article's 1-based retrieval rank ("source_1", "source_2", ...) and is never
// reused within a query.
type Source struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	LastModified string `json:"last_modified"`
	WordCount    int    `json:"word_count"`
}

// Fact is one atomic claim extracted during reasoning, with its supporting
// source references and category.
type Fact struct {
	Fact      string    `json:"fact"`
	SourceIDs SourceIDs `json:"source_ids"`
	Category  string    `json:"category"`
}

// SourceRegistry is the deduplicated, insertion-ordered list of sources
// retrieved during one query. It is created fresh per query and never shared
// across queries.
type SourceRegistry struct {
	sources []Source
	seen    map[string]bool
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{seen: make(map[string]bool)}
}

// Register adds a source. Registering an ID that is already present is a
// no-op; the first registration wins. Inputs are stored as given, without
// validation.
func (r *SourceRegistry) Register(src Source) {
	if r.seen[src.ID] {
		return
	}
	r.seen[src.ID] = true
	r.sources = append(r.sources, src)
}

// List returns the registered sources in registration order.
func (r *SourceRegistry) List() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of registered sources.
func (r *SourceRegistry) Len() int {
	return len(r.sources)
}

// FactLedger is the append-only list of facts recorded during one query's
// reasoning phase. A fresh ledger is created per query; it is owned by that
// query's session and never shared through global state.
type FactLedger struct {
	facts []Fact
}

// NewFactLedger creates an empty ledger.
func NewFactLedger() *FactLedger {
	return &FactLedger{}
}

// Record appends a fact and returns a confirmation message for the model.
// It never fails: an unknown category is coerced to "other" and the inputs
// are otherwise stored as given.
func (l *FactLedger) Record(fact string, sourceIDs SourceIDs, category string) string {
	category = NormalizeCategory(category)
	l.facts = append(l.facts, Fact{
		Fact:      fact,
		SourceIDs: sourceIDs,
		Category:  category,
	})
	return fmt.Sprintf("Fact recorded (category: %s, %d source(s))", category, len(sourceIDs))
}

// Count returns the number of recorded facts.
func (l *FactLedger) Count() int {
	return len(l.facts)
}

// List returns the recorded facts in recording order. Repeated identical
// facts stay separate entries; the ledger never deduplicates.
func (l *FactLedger) List() []Fact {
	out := make([]Fact, len(l.facts))
	copy(out, l.facts)
	return out
}
