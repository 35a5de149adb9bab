package wikifacts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PromptSet carries the system prompts for both output modes. Zero-value
// fields fall back to the built-in defaults.
type PromptSet struct {
	Citation string
	JSON     string
}

const defaultCitationSystemPrompt = "You are a research assistant that answers questions using Wikipedia articles. " +
	"Base every claim on the provided articles - never on internal knowledge alone. " +
	"Write a clear, well-organized answer and include proper MLA citations at the end, " +
	"using the Works Cited entries provided with the articles."

const defaultJSONSystemPrompt = "You are a research assistant that extracts structured facts from Wikipedia articles. " +
	"Read the provided articles carefully and record each important fact with the record_fact tool, " +
	"citing the SOURCE IDs given in the article headers. Be specific and precise. " +
	"Never invent facts that do not appear in the articles."

func (p PromptSet) citation() string {
	if strings.TrimSpace(p.Citation) != "" {
		return p.Citation
	}
	return defaultCitationSystemPrompt
}

func (p PromptSet) json() string {
	if strings.TrimSpace(p.JSON) != "" {
		return p.JSON
	}
	return defaultJSONSystemPrompt
}

func buildJSONUserPrompt(question string, docs []Document) string {
	var b strings.Builder
	b.WriteString("User Question: ")
	b.WriteString(question)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("1. Read through the articles below carefully\n")
	b.WriteString("2. As you discover important information, use the record_fact tool to save each fact\n")
	b.WriteString("3. For each fact, specify:\n")
	b.WriteString("   - The fact itself (be specific and precise)\n")
	b.WriteString("   - The source_ids that support it (provided in the article headers)\n")
	b.WriteString("   - The category (definition, history, application, technical, or other)\n")
	b.WriteString("4. Extract as many relevant facts as you can find\n")
	b.WriteString("5. When you're done extracting facts, simply indicate you've finished\n")
	b.WriteString("\nRemember: Use record_fact for EACH piece of information you want to save.\n\n")
	b.WriteString(formatDocumentsJSON(docs))
	return b.String()
}

func buildCitationUserPrompt(question string, docs []Document, worksCited []string) string {
	var b strings.Builder
	b.WriteString("User Question: ")
	b.WriteString(question)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("1. Analyze the articles below carefully\n")
	b.WriteString("2. Provide a comprehensive answer based on the information found\n")
	b.WriteString("3. Include proper MLA citations at the end of your response using the Works Cited entries provided\n\n")
	b.WriteString(formatDocumentsCitation(docs, worksCited))
	return b.String()
}

var sectionRule = strings.Repeat("=", 80)

// formatDocumentsJSON renders retrieved articles with SOURCE ID headers so
// the model can reference them in record_fact calls.
func formatDocumentsJSON(docs []Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d Wikipedia articles:\n\n", len(docs))
	for i, d := range docs {
		fmt.Fprintf(&b, "%s\n", sectionRule)
		fmt.Fprintf(&b, "SOURCE ID: source_%d\n", i+1)
		fmt.Fprintf(&b, "Article: %s\n", d.Title)
		fmt.Fprintf(&b, "%s\n", sectionRule)
		fmt.Fprintf(&b, "URL: %s\n", d.URL)
		fmt.Fprintf(&b, "Word Count: %d\n", d.WordCount)
		fmt.Fprintf(&b, "Last Modified: %s\n\n", formatLastModified(d.LastModified))
		fmt.Fprintf(&b, "Summary:\n%s\n\n", d.Summary)
		fmt.Fprintf(&b, "Content:\n%s\n\n", d.Content)
	}
	b.WriteString("\nIMPORTANT: Use the provided SOURCE IDs when referencing facts.\n")
	return b.String()
}

// formatDocumentsCitation renders retrieved articles followed by a Works
// Cited block for the citation-mode prompt.
func formatDocumentsCitation(docs []Document, worksCited []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d Wikipedia articles:\n\n", len(docs))
	for i, d := range docs {
		fmt.Fprintf(&b, "%s\n", sectionRule)
		fmt.Fprintf(&b, "Article %d: %s\n", i+1, d.Title)
		fmt.Fprintf(&b, "%s\n", sectionRule)
		fmt.Fprintf(&b, "URL: %s\n", d.URL)
		fmt.Fprintf(&b, "Word Count: %d\n", d.WordCount)
		fmt.Fprintf(&b, "Last Modified: %s\n\n", formatLastModified(d.LastModified))
		fmt.Fprintf(&b, "Summary:\n%s\n\n", d.Summary)
		fmt.Fprintf(&b, "Content:\n%s\n\n", d.Content)
	}
	if len(worksCited) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionRule)
		b.WriteString("Works Cited (MLA Format):\n")
		fmt.Fprintf(&b, "%s\n", sectionRule)
		for _, c := range worksCited {
			b.WriteString(c)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func formatLastModified(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.Format("2006-01-02")
}

var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkBlocks removes <think>...</think> blocks from model responses.
// Some models (like qwen3) output reasoning in these blocks.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}
