package wikifacts

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// sessionState tracks a query's progress through the research lifecycle.
type sessionState int

const (
	stateIdle sessionState = iota
	stateRetrieving
	stateReasoning
	stateFinalizing
	stateDone
	stateFailed
)

// session owns the execution of one query. The registry and ledger are
// created fresh per session so concurrent queries can never see each other's
// facts or source ids.
type session struct {
	llm       LLMClient
	provider  SourceProvider
	citations CitationFormatter
	prompts   PromptSet

	question      string
	format        OutputFormat
	status        StatusFunc
	onChunk       func(string)
	maxArticles   int
	maxChars      int
	maxToolRounds int
	debug         bool

	state    sessionState
	registry *SourceRegistry
	ledger   *FactLedger
	docs     []Document
	lastText string // most recent free-text assistant output, kept for best-effort fallback
}

func (s *session) emitStatus(message string) {
	if s.status != nil {
		s.status(message)
	}
}

func (s *session) emitChunk(chunk string) {
	if s.onChunk != nil && chunk != "" {
		s.onChunk(chunk)
	}
}

// run drives the query through retrieval, reasoning, and finalization.
func (s *session) run(ctx context.Context) (Result, error) {
	s.emitStatus("Starting research process...")

	s.state = stateRetrieving
	s.emitStatus("Searching Wikipedia for relevant articles...")
	docs, err := s.provider.SearchAndRetrieve(ctx, s.question, s.maxArticles, s.maxChars)
	if err != nil {
		s.state = stateFailed
		return Result{}, fmt.Errorf("retrieve articles for %q: %w", s.question, err)
	}
	s.docs = docs
	for i, d := range docs {
		s.registry.Register(Source{
			ID:           fmt.Sprintf("source_%d", i+1),
			Title:        d.Title,
			URL:          d.URL,
			LastModified: registryLastModified(d.LastModified),
			WordCount:    d.WordCount,
		})
	}
	s.emitStatus(fmt.Sprintf("Retrieved %d articles", len(docs)))

	if len(docs) == 0 {
		s.state = stateFinalizing
		return s.finishNoDocuments()
	}

	if s.format == FormatJSON {
		return s.runJSON(ctx)
	}
	return s.runCitation(ctx)
}

func registryLastModified(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// finishNoDocuments short-circuits past the reasoning loop when the search
// returned nothing; the document-dependent tools are never exposed.
func (s *session) finishNoDocuments() (Result, error) {
	if s.format == FormatJSON {
		summary := fmt.Sprintf("No Wikipedia articles were found for query: %s", s.question)
		doc := &StructuredDocument{Query: s.question, Summary: &summary}
		s.state = stateDone
		s.emitStatus("Research complete!")
		return s.documentResult(doc)
	}
	s.state = stateDone
	s.emitStatus("Research complete!")
	text := fmt.Sprintf("No Wikipedia articles found for query: %s", s.question)
	s.emitChunk(text)
	return Result{Format: FormatCitation, Text: text}, nil
}

func (s *session) chat(ctx context.Context, req ChatRequest) (ChatMessage, error) {
	if s.debug {
		last := req.Messages[len(req.Messages)-1]
		fmt.Printf("[WIKIFACTS DEBUG] %s prompt:\n%s\n", last.Role, last.Content)
	}
	reply, err := s.llm.Chat(ctx, req)
	if err != nil {
		return ChatMessage{}, err
	}
	if s.debug {
		fmt.Printf("[WIKIFACTS DEBUG] assistant reply (%d tool calls):\n%s\n", len(reply.ToolCalls), reply.Content)
	}
	return reply, nil
}

// runJSON runs the tool-driven reasoning loop and then requests the final
// structured document.
func (s *session) runJSON(ctx context.Context) (Result, error) {
	s.state = stateReasoning
	s.emitStatus("Reading articles and extracting facts...")

	messages := []ChatMessage{
		{Role: RoleSystem, Content: s.prompts.json()},
		{Role: RoleUser, Content: buildJSONUserPrompt(s.question, s.docs)},
	}
	tools := []ToolSpec{recordFactSpec()}

	for round := 0; round < s.maxToolRounds; round++ {
		reply, err := s.chat(ctx, ChatRequest{Messages: messages, Tools: tools})
		if err != nil {
			s.state = stateFailed
			return Result{}, fmt.Errorf("reasoning: %w", err)
		}
		messages = append(messages, reply)
		if text := StripThinkBlocks(reply.Content); text != "" {
			s.lastText = text
		}
		if len(reply.ToolCalls) == 0 {
			break
		}
		for _, call := range reply.ToolCalls {
			messages = append(messages, ChatMessage{
				Role:       RoleTool,
				Content:    s.dispatchTool(call),
				ToolCallID: call.ID,
			})
		}
	}

	return s.finalizeJSON(ctx, messages)
}

// finalizeJSON requests a schema-constrained document and resolves the final
// output through the fallback precedence chain: validated document, then
// ledger assembly, then best-effort raw text, then an empty document whose
// summary explains the failure. A structured-output failure never surfaces
// as an error; JSON-mode callers always get a parseable document.
func (s *session) finalizeJSON(ctx context.Context, messages []ChatMessage) (Result, error) {
	s.state = stateFinalizing

	messages = append(messages, ChatMessage{
		Role: RoleUser,
		Content: "Now produce the final structured JSON document for this research. " +
			"Include the recorded facts and the sources with their SOURCE IDs from the article headers.",
	})

	reply, err := s.chat(ctx, ChatRequest{Messages: messages, ResponseSchema: DocumentSchema()})
	var doc *StructuredDocument
	if err == nil {
		doc, err = ParseDocument([]byte(StripThinkBlocks(reply.Content)))
	}
	if err == nil {
		doc.Query = s.question
		if doc.Summary == nil {
			summary := SynthesizeSummary(doc.Facts)
			doc.Summary = &summary
		}
		s.state = stateDone
		s.emitStatus("Research complete!")
		return s.documentResult(doc)
	}

	s.emitStatus("Failed to validate structured JSON output.")
	if s.debug {
		fmt.Printf("[WIKIFACTS DEBUG] structured output failed: %v\n", err)
	}

	if s.ledger.Count() > 0 {
		summary := SynthesizeSummary(s.ledger.List())
		doc = &StructuredDocument{
			Query:   s.question,
			Sources: s.registry.List(),
			Facts:   s.ledger.List(),
			Summary: &summary,
		}
		s.state = stateDone
		s.emitStatus("Research complete!")
		return s.documentResult(doc)
	}

	if strings.TrimSpace(s.lastText) != "" {
		summary := s.lastText
		doc = &StructuredDocument{
			Query:   s.question,
			Sources: s.registry.List(),
			Summary: &summary,
		}
		s.state = stateDone
		s.emitStatus("Research complete!")
		return s.documentResult(doc)
	}

	summary := fmt.Sprintf("Failed to produce structured JSON output: %v", err)
	doc = &StructuredDocument{Query: s.question, Summary: &summary}
	s.state = stateFailed
	return s.documentResult(doc)
}

func (s *session) documentResult(doc *StructuredDocument) (Result, error) {
	text, err := doc.JSON()
	if err != nil {
		return Result{}, fmt.Errorf("serialize document: %w", err)
	}
	s.emitChunk(text)
	return Result{
		Format:   FormatJSON,
		Text:     text,
		Document: doc,
		Sources:  s.registry.List(),
	}, nil
}

// runCitation generates cited prose. It shares retrieval with JSON mode but
// bypasses the ledger and validator entirely.
func (s *session) runCitation(ctx context.Context) (Result, error) {
	s.state = stateReasoning
	s.emitStatus("Analyzing articles and generating response...")

	var worksCited []string
	if s.citations != nil {
		worksCited = s.citations.WorksCited(s.docs, time.Now())
	}

	req := ChatRequest{Messages: []ChatMessage{
		{Role: RoleSystem, Content: s.prompts.citation()},
		{Role: RoleUser, Content: buildCitationUserPrompt(s.question, s.docs, worksCited)},
	}}

	var reply ChatMessage
	var err error
	if s.onChunk != nil {
		reply, err = s.llm.ChatStream(ctx, req, s.onChunk)
	} else {
		reply, err = s.chat(ctx, req)
	}
	if err != nil {
		s.state = stateFailed
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}

	s.state = stateFinalizing
	text := StripThinkBlocks(reply.Content)
	if len(worksCited) > 0 && !strings.Contains(text, worksCited[0]) {
		block := "\n\nWorks Cited\n\n" + strings.Join(worksCited, "\n\n")
		s.emitChunk(block)
		text += block
	}

	s.state = stateDone
	s.emitStatus("Research complete!")
	return Result{
		Format:  FormatCitation,
		Text:    text,
		Sources: s.registry.List(),
	}, nil
}
