package wikifacts

import (
	"context"
	"encoding/json"
	"time"
)

// Document is a single retrieved encyclopedia article.
type Document struct {
	Title        string
	URL          string
	Summary      string
	Content      string
	LastModified *time.Time
	WordCount    int
}

// SourceProvider searches an encyclopedia and retrieves matching articles.
// Implementations bound the result set by maxArticles and truncate each
// article body to maxCharsPerArticle.
type SourceProvider interface {
	SearchAndRetrieve(ctx context.Context, query string, maxArticles, maxCharsPerArticle int) ([]Document, error)
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatMessage is one turn in a model conversation.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // set on RoleTool messages to pair results with calls
}

// ToolSpec declares a callable operation to the model. Parameters is a JSON
// schema describing the arguments object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ChatRequest is a single model call. When ResponseSchema is non-nil the
// client must constrain the reply to JSON conforming to that schema; the
// reply content is then the raw JSON text.
type ChatRequest struct {
	Messages       []ChatMessage
	Tools          []ToolSpec
	ResponseSchema json.RawMessage
}

// LLMClient is implemented by language model backends.
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (ChatMessage, error)
	// ChatStream behaves like Chat but forwards text deltas to onDelta as
	// they arrive. The returned message carries the complete text.
	ChatStream(ctx context.Context, req ChatRequest, onDelta func(string)) (ChatMessage, error)
}

// CitationFormatter renders a works-cited list for retrieved documents.
// Citation-mode answers get the list appended when the model leaves it out.
type CitationFormatter interface {
	WorksCited(docs []Document, accessed time.Time) []string
}

// StatusFunc receives human-readable progress messages at fixed lifecycle
// points. It is fire-and-forget: implementations must not block.
type StatusFunc func(message string)

// OutputFormat selects how Query renders its result.
type OutputFormat string

const (
	// FormatCitation produces cited prose with an MLA works-cited block.
	FormatCitation OutputFormat = "mla"
	// FormatJSON produces a schema-validated structured document.
	FormatJSON OutputFormat = "json"
)

// Result is returned by Agent.Query.
type Result struct {
	Format OutputFormat
	// Text is the rendered output: an indented JSON document in FormatJSON,
	// cited prose in FormatCitation.
	Text string
	// Document is the structured document produced in FormatJSON, nil in
	// FormatCitation.
	Document *StructuredDocument
	// Sources lists the registered sources for the query in retrieval order.
	Sources []Source
}

// QueryOption configures a single call to Agent.Query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	format OutputFormat
	status StatusFunc
}

// WithFormat overrides the agent's configured output format for one query.
func WithFormat(format OutputFormat) QueryOption {
	return func(c *queryConfig) { c.format = format }
}

// WithStatusFunc supplies a progress callback for one query. Absence is a
// no-op, never an error.
func WithStatusFunc(fn StatusFunc) QueryOption {
	return func(c *queryConfig) { c.status = fn }
}
