package wikifacts

import (
	"context"
	"errors"
	"strings"
)

// Agent answers natural-language questions by searching Wikipedia and asking
// a language model to synthesize the findings, either as cited prose or as a
// structured fact document.
//
// An Agent is safe to reuse across queries: all mutable per-query state (the
// source registry, the fact ledger, the document under construction) lives in
// a session created for each Query call.
type Agent struct {
	llm       LLMClient
	provider  SourceProvider
	citations CitationFormatter
	prompts   PromptSet

	format        OutputFormat
	maxArticles   int
	maxChars      int
	maxToolRounds int
	debug         bool
}

// New constructs an Agent with optional configuration.
func New(opts ...Option) *Agent {
	a := &Agent{
		format:        FormatCitation,
		maxArticles:   defaultMaxArticles,
		maxChars:      defaultMaxArticleChars,
		maxToolRounds: defaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Query answers one question. In FormatJSON the returned Result always
// carries a document, even when structured generation fails; only retrieval
// and reasoning errors are returned as errors.
func (a *Agent) Query(ctx context.Context, question string, opts ...QueryOption) (Result, error) {
	return a.run(ctx, question, nil, opts)
}

// QueryStream answers one question, forwarding output chunks to onChunk as
// they are produced. Citation mode streams the model's text; JSON mode emits
// the final document once it is assembled.
func (a *Agent) QueryStream(ctx context.Context, question string, onChunk func(string), opts ...QueryOption) (Result, error) {
	return a.run(ctx, question, onChunk, opts)
}

func (a *Agent) run(ctx context.Context, question string, onChunk func(string), opts []QueryOption) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, errors.New("question is empty")
	}
	if a.llm == nil {
		return Result{}, errors.New("llm client is not configured")
	}
	if a.provider == nil {
		return Result{}, errors.New("source provider is not configured")
	}

	cfg := queryConfig{format: a.format}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.format != FormatJSON && cfg.format != FormatCitation {
		cfg.format = FormatCitation
	}

	s := &session{
		llm:           a.llm,
		provider:      a.provider,
		citations:     a.citations,
		prompts:       a.prompts,
		question:      question,
		format:        cfg.format,
		status:        cfg.status,
		onChunk:       onChunk,
		maxArticles:   a.maxArticles,
		maxChars:      a.maxChars,
		maxToolRounds: a.maxToolRounds,
		debug:         a.debug,
		state:         stateIdle,
		registry:      NewSourceRegistry(),
		ledger:        NewFactLedger(),
	}
	return s.run(ctx)
}
