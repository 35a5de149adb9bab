package wikifacts

const (
	defaultMaxArticles     = 3
	defaultMaxArticleChars = 3000
	defaultMaxToolRounds   = 8
)

// Option configures an Agent.
type Option func(*Agent)

// WithLLMClient sets the language model backend.
func WithLLMClient(llm LLMClient) Option {
	return func(a *Agent) { a.llm = llm }
}

// WithSourceProvider sets the article search implementation.
func WithSourceProvider(provider SourceProvider) Option {
	return func(a *Agent) { a.provider = provider }
}

// WithCitationFormatter sets the works-cited formatter used in citation mode.
func WithCitationFormatter(formatter CitationFormatter) Option {
	return func(a *Agent) { a.citations = formatter }
}

// WithOutputFormat sets the default output format. Individual queries can
// override it with the WithFormat query option.
func WithOutputFormat(format OutputFormat) Option {
	return func(a *Agent) { a.format = format }
}

// WithMaxArticles bounds how many articles are retrieved per query.
func WithMaxArticles(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxArticles = n
		}
	}
}

// WithMaxArticleChars caps each retrieved article's content length.
func WithMaxArticleChars(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxChars = n
		}
	}
}

// WithMaxToolRounds bounds the number of tool-calling rounds in the
// reasoning loop.
func WithMaxToolRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolRounds = n
		}
	}
}

// WithPrompts overrides the built-in system prompts.
func WithPrompts(prompts PromptSet) Option {
	return func(a *Agent) { a.prompts = prompts }
}

// WithDebug enables debug logging of all model prompts and responses.
func WithDebug(enabled bool) Option {
	return func(a *Agent) { a.debug = enabled }
}
