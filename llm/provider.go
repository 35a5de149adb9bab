package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/smhanov/wikifacts"
)

// Provider identifies a supported LLM backend. The set is closed: New
// rejects anything else at construction time.
type Provider string

const (
	ProviderOllama     Provider = "ollama"
	ProviderOpenRouter Provider = "openrouter"
)

// Default configuration values.
const (
	defaultTemperature = 0.7
	defaultTimeout     = 120 * time.Second
)

// Config holds the construction parameters for a backend client.
type Config struct {
	// Provider selects the backend.
	Provider Provider
	// Model is the model identifier, e.g. "llama3.1" or
	// "anthropic/claude-3.5-sonnet".
	Model string
	// BaseURL overrides the backend's default endpoint.
	BaseURL string
	// APIKey authenticates hosted backends. Required for OpenRouter,
	// ignored by Ollama.
	APIKey string
	// Temperature is the sampling temperature. Nil selects the default
	// (0.7); an explicit zero is honored.
	Temperature *float64
	// Timeout is the per-request timeout (default 120s).
	Timeout time.Duration
	// Client overrides the default HTTP client. Useful for tests.
	Client *http.Client
}

func (c *Config) applyDefaults() {
	if c.Temperature == nil {
		t := defaultTemperature
		c.Temperature = &t
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
}

// Pinger reports backend reachability. Both shipped clients implement it;
// front ends use it for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New constructs the client for the configured provider. An unrecognized
// provider is a construction-time error, never a deferred one.
func New(cfg Config) (wikifacts.LLMClient, error) {
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllama(cfg), nil
	case ProviderOpenRouter:
		return NewOpenRouter(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
