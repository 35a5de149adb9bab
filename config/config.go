// Package config loads wikifacts configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smhanov/wikifacts"
	"github.com/smhanov/wikifacts/llm"
)

// Config is the top level configuration file structure.
type Config struct {
	LLM       LLM       `yaml:"llm"`
	Wikipedia Wikipedia `yaml:"wikipedia"`
	Agent     Agent     `yaml:"agent"`
	Server    Server    `yaml:"server"`
	Prompts   Prompts   `yaml:"prompts"`
}

// LLM selects and configures the language model provider.
type LLM struct {
	Provider   string     `yaml:"provider"`
	Ollama     Ollama     `yaml:"ollama"`
	OpenRouter OpenRouter `yaml:"openrouter"`
}

// Ollama holds settings for a local Ollama server. Temperature is a
// pointer so an explicit zero is distinguishable from an absent key.
type Ollama struct {
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	TimeoutSecs int      `yaml:"timeout_seconds"`
}

// OpenRouter holds settings for the OpenRouter API. The API key is
// never stored in the file; APIKeyEnv names the environment variable
// that carries it.
type OpenRouter struct {
	APIKeyEnv   string   `yaml:"api_key_env"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	TimeoutSecs int      `yaml:"timeout_seconds"`
}

// Wikipedia configures article retrieval.
type Wikipedia struct {
	Language           string `yaml:"language"`
	MaxArticles        int    `yaml:"max_articles"`
	MaxCharsPerArticle int    `yaml:"max_chars_per_article"`
	UserAgent          string `yaml:"user_agent"`
}

// Agent configures the research agent itself.
type Agent struct {
	OutputFormat  string `yaml:"output_format"`
	MaxToolRounds int    `yaml:"max_tool_rounds"`
	Debug         bool   `yaml:"debug"`
}

// Server configures the web API server.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Prompts points at optional files overriding the built-in system prompts.
type Prompts struct {
	CitationFile string `yaml:"citation_file"`
	JSONFile     string `yaml:"json_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LLM: LLM{
			Provider: string(llm.ProviderOllama),
			Ollama: Ollama{
				BaseURL: llm.DefaultOllamaURL,
				Model:   "qwen3:8b",
			},
			OpenRouter: OpenRouter{
				APIKeyEnv: "OPENROUTER_API_KEY",
				Model:     "openai/gpt-4o-mini",
			},
		},
		Wikipedia: Wikipedia{
			Language:           "en",
			MaxArticles:        3,
			MaxCharsPerArticle: 3000,
		},
		Agent: Agent{
			OutputFormat: string(wikifacts.FormatCitation),
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8000,
		},
	}
}

// Load reads a YAML configuration file, layering it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c Config) Validate() error {
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderOllama, llm.ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	switch wikifacts.OutputFormat(c.Agent.OutputFormat) {
	case wikifacts.FormatCitation, wikifacts.FormatJSON:
	default:
		return fmt.Errorf("unknown output format: %q", c.Agent.OutputFormat)
	}
	if c.Wikipedia.MaxArticles <= 0 {
		return fmt.Errorf("wikipedia.max_articles must be positive")
	}
	if c.Wikipedia.MaxCharsPerArticle <= 0 {
		return fmt.Errorf("wikipedia.max_chars_per_article must be positive")
	}
	return nil
}

// LLMConfig resolves the provider section into an llm.Config, reading
// the OpenRouter API key from the environment when needed.
func (c Config) LLMConfig() (llm.Config, error) {
	provider := llm.Provider(c.LLM.Provider)
	switch provider {
	case llm.ProviderOllama:
		return llm.Config{
			Provider:    provider,
			Model:       c.LLM.Ollama.Model,
			BaseURL:     c.LLM.Ollama.BaseURL,
			Temperature: c.LLM.Ollama.Temperature,
			Timeout:     time.Duration(c.LLM.Ollama.TimeoutSecs) * time.Second,
		}, nil
	case llm.ProviderOpenRouter:
		envName := c.LLM.OpenRouter.APIKeyEnv
		if envName == "" {
			envName = "OPENROUTER_API_KEY"
		}
		key := strings.TrimSpace(os.Getenv(envName))
		if key == "" {
			return llm.Config{}, fmt.Errorf("openrouter API key not set: export %s", envName)
		}
		return llm.Config{
			Provider:    provider,
			Model:       c.LLM.OpenRouter.Model,
			BaseURL:     c.LLM.OpenRouter.BaseURL,
			APIKey:      key,
			Temperature: c.LLM.OpenRouter.Temperature,
			Timeout:     time.Duration(c.LLM.OpenRouter.TimeoutSecs) * time.Second,
		}, nil
	default:
		return llm.Config{}, fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
}

// LoadPrompts reads the optional prompt override files. Missing entries
// fall through to the built-in prompts.
func (c Config) LoadPrompts() (wikifacts.PromptSet, error) {
	var ps wikifacts.PromptSet
	if c.Prompts.CitationFile != "" {
		data, err := os.ReadFile(c.Prompts.CitationFile)
		if err != nil {
			return ps, fmt.Errorf("read citation prompt: %w", err)
		}
		ps.Citation = string(data)
	}
	if c.Prompts.JSONFile != "" {
		data, err := os.ReadFile(c.Prompts.JSONFile)
		if err != nil {
			return ps, fmt.Errorf("read json prompt: %w", err)
		}
		ps.JSON = string(data)
	}
	return ps, nil
}
