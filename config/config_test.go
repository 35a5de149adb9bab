package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/wikifacts"
	"github.com/smhanov/wikifacts/llm"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, string(llm.ProviderOllama), cfg.LLM.Provider)
	assert.Equal(t, "en", cfg.Wikipedia.Language)
	assert.Equal(t, 3, cfg.Wikipedia.MaxArticles)
	assert.Equal(t, 3000, cfg.Wikipedia.MaxCharsPerArticle)
	assert.Equal(t, string(wikifacts.FormatCitation), cfg.Agent.OutputFormat)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
llm:
  provider: openrouter
  openrouter:
    api_key_env: TEST_OR_KEY
    model: anthropic/claude-3.5-sonnet
    temperature: 0.2
wikipedia:
  language: de
  max_articles: 5
agent:
  output_format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.LLM.OpenRouter.Model)
	assert.Equal(t, "de", cfg.Wikipedia.Language)
	assert.Equal(t, 5, cfg.Wikipedia.MaxArticles)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3000, cfg.Wikipedia.MaxCharsPerArticle)
	assert.Equal(t, "json", cfg.Agent.OutputFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad provider": "llm:\n  provider: anthropic\n",
		"bad format":   "agent:\n  output_format: xml\n",
		"zero articles": `wikipedia:
  max_articles: 0
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLLMConfigOllama(t *testing.T) {
	cfg := Default()
	cfg.LLM.Ollama.TimeoutSecs = 60

	out, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOllama, out.Provider)
	assert.Equal(t, llm.DefaultOllamaURL, out.BaseURL)
	assert.Equal(t, 60*time.Second, out.Timeout)
	assert.Empty(t, out.APIKey)
}

func TestLLMConfigPreservesZeroTemperature(t *testing.T) {
	path := writeFile(t, "config.yaml", `
llm:
  provider: ollama
  ollama:
    model: llama3.1
    temperature: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	out, err := cfg.LLMConfig()
	require.NoError(t, err)
	require.NotNil(t, out.Temperature)
	assert.Zero(t, *out.Temperature)

	// An absent key stays nil so the client applies its default.
	cfg = Default()
	out, err = cfg.LLMConfig()
	require.NoError(t, err)
	assert.Nil(t, out.Temperature)
}

func TestLLMConfigOpenRouterReadsKeyFromEnv(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = string(llm.ProviderOpenRouter)
	cfg.LLM.OpenRouter.APIKeyEnv = "TEST_OR_KEY"

	t.Setenv("TEST_OR_KEY", "sk-from-env")
	out, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", out.APIKey)

	t.Setenv("TEST_OR_KEY", "")
	_, err = cfg.LLMConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_OR_KEY")
}

func TestLoadPrompts(t *testing.T) {
	citation := writeFile(t, "citation.txt", "custom citation prompt")
	cfg := Default()
	cfg.Prompts.CitationFile = citation

	ps, err := cfg.LoadPrompts()
	require.NoError(t, err)
	assert.Equal(t, "custom citation prompt", ps.Citation)
	assert.Empty(t, ps.JSON)

	cfg.Prompts.JSONFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = cfg.LoadPrompts()
	assert.Error(t, err)
}
