// Package llm provides LLM clients usable with the wikifacts agent.
//
// Two providers are supported: Ollama for local models and OpenRouter
// for hosted models behind an OpenAI-compatible API. Clients are built
// through New, which selects the provider from the configuration:
//
//	client, err := llm.New(llm.Config{
//	    Provider: llm.ProviderOllama,
//	    Model:    "qwen3:8b",
//	})
//
// Both clients support tool calling, streamed responses, and
// schema-constrained JSON output.
package llm
