// Command wikifacts answers questions from Wikipedia content, either on
// the command line, through an HTTP API, or in an interactive terminal UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smhanov/wikifacts"
	"github.com/smhanov/wikifacts/config"
	"github.com/smhanov/wikifacts/llm"
	"github.com/smhanov/wikifacts/wiki"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "wikifacts",
		Short: "Research questions using Wikipedia and an LLM",
		Long: `wikifacts searches Wikipedia for a question, extracts facts with a
language model, and produces either a cited prose answer or a structured
JSON fact document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newTUICmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildAgent assembles the agent and its LLM client from configuration.
func buildAgent(cfg config.Config) (*wikifacts.Agent, wikifacts.LLMClient, error) {
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.New(llmCfg)
	if err != nil {
		return nil, nil, err
	}

	prompts, err := cfg.LoadPrompts()
	if err != nil {
		return nil, nil, err
	}

	wikiClient := wiki.NewClient(wiki.Config{
		Language:  cfg.Wikipedia.Language,
		UserAgent: cfg.Wikipedia.UserAgent,
	})

	opts := []wikifacts.Option{
		wikifacts.WithLLMClient(client),
		wikifacts.WithSourceProvider(wikiClient),
		wikifacts.WithCitationFormatter(wiki.MLA{}),
		wikifacts.WithOutputFormat(wikifacts.OutputFormat(cfg.Agent.OutputFormat)),
		wikifacts.WithMaxArticles(cfg.Wikipedia.MaxArticles),
		wikifacts.WithMaxArticleChars(cfg.Wikipedia.MaxCharsPerArticle),
		wikifacts.WithPrompts(prompts),
	}
	if cfg.Agent.MaxToolRounds > 0 {
		opts = append(opts, wikifacts.WithMaxToolRounds(cfg.Agent.MaxToolRounds))
	}
	if cfg.Agent.Debug {
		opts = append(opts, wikifacts.WithDebug(true))
	}
	return wikifacts.New(opts...), client, nil
}

func modelName(cfg config.Config) string {
	if llm.Provider(cfg.LLM.Provider) == llm.ProviderOpenRouter {
		return cfg.LLM.OpenRouter.Model
	}
	return cfg.LLM.Ollama.Model
}
