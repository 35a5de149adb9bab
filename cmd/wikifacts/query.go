package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smhanov/wikifacts"
	"github.com/smhanov/wikifacts/config"
)

func newQueryCmd() *cobra.Command {
	var (
		asJSON   bool
		noStream bool
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a single question and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			agent, _, err := buildAgent(cfg)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			format := wikifacts.OutputFormat(cfg.Agent.OutputFormat)
			if asJSON {
				format = wikifacts.FormatJSON
			}

			statusColor := color.New(color.FgCyan)
			opts := []wikifacts.QueryOption{
				wikifacts.WithFormat(format),
				wikifacts.WithStatusFunc(func(msg string) {
					statusColor.Fprintln(os.Stderr, msg)
				}),
			}

			var result wikifacts.Result
			if format == wikifacts.FormatCitation && !noStream && !plain {
				// Streaming and glamour rendering do not mix; collect
				// the full answer and render it once at the end.
				noStream = true
			}
			if noStream || format == wikifacts.FormatJSON {
				result, err = agent.Query(cmd.Context(), question, opts...)
			} else {
				result, err = agent.QueryStream(cmd.Context(), question, func(chunk string) {
					fmt.Print(chunk)
				}, opts...)
			}
			if err != nil {
				return err
			}

			switch {
			case format == wikifacts.FormatJSON:
				fmt.Println(result.Text)
			case noStream && !plain:
				rendered, rerr := glamour.Render(result.Text, "auto")
				if rerr != nil {
					fmt.Println(result.Text)
				} else {
					fmt.Print(rendered)
				}
			case noStream:
				fmt.Println(result.Text)
			default:
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a structured JSON fact document")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the full answer instead of streaming")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable markdown rendering")
	return cmd
}
