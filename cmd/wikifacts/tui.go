package main

import (
	"github.com/spf13/cobra"

	"github.com/smhanov/wikifacts"
	"github.com/smhanov/wikifacts/config"
	"github.com/smhanov/wikifacts/tui"
)

func newTUICmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			agent, _, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			format := wikifacts.OutputFormat(cfg.Agent.OutputFormat)
			if asJSON {
				format = wikifacts.FormatJSON
			}
			return tui.Run(agent, format)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "show structured JSON fact documents")
	return cmd
}
