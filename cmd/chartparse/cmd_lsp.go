package main

import (
	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/workspace"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var goal string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server for grammar and lexicon files",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := workspace.NewLSPServer(version, grammar.Symbol(goal))
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&goal, "goal", string(grammar.Root), "goal symbol checked by diagnostics")

	return cmd
}
