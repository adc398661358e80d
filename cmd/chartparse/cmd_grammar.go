package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGrammarCmd() *cobra.Command {
	var gf grammarFlags

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the binarized grammar the parser uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.loadGrammar()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), g)
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}
