package main

import (
	"errors"
	"fmt"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/project"
	"github.com/dhamidi/chartparse/workspace"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("check failed")

func newCheckCmd() *cobra.Command {
	var gf grammarFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report malformed lines, undefined symbols and unreachable symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf.project()
			if err != nil {
				return err
			}

			ws := workspace.New(p.RootDir, grammar.Symbol(gf.goal))
			for _, files := range []struct {
				paths []string
				kind  project.FileKind
			}{
				{p.Grammars, project.GrammarFile},
				{p.Lexicons, project.LexiconFile},
				{p.Treebanks, project.TreebankFile},
			} {
				for _, path := range files.paths {
					if err := ws.AddFile(path, files.kind); err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
				}
			}

			out := cmd.OutOrStdout()
			errs := 0
			for _, path := range ws.Paths() {
				for _, d := range ws.Diagnostics(path) {
					fmt.Fprintf(out, "%s:%d:%d: %s: %s\n", path, d.Line+1, d.Column+1, d.Severity, d.Message)
					if d.Severity == workspace.SeverityError {
						errs++
					}
				}
			}
			if errs > 0 {
				return fmt.Errorf("%w: %d errors", errCheckFailed, errs)
			}
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}
