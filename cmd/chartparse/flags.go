package main

import (
	"fmt"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/lexicon"
	"github.com/dhamidi/chartparse/project"
	"github.com/spf13/cobra"
)

// grammarFlags selects the grammar and lexicon a command works with.
// Explicit files win; otherwise the directory given by --dir, or by
// CHARTPARSE_DIR, or the current directory is scanned.
type grammarFlags struct {
	grammars  []string
	lexicons  []string
	treebanks []string
	dir       string
	goal      string
}

func (f *grammarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.grammars, "grammar", "g", nil, "grammar file (repeatable)")
	cmd.Flags().StringArrayVarP(&f.lexicons, "lexicon", "l", nil, "lexicon file (repeatable)")
	cmd.Flags().StringArrayVarP(&f.treebanks, "treebank", "t", nil, "treebank to induce a missing grammar or lexicon from (repeatable)")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "grammar directory (default $"+project.EnvDir+" or .)")
	cmd.Flags().StringVar(&f.goal, "goal", string(grammar.Root), "goal symbol of a complete parse")
}

func (f *grammarFlags) explicit() bool {
	return len(f.grammars)+len(f.lexicons)+len(f.treebanks) > 0
}

func (f *grammarFlags) project() (*project.Project, error) {
	if f.explicit() {
		return &project.Project{
			RootDir:   f.dir,
			Grammars:  f.grammars,
			Lexicons:  f.lexicons,
			Treebanks: f.treebanks,
		}, nil
	}
	if f.dir != "" {
		return project.LoadFrom(f.dir)
	}
	return project.Load()
}

func (f *grammarFlags) loadGrammar() (*grammar.Grammar, error) {
	p, err := f.project()
	if err != nil {
		return nil, err
	}
	g, err := p.Grammar()
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}
	return g, nil
}

func (f *grammarFlags) load() (*grammar.Grammar, *lexicon.Lexicon, error) {
	p, err := f.project()
	if err != nil {
		return nil, nil, err
	}
	g, err := p.Grammar()
	if err != nil {
		return nil, nil, fmt.Errorf("load grammar: %w", err)
	}
	l, err := p.Lexicon()
	if err != nil {
		return nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	return g, l, nil
}
