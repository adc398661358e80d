package main

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/dhamidi/chartparse/chart"
	"github.com/dhamidi/chartparse/format"
	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/tree"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

// outputFlags controls how trees are printed.
type outputFlags struct {
	format   string
	raw      bool
	maxTrees int
}

func (f *outputFlags) register(cmd *cobra.Command, defaultMax int) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "penn", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "keep the intermediate nodes introduced by binarization")
	cmd.Flags().IntVarP(&f.maxTrees, "max", "n", defaultMax, "print at most this many trees (0 for all)")
}

func (f *outputFlags) parserOptions(goal string) []chart.Option {
	return []chart.Option{
		chart.WithGoal(grammar.Symbol(goal)),
		chart.WithMaxTrees(f.maxTrees),
		chart.WithTracer(commonlog.GetLogger("chartparse.chart")),
	}
}

// writeTrees prints every tree under a "PARSE k" header and returns
// how many it printed.
func (f *outputFlags) writeTrees(w io.Writer, trees iter.Seq[*tree.Tree]) (int, error) {
	enc, err := format.NewEncoder(f.format, w)
	if err != nil {
		return 0, err
	}
	k := 0
	for t := range trees {
		if !f.raw {
			if d := grammar.Debinarize(t); d != nil {
				t = d
			}
		}
		fmt.Fprintf(w, "PARSE %d\n", k)
		if err := enc.Encode(t); err != nil {
			return k, fmt.Errorf("encode: %w", err)
		}
		k++
	}
	return k, nil
}

func newParseCmd() *cobra.Command {
	var gf grammarFlags
	var of outputFlags
	var dump bool

	cmd := &cobra.Command{
		Use:   "parse <sentence>...",
		Short: "Parse one sentence and print all of its trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, l, err := gf.load()
			if err != nil {
				return err
			}
			log := commonlog.GetLogger("chartparse")
			words := strings.Fields(strings.Join(args, " "))

			p := chart.NewParser(l, g, of.parserOptions(gf.goal)...)
			if err := p.Parse(words); err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			stats := p.Stats()
			log.Infof("%d words, %d edges, %d backtraces", stats.Words, stats.Edges, stats.Backtraces)

			out := cmd.OutOrStdout()
			if dump {
				fmt.Fprint(out, p.Dump())
			}
			n, err := of.writeTrees(out, p.Parses())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no parse")
			}
			return nil
		},
	}

	gf.register(cmd)
	of.register(cmd, 0)
	cmd.Flags().BoolVar(&dump, "dump", false, "print every edge of the chart with its derivations")

	return cmd
}
