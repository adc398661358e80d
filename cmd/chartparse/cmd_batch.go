package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dhamidi/chartparse/chart"
	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/tree"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

// defaultBatchMaxTrees bounds the trees kept per sentence, since every
// sentence's output is held until the sentences before it are done.
const defaultBatchMaxTrees = 100

func newBatchCmd() *cobra.Command {
	var gf grammarFlags
	var of outputFlags
	var workers int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Parse one sentence per line, concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, l, err := gf.load()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open sentences: %w", err)
				}
				defer f.Close()
				in = f
			}
			sentences, err := readSentences(in)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			log := commonlog.GetLogger("chartparse")
			start := time.Now()
			outputs := make([]bytes.Buffer, len(sentences))
			errs := make([]error, len(sentences))
			chart.ParseEach(ctx, l, g, sentences, workers, func(r chart.Result, trees iter.Seq[*tree.Tree]) {
				errs[r.Index] = writeResult(&outputs[r.Index], &of, r, trees)
			}, of.parserOptions(gf.goal)...)
			log.Infof("parsed %d sentences on %d workers in %s", len(sentences), workers, time.Since(start))

			out := cmd.OutOrStdout()
			for i := range outputs {
				if errs[i] != nil {
					return errs[i]
				}
				if _, err := outputs[i].WriteTo(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	gf.register(cmd)
	of.register(cmd, defaultBatchMaxTrees)
	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "number of sentences parsed at once")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop starting new sentences after this long (0 for no limit)")

	return cmd
}

// readSentences returns the whitespace-separated words of every line.
// Blank lines and lines starting with # are skipped.
func readSentences(r io.Reader) ([][]string, error) {
	var sentences [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if grammar.IsSkippable(line) {
			continue
		}
		sentences = append(sentences, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	return sentences, nil
}

// writeResult prints one sentence of a batch. trees is only read while
// the worker that parsed the sentence is still holding its chart.
func writeResult(w io.Writer, of *outputFlags, r chart.Result, trees iter.Seq[*tree.Tree]) error {
	fmt.Fprintf(w, "SENTENCE %d: %s\n", r.Index, strings.Join(r.Sentence, " "))
	if r.Err != nil {
		fmt.Fprintf(w, "error: %v\n", r.Err)
		return nil
	}
	n, err := of.writeTrees(w, trees)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(w, "no parse")
	}
	return nil
}
