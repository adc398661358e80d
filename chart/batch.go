package chart

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/tree"
)

// Result is the outcome of one sentence in a batch.
type Result struct {
	Index    int
	Sentence []string
	Trees    []*tree.Tree
	Stats    Stats
	Err      error
}

// ParseEach parses independent sentences on up to workers goroutines and
// hands every sentence to visit on the worker that parsed it. trees reads
// the worker's chart lazily and is only valid until visit returns; it is
// empty when r.Err is set. r.Trees is always nil. visit may run on
// several goroutines at once.
//
// Every worker owns its Parser; tagger and g are shared read-only. The
// context is consulted before each sentence starts, never during
// saturation; sentences not started before it is done report ctx.Err().
func ParseEach(ctx context.Context, tagger Tagger, g *grammar.Grammar, sentences [][]string, workers int, visit func(r Result, trees iter.Seq[*tree.Tree]), opts ...Option) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := NewParser(tagger, g, opts...)
			for i := range jobs {
				parseOne(ctx, p, i, sentences[i], visit)
			}
		}()
	}

	for i := range sentences {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// ParseBatch is ParseEach collecting every tree into Result.Trees, in
// input order. A highly ambiguous sentence has a huge number of trees,
// so pass WithMaxTrees unless the grammar is known to be tame.
func ParseBatch(ctx context.Context, tagger Tagger, g *grammar.Grammar, sentences [][]string, workers int, opts ...Option) []Result {
	results := make([]Result, len(sentences))
	ParseEach(ctx, tagger, g, sentences, workers, func(r Result, trees iter.Seq[*tree.Tree]) {
		r.Trees = slices.Collect(trees)
		results[r.Index] = r
	}, opts...)
	return results
}

func noTrees(func(*tree.Tree) bool) {}

func parseOne(ctx context.Context, p *Parser, i int, sentence []string, visit func(Result, iter.Seq[*tree.Tree])) {
	r := Result{Index: i, Sentence: sentence}
	if err := ctx.Err(); err != nil {
		r.Err = err
		visit(r, noTrees)
		return
	}
	if err := p.Parse(sentence); err != nil {
		r.Err = err
		visit(r, noTrees)
		return
	}
	r.Stats = p.Stats()
	visit(r, p.Parses())
}
