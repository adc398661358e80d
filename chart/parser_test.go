package chart

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/lexicon"
	"github.com/dhamidi/chartparse/tree"
)

func mustGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Parse("test.cfg", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	return g
}

func mustLexicon(t *testing.T, src string) *lexicon.Lexicon {
	t.Helper()
	l, err := lexicon.Parse("test.lex", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse lexicon: %v", err)
	}
	return l
}

func collect(p *Parser) []string {
	var out []string
	for t := range p.Parses() {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

const dogGrammar = `
ROOT -> S
S -> NP VP
NP -> Det N
VP -> V
`

const dogLexicon = `
the : Det
dog : N
barks : V
`

func TestParser_SingleParse(t *testing.T) {
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar))
	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := collect(p)
	want := "(ROOT (S (NP (Det the) (N dog)) (VP (V barks))))"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%s]", got, want)
	}
}

func TestParser_UnknownWord(t *testing.T) {
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar))
	err := p.Parse([]string{"zzz"})
	if !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("expected ErrUnknownWord, got %v", err)
	}
	var uw *UnknownWordError
	if !errors.As(err, &uw) {
		t.Fatalf("expected *UnknownWordError, got %T", err)
	}
	if uw.Word != "zzz" || uw.Position != 0 {
		t.Errorf("got word %q at %d", uw.Word, uw.Position)
	}
	if got := collect(p); len(got) != 0 {
		t.Errorf("expected no trees after failed parse, got %v", got)
	}
	if p.Chart() != nil {
		t.Error("expected no chart after failed parse")
	}
}

func TestParser_UnknownWordAfterKnownWords(t *testing.T) {
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar))
	err := p.Parse(strings.Fields("the dog meows"))
	var uw *UnknownWordError
	if !errors.As(err, &uw) {
		t.Fatalf("expected *UnknownWordError, got %v", err)
	}
	if uw.Word != "meows" || uw.Position != 2 {
		t.Errorf("got word %q at %d", uw.Word, uw.Position)
	}
}

func TestParser_NoParse(t *testing.T) {
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar))
	if err := p.Parse(strings.Fields("dog the barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 0 {
		t.Errorf("expected no parses, got %v", got)
	}
	if _, ok := p.Goal(); ok {
		t.Error("expected no goal edge")
	}
}

func TestParser_ReuseBetweenSentences(t *testing.T) {
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar))
	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := p.Parse(strings.Fields("dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 0 {
		t.Errorf("second sentence should not see the first chart, got %v", got)
	}
	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 1 {
		t.Errorf("expected 1 parse, got %v", got)
	}
}

const ambiguousGrammar = `
ROOT -> Y
Y -> X X
X -> A B
X -> C D
`

const ambiguousLexicon = `
a : A C
b : B D
`

func TestParser_AmbiguityMultiplies(t *testing.T) {
	l := mustLexicon(t, ambiguousLexicon)
	g := mustGrammar(t, ambiguousGrammar)
	p := NewParser(l, g, WithGoal("X"))

	if err := p.Parse(strings.Fields("a b")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := collect(p)
	want := []string{"(X (A a) (B b))", "(X (C a) (D b))"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v, want %v", got, want)
	}

	p = NewParser(l, g)
	if err := p.Parse(strings.Fields("a b a b")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 4 {
		t.Fatalf("expected 2x2=4 parses, got %d: %v", len(got), got)
	}
}

func TestParser_MaxTrees(t *testing.T) {
	p := NewParser(mustLexicon(t, ambiguousLexicon), mustGrammar(t, ambiguousGrammar), WithMaxTrees(3))
	if err := p.Parse(strings.Fields("a b a b")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 3 {
		t.Errorf("expected 3 parses, got %d", len(got))
	}
}

func TestParser_StopEarly(t *testing.T) {
	p := NewParser(mustLexicon(t, ambiguousLexicon), mustGrammar(t, ambiguousGrammar))
	if err := p.Parse(strings.Fields("a b a b")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var first *tree.Tree
	for tr := range p.Parses() {
		first = tr
		break
	}
	if first == nil || first.Label != "ROOT" {
		t.Fatalf("expected a ROOT tree, got %v", first)
	}

	// Ranging again restarts the enumeration.
	if got := collect(p); len(got) != 4 {
		t.Errorf("expected 4 parses on second range, got %d", len(got))
	}
}

func TestParser_DuplicateRulesDoNotDuplicateTrees(t *testing.T) {
	g := mustGrammar(t, dogGrammar+"NP -> Det N\nROOT -> S\n")
	p := NewParser(mustLexicon(t, dogLexicon), g)
	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 1 {
		t.Errorf("expected 1 parse, got %v", got)
	}
}

func TestParser_Binarization(t *testing.T) {
	g := mustGrammar(t, `
ROOT -> A
A -> B C D
A -> B A D
`)
	l := mustLexicon(t, "b : B\nc : C\nd : D\n")
	ternary := [][]string{
		{"A", "B", "C", "D"},
		{"A", "B", "A", "D"},
	}

	tests := []string{"b c d", "b b c d d", "b b b c d d d", "b c", "b d c", "b c d d", "b b c d", "c d"}
	for _, sentence := range tests {
		t.Run(sentence, func(t *testing.T) {
			words := strings.Fields(sentence)
			p := NewParser(l, g)
			if err := p.Parse(words); err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, accepted := p.Goal()

			want := recognizeNary(ternary, map[string]string{"b": "B", "c": "C", "d": "D"}, words, "A")
			if accepted != want {
				t.Errorf("binarized grammar accepted=%v, ternary grammar accepted=%v", accepted, want)
			}
		})
	}

	p := NewParser(l, g)
	if err := p.Parse(strings.Fields("b c d")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var trees []*tree.Tree
	for tr := range p.Parses() {
		trees = append(trees, grammar.Debinarize(tr))
	}
	want := "(ROOT (A (B b) (C c) (D d)))"
	if len(trees) != 1 || trees[0].String() != want {
		t.Errorf("got %v, want %s", trees, want)
	}
}

// recognizeNary decides membership directly with n-ary rules.
func recognizeNary(rules [][]string, tags map[string]string, words []string, goal string) bool {
	type key struct {
		sym  string
		i, j int
	}
	memo := make(map[key]bool)
	var derives func(sym string, i, j int) bool
	var splits func(children []string, i, j int) bool

	derives = func(sym string, i, j int) bool {
		k := key{sym, i, j}
		if v, ok := memo[k]; ok {
			return v
		}
		memo[k] = false
		ok := j == i+1 && tags[words[i]] == sym
		for _, r := range rules {
			if ok {
				break
			}
			if r[0] == sym && splits(r[1:], i, j) {
				ok = true
			}
		}
		memo[k] = ok
		return ok
	}
	splits = func(children []string, i, j int) bool {
		if len(children) == 1 {
			return derives(children[0], i, j)
		}
		for k := i + 1; k < j; k++ {
			if derives(children[0], i, k) && splits(children[1:], k, j) {
				return true
			}
		}
		return false
	}
	return derives(goal, 0, len(words))
}

const ppGrammar = `
ROOT -> S
S -> NP VP
VP -> V NP
VP -> VP PP
NP -> NP PP
NP -> Det N
NP -> N
PP -> P NP
`

const ppLexicon = `
i : N
saw : V N
the : Det
man : N
with : P
telescope : N
in : P
park : N
`

func TestParser_MatchesBruteForce(t *testing.T) {
	g := mustGrammar(t, ppGrammar)
	l := mustLexicon(t, ppLexicon)

	tests := []struct {
		sentence string
		count    int
	}{
		{"i saw the man", 1},
		{"i saw the man with the telescope", 2},
		{"i saw the man with the telescope in the park", 5},
		{"the saw saw the saw", 1},
		{"saw the man", 0},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			words := strings.Fields(tt.sentence)
			p := NewParser(l, g)
			if err := p.Parse(words); err != nil {
				t.Fatalf("parse: %v", err)
			}
			got := collect(p)
			want := bruteForce(g, l, words, "ROOT")
			if strings.Join(got, "\n") != strings.Join(want, "\n") {
				t.Errorf("chart parser and brute force disagree\nchart: %v\nbrute: %v", got, want)
			}
			if len(got) != tt.count {
				t.Errorf("got %d parses, want %d", len(got), tt.count)
			}
			for tr := range p.Parses() {
				checkSound(t, g, l, words, tr)
			}
		})
	}
}

// bruteForce enumerates every tree for goal over words by trying every
// rule at every split point. Unary rules must be acyclic.
func bruteForce(g *grammar.Grammar, l *lexicon.Lexicon, words []string, goal grammar.Symbol) []string {
	type key struct {
		sym  grammar.Symbol
		i, j int
	}
	memo := make(map[key][]string)
	var trees func(sym grammar.Symbol, i, j int) []string
	trees = func(sym grammar.Symbol, i, j int) []string {
		k := key{sym, i, j}
		if v, ok := memo[k]; ok {
			return v
		}
		var out []string
		if j == i+1 {
			for _, tag := range l.Tags(words[i]) {
				if tag == sym {
					out = append(out, "("+string(sym)+" "+words[i]+")")
				}
			}
		}
		for _, r := range g.UnaryRulesByParent(sym) {
			for _, c := range trees(r.Child, i, j) {
				out = append(out, "("+string(sym)+" "+c+")")
			}
		}
		for _, r := range g.BinaryRulesByParent(sym) {
			for m := i + 1; m < j; m++ {
				for _, left := range trees(r.Left, i, m) {
					for _, right := range trees(r.Right, m, j) {
						out = append(out, "("+string(sym)+" "+left+" "+right+")")
					}
				}
			}
		}
		memo[k] = out
		return out
	}
	out := append([]string(nil), trees(goal, 0, len(words))...)
	sort.Strings(out)
	return out
}

// checkSound verifies that every local tree is a grammar rule or a
// lexicon entry and that the leaves spell the sentence.
func checkSound(t *testing.T, g *grammar.Grammar, l *lexicon.Lexicon, words []string, tr *tree.Tree) {
	t.Helper()
	if got := strings.Join(tr.Yield(), " "); got != strings.Join(words, " ") {
		t.Errorf("yield %q, want %q", got, strings.Join(words, " "))
	}
	for _, n := range tr.PreOrder() {
		switch {
		case n.IsLeaf():
		case n.IsPreTerminal():
			found := false
			for _, tag := range l.Tags(n.Children[0].Label) {
				found = found || string(tag) == n.Label
			}
			if !found {
				t.Errorf("no lexicon entry for %s", n)
			}
		case len(n.Children) == 1:
			found := false
			for _, r := range g.UnaryRulesByParent(grammar.Symbol(n.Label)) {
				found = found || string(r.Child) == n.Children[0].Label
			}
			if !found {
				t.Errorf("no unary rule for %s", n)
			}
		case len(n.Children) == 2:
			found := false
			for _, r := range g.BinaryRulesByParent(grammar.Symbol(n.Label)) {
				found = found || (string(r.Left) == n.Children[0].Label && string(r.Right) == n.Children[1].Label)
			}
			if !found {
				t.Errorf("no binary rule for %s", n)
			}
		default:
			t.Errorf("node with %d children: %s", len(n.Children), n)
		}
	}
}

func TestParser_Deterministic(t *testing.T) {
	g := mustGrammar(t, ppGrammar)
	l := mustLexicon(t, ppLexicon)
	words := strings.Fields("i saw the man with the telescope in the park")

	p := NewParser(l, g)
	if err := p.Parse(words); err != nil {
		t.Fatalf("parse: %v", err)
	}
	first := collect(p)
	for i := 0; i < 5; i++ {
		p := NewParser(l, g)
		if err := p.Parse(words); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got := collect(p); strings.Join(got, "\n") != strings.Join(first, "\n") {
			t.Fatalf("run %d differs:\n%v\n%v", i, got, first)
		}
	}
}

func TestParser_OrderIndependent(t *testing.T) {
	g := mustGrammar(t, ppGrammar)
	l := mustLexicon(t, ppLexicon)
	words := strings.Fields("i saw the man with the telescope in the park")

	fifo := NewParser(l, g)
	if err := fifo.Parse(words); err != nil {
		t.Fatalf("parse: %v", err)
	}
	lifo := NewParser(l, g, withLIFOAgenda())
	if err := lifo.Parse(words); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if a, b := collect(fifo), collect(lifo); strings.Join(a, "\n") != strings.Join(b, "\n") {
		t.Errorf("FIFO and LIFO agendas disagree:\n%v\n%v", a, b)
	}
	if a, b := edgeSet(fifo), edgeSet(lifo); strings.Join(a, "\n") != strings.Join(b, "\n") {
		t.Errorf("FIFO and LIFO charts disagree")
	}
	if fifo.Stats().Backtraces != lifo.Stats().Backtraces {
		t.Errorf("backtrace counts differ: %d vs %d", fifo.Stats().Backtraces, lifo.Stats().Backtraces)
	}
}

func edgeSet(p *Parser) []string {
	var out []string
	for _, e := range p.Edges().All() {
		out = append(out, e.String())
	}
	sort.Strings(out)
	return out
}

func TestParser_EmptyEdges(t *testing.T) {
	g := mustGrammar(t, dogGrammar+"Det -> *e*\n")
	p := NewParser(mustLexicon(t, dogLexicon), g)

	if err := p.Parse(strings.Fields("dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := collect(p)
	want := "(ROOT (S (NP (Det (*e* *e*)) (N dog)) (VP (V barks))))"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%s]", got, want)
	}

	for i := 0; i <= 2; i++ {
		if _, ok := p.Edges().Lookup(grammar.Empty, i, i); !ok {
			t.Errorf("missing empty edge at %d", i)
		}
	}

	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := collect(p); len(got) != 1 {
		t.Errorf("expected 1 parse with an overt determiner, got %v", got)
	}
}

func TestParser_EmptyRightSibling(t *testing.T) {
	g := mustGrammar(t, "ROOT -> NP\nNP -> N *e*\n")
	p := NewParser(mustLexicon(t, dogLexicon), g)
	if err := p.Parse([]string{"dog"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := collect(p)
	want := "(ROOT (NP (N dog) (*e* *e*)))"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%s]", got, want)
	}
}

func TestParser_EmptyEdgeNeverCombinesWithItself(t *testing.T) {
	g := mustGrammar(t, "X -> *e* *e*\nROOT -> X\n")
	p := NewParser(mustLexicon(t, dogLexicon), g)
	if err := p.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := p.Edges().Lookup("X", 0, 0); ok {
		t.Error("zero-width edge combined with itself")
	}
}

func TestParser_UnaryCycleIsFinite(t *testing.T) {
	g := mustGrammar(t, "ROOT -> A\nA -> B\nB -> A\n")
	p := NewParser(mustLexicon(t, "x : A\n"), g)
	if err := p.Parse([]string{"x"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	// (ROOT (A (B (A x)))) would reuse the edge A over [0,1) below itself.
	got := collect(p)
	if len(got) != 1 || got[0] != "(ROOT (A x))" {
		t.Fatalf("got %v, want [(ROOT (A x))]", got)
	}
}

func TestParser_CatalanAmbiguity(t *testing.T) {
	g := mustGrammar(t, "ROOT -> X\nX -> X X\n")
	l := mustLexicon(t, "x : X\n")
	tests := []struct {
		words int
		trees int
	}{
		{1, 1},
		{3, 2},
		{5, 14},
		{8, 429},
	}
	for _, tt := range tests {
		p := NewParser(l, g)
		if err := p.Parse(strings.Fields(strings.Repeat("x ", tt.words))); err != nil {
			t.Fatalf("parse: %v", err)
		}
		got := collect(p)
		if len(got) != tt.trees {
			t.Errorf("%d words: got %d trees, want %d", tt.words, len(got), tt.trees)
		}
		for i := 1; i < len(got); i++ {
			if got[i] == got[i-1] {
				t.Errorf("%d words: duplicate tree %s", tt.words, got[i])
				break
			}
		}
	}
}

type recordingTracer struct {
	lines []string
}

func (r *recordingTracer) Debugf(format string, args ...any) {
	r.lines = append(r.lines, format)
}

func TestParser_Tracer(t *testing.T) {
	tr := &recordingTracer{}
	p := NewParser(mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar), WithTracer(tr))
	if err := p.Parse(strings.Fields("the dog barks")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	popped := 0
	for _, line := range tr.lines {
		if strings.HasPrefix(line, "popped") {
			popped++
		}
	}
	if popped != p.Stats().Committed {
		t.Errorf("traced %d pops, chart has %d edges", popped, p.Stats().Committed)
	}
}

func TestParser_EveryDiscoveredEdgeIsCommitted(t *testing.T) {
	p := NewParser(mustLexicon(t, ppLexicon), mustGrammar(t, ppGrammar))
	if err := p.Parse(strings.Fields("i saw the man with the telescope")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := p.Stats()
	if s.Edges != s.Committed {
		t.Errorf("%d edges but %d committed", s.Edges, s.Committed)
	}
	for _, e := range p.Edges().All() {
		if !e.Discovered() {
			t.Errorf("%s never discovered", e)
		}
		if len(e.Backtraces) == 0 {
			t.Errorf("%s has no backtrace", e)
		}
	}
}

func TestParseBatch(t *testing.T) {
	l := mustLexicon(t, ppLexicon)
	g := mustGrammar(t, ppGrammar)
	sentences := [][]string{
		strings.Fields("i saw the man"),
		strings.Fields("i saw the dog"),
		strings.Fields("i saw the man with the telescope"),
		strings.Fields("saw the man"),
	}

	results := ParseBatch(context.Background(), l, g, sentences, 3)
	if len(results) != len(sentences) {
		t.Fatalf("got %d results", len(results))
	}
	wantTrees := []int{1, 0, 2, 0}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if len(r.Trees) != wantTrees[i] {
			t.Errorf("sentence %d: got %d trees, want %d", i, len(r.Trees), wantTrees[i])
		}
	}
	if !errors.Is(results[1].Err, ErrUnknownWord) {
		t.Errorf("expected unknown word for sentence 1, got %v", results[1].Err)
	}
	if results[3].Err != nil {
		t.Errorf("no parse is not an error, got %v", results[3].Err)
	}
}

func TestParseBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ParseBatch(ctx, mustLexicon(t, dogLexicon), mustGrammar(t, dogGrammar),
		[][]string{strings.Fields("the dog barks")}, 1)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestParseEach_StreamsTrees(t *testing.T) {
	g := mustGrammar(t, "ROOT -> X\nX -> X X\n")
	l := mustLexicon(t, "x : X\n")
	// 16 words have 9694845 trees; only the first few are read.
	sentences := [][]string{
		strings.Fields(strings.Repeat("x ", 16)),
		strings.Fields("x y"),
		strings.Fields(strings.Repeat("x ", 16)),
	}

	var mu sync.Mutex
	taken := make([]int, len(sentences))
	ParseEach(context.Background(), l, g, sentences, 2, func(r Result, trees iter.Seq[*tree.Tree]) {
		if r.Trees != nil {
			t.Errorf("sentence %d: trees collected", r.Index)
		}
		n := 0
		for range trees {
			n++
			if n == 3 {
				break
			}
		}
		mu.Lock()
		taken[r.Index] = n
		mu.Unlock()
	})

	if want := []int{3, 0, 3}; !slices.Equal(taken, want) {
		t.Errorf("took %v trees, want %v", taken, want)
	}
}

func TestParseBatch_MaxTrees(t *testing.T) {
	g := mustGrammar(t, "ROOT -> X\nX -> X X\n")
	l := mustLexicon(t, "x : X\n")
	sentences := [][]string{strings.Fields(strings.Repeat("x ", 16))}

	results := ParseBatch(context.Background(), l, g, sentences, 1, WithMaxTrees(5))
	if len(results[0].Trees) != 5 {
		t.Errorf("got %d trees, want 5", len(results[0].Trees))
	}
	if results[0].Stats.Words != 16 {
		t.Errorf("stats = %+v", results[0].Stats)
	}
}
