package grammar

import (
	"reflect"
	"sort"
	"text/scanner"

	"golang.org/x/exp/ebnf"
)

// Vocabulary is the view of a lexicon that verification needs.
type Vocabulary interface {
	Words() []string
	Tags(word string) []Symbol
}

// Verify checks g together with the tags of vocab for symbols used on a
// right-hand side that nothing derives, symbols unreachable from goal,
// and a missing goal. The grammar is translated to EBNF productions and
// checked with ebnf.Verify; symbol names appear as ‹name› in messages.
func Verify(filename string, g *Grammar, vocab Vocabulary, goal Symbol) []error {
	alternatives := make(map[Symbol][]ebnf.Expression)
	pos := scanner.Position{Filename: filename}

	name := func(s Symbol) *ebnf.Name {
		return &ebnf.Name{StringPos: pos, String: ebnfName(s)}
	}

	for _, r := range g.UnaryRules() {
		alternatives[r.Parent] = append(alternatives[r.Parent], name(r.Child))
	}
	for _, r := range g.BinaryRules() {
		alternatives[r.Parent] = append(alternatives[r.Parent], ebnf.Sequence{name(r.Left), name(r.Right)})
	}
	if vocab != nil {
		for _, word := range vocab.Words() {
			for _, tag := range vocab.Tags(word) {
				alternatives[tag] = append(alternatives[tag], &ebnf.Token{StringPos: pos, String: word})
			}
		}
	}
	if g.HasSymbol(Empty) {
		alternatives[Empty] = append(alternatives[Empty], &ebnf.Token{StringPos: pos, String: ""})
	}

	productions := make(ebnf.Grammar, len(alternatives))
	for sym, alts := range alternatives {
		var expr ebnf.Expression = ebnf.Alternative(alts)
		if len(alts) == 1 {
			expr = alts[0]
		}
		productions[ebnfName(sym)] = &ebnf.Production{Name: name(sym), Expr: expr}
	}

	errs := splitErrors(ebnf.Verify(productions, ebnfName(goal)))
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}

// ebnfName brackets every symbol so that all productions share one
// lexical class and arbitrary symbol spellings stay valid names.
func ebnfName(s Symbol) string {
	return "‹" + string(s) + "›"
}

// splitErrors unpacks the error list ebnf.Verify returns.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		return []error{err}
	}
	out := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			out = append(out, e)
		}
	}
	return out
}
