package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/project"
)

type CompletionKind int

const (
	CompletionKindPhrase CompletionKind = iota
	CompletionKindTag
)

type Completion struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

// CompletionsAtPoint returns the symbols that extend the partial symbol
// before the zero-based line and column of path. Intermediate symbols
// are never offered. In a lexicon only the tag list is completed.
func (w *Workspace) CompletionsAtPoint(path string, line, col int) []Completion {
	w.mu.RLock()
	defer w.mu.RUnlock()

	f := w.files[path]
	if f == nil || f.Kind == project.TreebankFile {
		return nil
	}
	lines := strings.Split(string(f.Content), "\n")
	if line < 0 || line >= len(lines) {
		return nil
	}
	text := lines[line]
	if col > len(text) {
		col = len(text)
	}
	if f.Kind == project.LexiconFile && !strings.Contains(text[:col], ":") {
		return nil
	}
	prefix := partialSymbol(text[:col])

	g, _ := w.grammarLocked()
	l := w.lexiconLocked()

	details := make(map[grammar.Symbol]Completion)
	for _, sym := range g.Symbols() {
		if grammar.IsIntermediate(sym) || sym == grammar.Empty {
			continue
		}
		n := len(g.UnaryRulesByParent(sym)) + len(g.BinaryRulesByParent(sym))
		details[sym] = Completion{
			Label:  string(sym),
			Kind:   CompletionKindPhrase,
			Detail: fmt.Sprintf("%d rules", n),
		}
	}
	tagged := make(map[grammar.Symbol]int)
	for _, word := range l.Words() {
		for _, tag := range l.Tags(word) {
			tagged[tag]++
		}
	}
	for tag, n := range tagged {
		details[tag] = Completion{
			Label:  string(tag),
			Kind:   CompletionKindTag,
			Detail: fmt.Sprintf("tag of %d words", n),
		}
	}

	var out []Completion
	for sym, c := range details {
		if strings.HasPrefix(string(sym), prefix) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// partialSymbol returns the symbol characters immediately before the end
// of text.
func partialSymbol(text string) string {
	i := len(text)
	for i > 0 && !isBoundary(text[i-1]) {
		i--
	}
	return text[i:]
}
