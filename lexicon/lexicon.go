// Package lexicon maps surface words to their candidate preterminal tags.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/tree"
)

// Lexicon is read-only once built and may be shared across goroutines.
type Lexicon struct {
	tags map[string][]grammar.Symbol
}

func New() *Lexicon {
	return &Lexicon{tags: make(map[string][]grammar.Symbol)}
}

// Add appends tags to the word's tag list, skipping tags already present.
func (l *Lexicon) Add(word string, tags ...grammar.Symbol) {
	existing := l.tags[word]
	for _, tag := range tags {
		if !contains(existing, tag) {
			existing = append(existing, tag)
		}
	}
	l.tags[word] = existing
}

// Tags returns the tags of word in insertion order, or nil for an unknown word.
func (l *Lexicon) Tags(word string) []grammar.Symbol {
	return l.tags[word]
}

func (l *Lexicon) Has(word string) bool {
	return len(l.tags[word]) > 0
}

// Words returns every known word, sorted.
func (l *Lexicon) Words() []string {
	words := make([]string, 0, len(l.tags))
	for w := range l.tags {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// AllTags returns every tag of every word, sorted and de-duplicated.
func (l *Lexicon) AllTags() []grammar.Symbol {
	seen := make(map[grammar.Symbol]bool)
	var out []grammar.Symbol
	for _, tags := range l.tags {
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (l *Lexicon) Len() int {
	return len(l.tags)
}

// String renders the lexicon in its file format, words and tags sorted.
func (l *Lexicon) String() string {
	var sb strings.Builder
	for _, word := range l.Words() {
		tags := append([]grammar.Symbol(nil), l.tags[word]...)
		sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
		sb.WriteString(word)
		sb.WriteString(" :")
		for _, t := range tags {
			sb.WriteByte(' ')
			sb.WriteString(string(t))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FromTrees collects the (word, tag) pairs of every preterminal.
func FromTrees(trees []*tree.Tree) *Lexicon {
	l := New()
	for _, t := range trees {
		for _, n := range t.PreOrder() {
			if n.IsPreTerminal() {
				l.Add(n.Children[0].Label, grammar.Symbol(n.Label))
			}
		}
	}
	return l
}

var linePattern = regexp.MustCompile(`^\s*(\S+)\s*:\s*(.*\S)\s*$`)

// ParseEntry splits a lexicon line of the form "word : tag1 tag2 ...".
func ParseEntry(line string) (word string, tags []grammar.Symbol, err error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return "", nil, errors.New("expected word : tags")
	}
	for _, f := range strings.Fields(m[2]) {
		tags = append(tags, grammar.Symbol(f))
	}
	return m[1], tags, nil
}

// Parse reads a lexicon file, one word per line. Blank lines and lines
// starting with # are skipped.
func Parse(filename string, r io.Reader) (*Lexicon, error) {
	l := New()
	if err := l.Parse(filename, r); err != nil {
		return nil, err
	}
	return l, nil
}

// Parse adds the entries of a lexicon file to l. A word listed in several
// files keeps the tags of all of them.
func (l *Lexicon) Parse(filename string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if grammar.IsSkippable(line) {
			continue
		}
		word, tags, err := ParseEntry(line)
		if err != nil {
			return &grammar.LineError{File: filename, Line: lineNo, Text: line, Err: err}
		}
		l.Add(word, tags...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read lexicon: %w", err)
	}
	return nil
}

// Load reads a lexicon file from disk.
func Load(filename string) (*Lexicon, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	return Parse(filename, f)
}

func contains(tags []grammar.Symbol, tag grammar.Symbol) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
