package chart

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/tree"
)

// ErrUnknownWord is wrapped by UnknownWordError.
var ErrUnknownWord = errors.New("unknown word")

// UnknownWordError reports a sentence word with no tags. The sentence
// cannot be parsed; other sentences can.
type UnknownWordError struct {
	Word     string
	Position int
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("%v %q at position %d", ErrUnknownWord, e.Word, e.Position)
}

func (e *UnknownWordError) Unwrap() error {
	return ErrUnknownWord
}

// Tagger supplies the candidate tags of a word. *lexicon.Lexicon is one.
type Tagger interface {
	Tags(word string) []grammar.Symbol
}

// Tracer receives a line per parser step. commonlog.Logger satisfies it.
type Tracer interface {
	Debugf(format string, args ...any)
}

type nopTracer struct{}

func (nopTracer) Debugf(string, ...any) {}

type Option func(*Parser)

// WithGoal sets the symbol a complete parse must carry. Default grammar.Root.
func WithGoal(goal grammar.Symbol) Option {
	return func(p *Parser) {
		p.goal = goal
	}
}

// WithTracer sends a trace of seeding and saturation to t.
func WithTracer(t Tracer) Option {
	return func(p *Parser) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithMaxTrees stops Parses after n trees. Zero means no limit.
func WithMaxTrees(n int) Option {
	return func(p *Parser) {
		p.maxTrees = n
	}
}

// withLIFOAgenda pops the newest edge first. Only the order-independence
// test uses it; the saturated chart must come out the same.
func withLIFOAgenda() Option {
	return func(p *Parser) {
		p.lifo = true
	}
}

// Stats summarizes the last parse.
type Stats struct {
	Words      int
	Edges      int
	Committed  int
	Backtraces int
}

// Parser parses one sentence at a time. The tagger and grammar are only
// read, so several parsers may share them; a single Parser must not be
// used from more than one goroutine.
type Parser struct {
	tagger   Tagger
	grammar  *grammar.Grammar
	goal     grammar.Symbol
	tracer   Tracer
	maxTrees int
	lifo     bool // set by withLIFOAgenda in tests

	sentence []string
	edges    *EdgeTable
	chart    *Chart
	agenda   *Agenda
}

func NewParser(tagger Tagger, g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{
		tagger:  tagger,
		grammar: g,
		goal:    grammar.Root,
		tracer:  nopTracer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds the saturated chart for sentence, replacing any previous
// parse. A word without tags fails with *UnknownWordError and leaves the
// parser with no chart.
func (p *Parser) Parse(sentence []string) error {
	p.sentence = sentence
	p.edges = NewEdgeTable()
	p.chart = NewChart()
	p.agenda = &Agenda{lifo: p.lifo}

	if err := p.seed(); err != nil {
		p.sentence = nil
		p.edges = nil
		p.chart = nil
		p.agenda = nil
		return err
	}

	for !p.agenda.Empty() {
		id := p.agenda.Pop()
		edge := p.edges.Get(id)
		p.tracer.Debugf("popped %s", edge)
		p.process(edge)
		p.chart.Commit(edge)
	}
	p.tracer.Debugf("saturated: %d edges for %d words", p.edges.Len(), len(sentence))
	return nil
}

func (p *Parser) seed() error {
	for i, word := range p.sentence {
		tags := p.tagger.Tags(word)
		if len(tags) == 0 {
			return &UnknownWordError{Word: word, Position: i}
		}
		for _, tag := range tags {
			id := p.edges.Make(tag, i, i+1)
			p.tracer.Debugf("tagging %s for %q", p.edges.Get(id), word)
			p.discover(id)
			p.edges.addWord(id, word)
		}
	}
	for i := 0; i <= len(p.sentence); i++ {
		id := p.edges.Make(grammar.Empty, i, i)
		p.discover(id)
		p.edges.addWord(id, string(grammar.Empty))
	}
	return nil
}

// process projects every rule consequence of edge. Binary rules only
// combine edge with committed edges, and edge itself is committed after
// this returns, so an edge never combines with itself.
func (p *Parser) process(edge *Edge) {
	for _, r := range p.grammar.UnaryRulesByChild(edge.Label) {
		id := p.edges.Make(r.Parent, edge.Start, edge.End)
		p.tracer.Debugf("unary %s on %s gives %s", r, edge, p.edges.Get(id))
		p.discover(id)
		p.edges.addUnary(id, edge.ID)
	}

	for _, r := range p.grammar.BinaryRulesByRightChild(edge.Label) {
		for _, leftID := range p.chart.EdgesEndingAt(r.Left, edge.Start) {
			left := p.edges.Get(leftID)
			id := p.edges.Make(r.Parent, left.Start, edge.End)
			p.tracer.Debugf("binary %s on %s and %s gives %s", r, left, edge, p.edges.Get(id))
			p.discover(id)
			p.edges.addBinary(id, leftID, edge.ID)
		}
	}

	for _, r := range p.grammar.BinaryRulesByLeftChild(edge.Label) {
		for _, rightID := range p.chart.EdgesStartingAt(r.Right, edge.End) {
			right := p.edges.Get(rightID)
			id := p.edges.Make(r.Parent, edge.Start, right.End)
			p.tracer.Debugf("binary %s on %s and %s gives %s", r, edge, right, p.edges.Get(id))
			p.discover(id)
			p.edges.addBinary(id, edge.ID, rightID)
		}
	}
}

func (p *Parser) discover(id EdgeID) {
	e := p.edges.Get(id)
	if e.discovered {
		return
	}
	e.discovered = true
	p.agenda.Push(id)
}

// Sentence returns the sentence of the last successful parse.
func (p *Parser) Sentence() []string {
	return p.sentence
}

// Edges returns the edge table of the last successful parse, or nil.
func (p *Parser) Edges() *EdgeTable {
	return p.edges
}

// Chart returns the committed chart of the last successful parse, or nil.
func (p *Parser) Chart() *Chart {
	return p.chart
}

// Goal returns the goal edge spanning the whole sentence, if it was built.
func (p *Parser) Goal() (*Edge, bool) {
	if p.edges == nil {
		return nil, false
	}
	id, ok := p.edges.Lookup(p.goal, 0, len(p.sentence))
	if !ok {
		return nil, false
	}
	return p.edges.Get(id), true
}

// Parses yields every tree of the goal edge. The sequence is empty when
// the sentence has no parse.
func (p *Parser) Parses() iter.Seq[*tree.Tree] {
	goal, ok := p.Goal()
	if !ok {
		return func(func(*tree.Tree) bool) {}
	}
	return limit(p.edges.Trees(goal.ID), p.maxTrees)
}

func (p *Parser) Stats() Stats {
	s := Stats{Words: len(p.sentence)}
	if p.edges == nil {
		return s
	}
	s.Edges = p.edges.Len()
	s.Committed = p.chart.Len()
	for _, e := range p.edges.All() {
		s.Backtraces += len(e.Backtraces)
	}
	return s
}

// Dump lists every edge with its derivations, one per line.
func (p *Parser) Dump() string {
	if p.edges == nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range p.edges.All() {
		fmt.Fprintf(&sb, "%s", e)
		for _, bt := range e.Backtraces {
			switch bt.Kind {
			case Lexical:
				fmt.Fprintf(&sb, " [%q]", bt.Word)
			case Unary:
				fmt.Fprintf(&sb, " [%s]", p.edges.Get(bt.Left))
			case Binary:
				fmt.Fprintf(&sb, " [%s %s]", p.edges.Get(bt.Left), p.edges.Get(bt.Right))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func limit(seq iter.Seq[*tree.Tree], n int) iter.Seq[*tree.Tree] {
	if n <= 0 {
		return seq
	}
	return func(yield func(*tree.Tree) bool) {
		count := 0
		for t := range seq {
			if !yield(t) {
				return
			}
			count++
			if count == n {
				return
			}
		}
	}
}
