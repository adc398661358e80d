// Package chart implements an agenda-driven bottom-up chart parser for
// context-free grammars in which every rule has one or two children.
//
// A parse seeds one edge per (word, tag) pair plus a zero-width edge at
// every position, then pops edges off a FIFO agenda, projecting unary
// rules and combining with adjacent edges already committed to the chart,
// until no new edge can be built. All trees are then read lazily from the
// backtraces of the goal edge.
package chart

import (
	"fmt"

	"github.com/dhamidi/chartparse/grammar"
)

// EdgeID indexes an edge in its EdgeTable.
type EdgeID int

// BacktraceKind tells how an edge was derived.
type BacktraceKind int

const (
	Lexical BacktraceKind = iota
	Unary
	Binary
)

func (k BacktraceKind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	}
	return fmt.Sprintf("BacktraceKind(%d)", int(k))
}

// Backtrace is one derivation of an edge. Lexical backtraces carry Word;
// unary backtraces carry the child in Left; binary ones carry Left and Right.
type Backtrace struct {
	Kind  BacktraceKind
	Word  string
	Left  EdgeID
	Right EdgeID
}

// Edge is the canonical node for a label over the span [Start, End).
type Edge struct {
	ID         EdgeID
	Label      grammar.Symbol
	Start      int
	End        int
	Backtraces []Backtrace

	discovered bool
}

// Discovered reports whether the edge has been put on the agenda.
func (e *Edge) Discovered() bool {
	return e.discovered
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge:(%s, %d, %d)", e.Label, e.Start, e.End)
}

type edgeKey struct {
	label      grammar.Symbol
	start, end int
}

type derivation struct {
	edge EdgeID
	bt   Backtrace
}

// EdgeTable interns edges for a single parse. Equality of
// (label, start, end) is the identity of an edge: Make returns the same
// EdgeID for equal keys, so the rest of the parser compares IDs only.
type EdgeTable struct {
	edges []*Edge
	index map[edgeKey]EdgeID
	seen  map[derivation]bool
}

func NewEdgeTable() *EdgeTable {
	return &EdgeTable{
		index: make(map[edgeKey]EdgeID),
		seen:  make(map[derivation]bool),
	}
}

// Make returns the edge for (label, start, end), creating it on first use.
func (t *EdgeTable) Make(label grammar.Symbol, start, end int) EdgeID {
	key := edgeKey{label, start, end}
	if id, ok := t.index[key]; ok {
		return id
	}
	id := EdgeID(len(t.edges))
	t.edges = append(t.edges, &Edge{ID: id, Label: label, Start: start, End: end})
	t.index[key] = id
	return id
}

// Lookup finds an existing edge without creating one.
func (t *EdgeTable) Lookup(label grammar.Symbol, start, end int) (EdgeID, bool) {
	id, ok := t.index[edgeKey{label, start, end}]
	return id, ok
}

// Get returns the edge for id. The pointer stays valid for the life of the table.
func (t *EdgeTable) Get(id EdgeID) *Edge {
	return t.edges[id]
}

func (t *EdgeTable) Len() int {
	return len(t.edges)
}

// All returns every edge in creation order.
func (t *EdgeTable) All() []*Edge {
	return t.edges
}

// AddBacktrace records a derivation of id. A derivation already recorded
// for the same edge is ignored; the result reports whether bt was new.
func (t *EdgeTable) AddBacktrace(id EdgeID, bt Backtrace) bool {
	d := derivation{id, bt}
	if t.seen[d] {
		return false
	}
	t.seen[d] = true
	e := t.edges[id]
	e.Backtraces = append(e.Backtraces, bt)
	return true
}

func (t *EdgeTable) addWord(id EdgeID, word string) bool {
	return t.AddBacktrace(id, Backtrace{Kind: Lexical, Word: word})
}

func (t *EdgeTable) addUnary(id, child EdgeID) bool {
	return t.AddBacktrace(id, Backtrace{Kind: Unary, Left: child})
}

func (t *EdgeTable) addBinary(id, left, right EdgeID) bool {
	return t.AddBacktrace(id, Backtrace{Kind: Binary, Left: left, Right: right})
}

// Children returns the child edges a backtrace refers to.
func (bt Backtrace) Children() []EdgeID {
	switch bt.Kind {
	case Unary:
		return []EdgeID{bt.Left}
	case Binary:
		return []EdgeID{bt.Left, bt.Right}
	}
	return nil
}
