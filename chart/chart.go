package chart

import "github.com/dhamidi/chartparse/grammar"

type chartIndex struct {
	label grammar.Symbol
	pos   int
}

// Chart indexes committed edges by (label, start) and (label, end).
// Only committed edges take part in binary combination.
type Chart struct {
	byStart map[chartIndex][]EdgeID
	byEnd   map[chartIndex][]EdgeID
	count   int
}

func NewChart() *Chart {
	return &Chart{
		byStart: make(map[chartIndex][]EdgeID),
		byEnd:   make(map[chartIndex][]EdgeID),
	}
}

// Commit adds e to both indexes.
func (c *Chart) Commit(e *Edge) {
	start := chartIndex{e.Label, e.Start}
	end := chartIndex{e.Label, e.End}
	c.byStart[start] = append(c.byStart[start], e.ID)
	c.byEnd[end] = append(c.byEnd[end], e.ID)
	c.count++
}

// EdgesStartingAt returns committed edges labeled label that begin at start.
func (c *Chart) EdgesStartingAt(label grammar.Symbol, start int) []EdgeID {
	return c.byStart[chartIndex{label, start}]
}

// EdgesEndingAt returns committed edges labeled label that end at end.
func (c *Chart) EdgesEndingAt(label grammar.Symbol, end int) []EdgeID {
	return c.byEnd[chartIndex{label, end}]
}

// Len returns the number of committed edges.
func (c *Chart) Len() int {
	return c.count
}

// Agenda is the FIFO queue of discovered edges awaiting processing.
type Agenda struct {
	queue []EdgeID
	head  int

	// lifo pops the newest edge first. It exists so tests can check the
	// chart does not depend on agenda order.
	lifo bool
}

func (a *Agenda) Push(id EdgeID) {
	a.queue = append(a.queue, id)
}

func (a *Agenda) Pop() EdgeID {
	if a.lifo {
		id := a.queue[len(a.queue)-1]
		a.queue = a.queue[:len(a.queue)-1]
		return id
	}
	id := a.queue[a.head]
	a.head++
	if a.head == len(a.queue) {
		a.queue = a.queue[:0]
		a.head = 0
	}
	return id
}

func (a *Agenda) Empty() bool {
	return a.head == len(a.queue)
}

func (a *Agenda) Len() int {
	return len(a.queue) - a.head
}
