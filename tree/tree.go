// Package tree provides labeled ordered trees for parse output and treebanks.
package tree

import "strings"

// Tree is a labeled node. Leaves carry words, preterminals carry a tag
// over exactly one leaf.
type Tree struct {
	Label    string
	Children []*Tree
}

// Leaf creates a childless node.
func Leaf(label string) *Tree {
	return &Tree{Label: label}
}

// New creates a node with the given children.
func New(label string, children ...*Tree) *Tree {
	return &Tree{Label: label, Children: children}
}

func (t *Tree) IsLeaf() bool {
	return len(t.Children) == 0
}

// IsPreTerminal reports whether t dominates exactly one leaf.
func (t *Tree) IsPreTerminal() bool {
	return len(t.Children) == 1 && t.Children[0].IsLeaf()
}

// Yield returns the leaf labels from left to right.
func (t *Tree) Yield() []string {
	var out []string
	stack := []*Tree{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			out = append(out, n.Label)
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// PreOrder returns every node, parents before children.
func (t *Tree) PreOrder() []*Tree {
	var out []*Tree
	stack := []*Tree{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// Equal compares labels and shape.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Label != other.Label || len(t.Children) != len(other.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of t.
func (t *Tree) Copy() *Tree {
	c := &Tree{Label: t.Label}
	if len(t.Children) > 0 {
		c.Children = make([]*Tree, len(t.Children))
		for i, child := range t.Children {
			c.Children[i] = child.Copy()
		}
	}
	return c
}

// String renders t on one line, e.g. (S (NP (Det the) (N dog)) (VP (V barks))).
func (t *Tree) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Tree) writeTo(sb *strings.Builder) {
	if t.IsLeaf() {
		sb.WriteString(t.Label)
		return
	}
	sb.WriteByte('(')
	sb.WriteString(t.Label)
	for _, child := range t.Children {
		sb.WriteByte(' ')
		child.writeTo(sb)
	}
	sb.WriteByte(')')
}

// Splice removes every non-leaf node whose label matches, promoting its
// children into its parent. It returns nil when splicing leaves no single
// root.
func Splice(t *Tree, match func(label string) bool) *Tree {
	roots := splice(t, match)
	if len(roots) != 1 {
		return nil
	}
	return roots[0]
}

func splice(t *Tree, match func(label string) bool) []*Tree {
	if t.IsLeaf() {
		return []*Tree{Leaf(t.Label)}
	}
	var children []*Tree
	for _, child := range t.Children {
		children = append(children, splice(child, match)...)
	}
	if match(t.Label) {
		return children
	}
	return []*Tree{New(t.Label, children...)}
}
