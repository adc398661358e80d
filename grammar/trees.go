package grammar

import (
	"fmt"
	"strings"

	"github.com/dhamidi/chartparse/tree"
)

// FromTrees estimates a grammar from the local trees of a treebank.
// Each rule is scored with its relative frequency count(rule)/count(parent).
// Preterminals and leaves contribute no rules; rules with more than two
// children are binarized as by Builder.
func FromTrees(trees []*tree.Tree) (*Grammar, error) {
	type statement struct {
		parent   Symbol
		children []Symbol
	}

	var order []string
	statements := make(map[string]statement)
	ruleCounts := make(map[string]float64)
	parentCounts := make(map[Symbol]float64)

	for _, t := range trees {
		for _, n := range t.PreOrder() {
			if n.IsLeaf() || n.IsPreTerminal() {
				continue
			}
			children := make([]Symbol, len(n.Children))
			for i, c := range n.Children {
				if c.IsLeaf() {
					return nil, fmt.Errorf("local tree %s mixes words and phrases", n)
				}
				children[i] = Symbol(c.Label)
			}
			key := n.Label + " -> " + joinSymbols(children)
			if _, ok := statements[key]; !ok {
				order = append(order, key)
				statements[key] = statement{Symbol(n.Label), children}
			}
			ruleCounts[key]++
			parentCounts[Symbol(n.Label)]++
		}
	}

	b := NewBuilder()
	for _, key := range order {
		s := statements[key]
		score := ruleCounts[key] / parentCounts[s.parent]
		if err := b.AddScored(score, s.parent, s.children...); err != nil {
			return nil, fmt.Errorf("add %s: %w", key, err)
		}
	}
	return b.Grammar(), nil
}

// Debinarize splices out every intermediate node introduced by
// binarization, restoring the original n-ary constituents.
func Debinarize(t *tree.Tree) *tree.Tree {
	return tree.Splice(t, func(label string) bool {
		return IsIntermediate(Symbol(label))
	})
}

// Binarize returns a copy of t in which every node with more than two
// children is split left to right the way Builder splits rules. The
// intermediate labels carry no ordinal since a tree has no statement
// order; Debinarize undoes the split.
func Binarize(t *tree.Tree) *tree.Tree {
	if t.IsLeaf() {
		return tree.Leaf(t.Label)
	}
	children := make([]*tree.Tree, len(t.Children))
	for i, c := range t.Children {
		children[i] = Binarize(c)
	}
	if len(children) <= 2 {
		return tree.New(t.Label, children...)
	}

	name := IntermediatePrefix + t.Label + "->" + children[0].Label
	left := children[0]
	for _, right := range children[1 : len(children)-1] {
		name += "_" + right.Label
		left = tree.New(name, left, right)
	}
	return tree.New(t.Label, left, children[len(children)-1])
}

func joinSymbols(symbols []Symbol) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}
