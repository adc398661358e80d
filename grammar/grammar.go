package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Grammar stores unary and binary rules together with the indexes the
// chart parser uses to find rules by child or by parent.
//
// A Grammar is read-only once built and may be shared between parsers
// running in different goroutines.
type Grammar struct {
	unaryRules  []UnaryRule
	binaryRules []BinaryRule

	unaryByChild   map[Symbol][]UnaryRule
	unaryByParent  map[Symbol][]UnaryRule
	binaryByLeft   map[Symbol][]BinaryRule
	binaryByRight  map[Symbol][]BinaryRule
	binaryByParent map[Symbol][]BinaryRule

	symbols map[Symbol]bool
}

// New creates an empty grammar.
func New() *Grammar {
	return &Grammar{
		unaryByChild:   make(map[Symbol][]UnaryRule),
		unaryByParent:  make(map[Symbol][]UnaryRule),
		binaryByLeft:   make(map[Symbol][]BinaryRule),
		binaryByRight:  make(map[Symbol][]BinaryRule),
		binaryByParent: make(map[Symbol][]BinaryRule),
		symbols:        make(map[Symbol]bool),
	}
}

// AddUnary registers r in every unary index.
func (g *Grammar) AddUnary(r UnaryRule) {
	g.symbols[r.Parent] = true
	g.symbols[r.Child] = true
	g.unaryRules = append(g.unaryRules, r)
	g.unaryByChild[r.Child] = append(g.unaryByChild[r.Child], r)
	g.unaryByParent[r.Parent] = append(g.unaryByParent[r.Parent], r)
}

// AddBinary registers r in every binary index.
func (g *Grammar) AddBinary(r BinaryRule) {
	g.symbols[r.Parent] = true
	g.symbols[r.Left] = true
	g.symbols[r.Right] = true
	g.binaryRules = append(g.binaryRules, r)
	g.binaryByLeft[r.Left] = append(g.binaryByLeft[r.Left], r)
	g.binaryByRight[r.Right] = append(g.binaryByRight[r.Right], r)
	g.binaryByParent[r.Parent] = append(g.binaryByParent[r.Parent], r)
}

// The lookups below return nil for symbols the grammar has never seen.

func (g *Grammar) UnaryRulesByChild(child Symbol) []UnaryRule {
	return g.unaryByChild[child]
}

func (g *Grammar) UnaryRulesByParent(parent Symbol) []UnaryRule {
	return g.unaryByParent[parent]
}

func (g *Grammar) BinaryRulesByLeftChild(left Symbol) []BinaryRule {
	return g.binaryByLeft[left]
}

func (g *Grammar) BinaryRulesByRightChild(right Symbol) []BinaryRule {
	return g.binaryByRight[right]
}

func (g *Grammar) BinaryRulesByParent(parent Symbol) []BinaryRule {
	return g.binaryByParent[parent]
}

// UnaryRules returns all unary rules in insertion order.
func (g *Grammar) UnaryRules() []UnaryRule {
	return g.unaryRules
}

// BinaryRules returns all binary rules in insertion order.
func (g *Grammar) BinaryRules() []BinaryRule {
	return g.binaryRules
}

// HasSymbol reports whether s occurs in any rule.
func (g *Grammar) HasSymbol(s Symbol) bool {
	return g.symbols[s]
}

// Symbols returns every symbol seen in a rule, sorted.
func (g *Grammar) Symbols() []Symbol {
	out := make([]Symbol, 0, len(g.symbols))
	for s := range g.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Grammar) String() string {
	lines := make([]string, 0, len(g.unaryRules)+len(g.binaryRules))
	for _, r := range g.binaryRules {
		lines = append(lines, formatRule(r.String(), r.Score))
	}
	for _, r := range g.unaryRules {
		lines = append(lines, formatRule(r.String(), r.Score))
	}
	sort.Strings(lines)

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatRule(rule string, score float64) string {
	if score == 0 {
		return rule
	}
	return fmt.Sprintf("%s %%%% %g", rule, score)
}
