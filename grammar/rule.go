// Package grammar holds context-free grammars indexed for bottom-up chart parsing.
package grammar

import (
	"fmt"
	"strings"
)

// Symbol is a nonterminal, preterminal tag or intermediate label.
type Symbol string

const (
	// Empty labels the zero-width edges seeded at every sentence position.
	Empty Symbol = "*e*"

	// Root is the default goal symbol.
	Root Symbol = "ROOT"

	// IntermediatePrefix starts every symbol introduced by binarization.
	// Tree transformations rely on it to splice those nodes back out.
	IntermediatePrefix = "@"
)

// IsIntermediate reports whether s was synthesized by binarization.
func IsIntermediate(s Symbol) bool {
	return strings.HasPrefix(string(s), IntermediatePrefix)
}

// UnaryRule rewrites Parent to a single Child.
type UnaryRule struct {
	Parent Symbol
	Child  Symbol
	Score  float64
}

// UnaryKey identifies a unary rule independently of its score.
type UnaryKey struct {
	Parent, Child Symbol
}

func (r UnaryRule) Key() UnaryKey {
	return UnaryKey{r.Parent, r.Child}
}

func (r UnaryRule) String() string {
	return fmt.Sprintf("%s -> %s", r.Parent, r.Child)
}

// BinaryRule rewrites Parent to Left followed by Right.
type BinaryRule struct {
	Parent Symbol
	Left   Symbol
	Right  Symbol
	Score  float64
}

// BinaryKey identifies a binary rule independently of its score.
type BinaryKey struct {
	Parent, Left, Right Symbol
}

func (r BinaryRule) Key() BinaryKey {
	return BinaryKey{r.Parent, r.Left, r.Right}
}

func (r BinaryRule) String() string {
	return fmt.Sprintf("%s -> %s %s", r.Parent, r.Left, r.Right)
}
