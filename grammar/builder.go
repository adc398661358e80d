package grammar

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoChildren is returned for a rule statement without a right-hand side.
var ErrNoChildren = errors.New("rule has no children")

// Builder assembles a Grammar from rule statements of any arity.
type Builder struct {
	g     *Grammar
	rules int
}

func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// Add adds the rule parent -> children with no score.
func (b *Builder) Add(parent Symbol, children ...Symbol) error {
	return b.AddScored(0, parent, children...)
}

// AddScored adds the rule parent -> children carrying score.
//
// Rules with more than two children are binarized left to right:
// A -> B C D becomes @A->B_C#n -> B C and A -> @A->B_C#n D, where n is
// the ordinal of the statement in this builder. The score sits on the
// final step; intermediate steps carry 1 (or 0 in an unscored grammar).
func (b *Builder) AddScored(score float64, parent Symbol, children ...Symbol) error {
	ordinal := b.rules
	switch len(children) {
	case 0:
		return ErrNoChildren
	case 1:
		b.g.AddUnary(UnaryRule{Parent: parent, Child: children[0], Score: score})
	case 2:
		b.g.AddBinary(BinaryRule{Parent: parent, Left: children[0], Right: children[1], Score: score})
	default:
		b.binarize(score, ordinal, parent, children)
	}
	b.rules++
	return nil
}

func (b *Builder) binarize(score float64, ordinal int, parent Symbol, children []Symbol) {
	stepScore := 0.0
	if score != 0 {
		stepScore = 1
	}

	var name strings.Builder
	name.WriteString(IntermediatePrefix)
	name.WriteString(string(parent))
	name.WriteString("->")
	name.WriteString(string(children[0]))

	suffix := "#" + strconv.Itoa(ordinal)
	left := children[0]
	for i := 1; i < len(children); i++ {
		right := children[i]
		name.WriteByte('_')
		name.WriteString(string(right))

		if i == len(children)-1 {
			b.g.AddBinary(BinaryRule{Parent: parent, Left: left, Right: right, Score: score})
			return
		}
		intermediate := Symbol(name.String() + suffix)
		b.g.AddBinary(BinaryRule{Parent: intermediate, Left: left, Right: right, Score: stepScore})
		left = intermediate
	}
}

// Grammar returns the grammar built so far.
func (b *Builder) Grammar() *Grammar {
	return b.g
}
