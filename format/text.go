package format

import (
	"errors"
	"io"

	"github.com/dhamidi/chartparse/tree"
)

var errNoTree = errors.New("no tree to encode")

// PennEncoder writes indented Penn Treebank trees.
type PennEncoder struct {
	w    io.Writer
	tree *tree.Tree
}

func NewPennEncoder(w io.Writer) *PennEncoder {
	return &PennEncoder{w: w}
}

func (e *PennEncoder) Encode(t *tree.Tree) error {
	e.tree = t
	return write(e.w, e)
}

func (e *PennEncoder) MarshalText() ([]byte, error) {
	if e.tree == nil {
		return nil, errNoTree
	}
	return []byte(tree.Penn(e.tree)), nil
}

// BracketEncoder writes one tree per line.
type BracketEncoder struct {
	w    io.Writer
	tree *tree.Tree
}

func NewBracketEncoder(w io.Writer) *BracketEncoder {
	return &BracketEncoder{w: w}
}

func (e *BracketEncoder) Encode(t *tree.Tree) error {
	e.tree = t
	return write(e.w, e)
}

func (e *BracketEncoder) MarshalText() ([]byte, error) {
	if e.tree == nil {
		return nil, errNoTree
	}
	return []byte(e.tree.String() + "\n"), nil
}
