package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/chartparse/tree"
)

// JSONEncoder writes each tree as an indented JSON object. Nodes carry
// the word span they cover.
type JSONEncoder struct {
	w    io.Writer
	tree *tree.Tree
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(t *tree.Tree) error {
	e.tree = t
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	if e.tree == nil {
		return nil, errNoTree
	}
	pos := 0
	return json.MarshalIndent(nodeToJSON(e.tree, &pos), "", "  ")
}

type jsonNode struct {
	Label    string      `json:"label"`
	Word     string      `json:"word,omitempty"`
	Span     jsonSpan    `json:"span"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// nodeToJSON folds preterminals into a single node with a word. pos is
// the index of the next leaf.
func nodeToJSON(t *tree.Tree, pos *int) *jsonNode {
	jn := &jsonNode{Label: t.Label, Span: jsonSpan{Start: *pos}}

	switch {
	case t.IsPreTerminal():
		jn.Word = t.Children[0].Label
		*pos++
	case t.IsLeaf():
		jn.Word = t.Label
		*pos++
	default:
		jn.Children = make([]*jsonNode, len(t.Children))
		for i, child := range t.Children {
			jn.Children[i] = nodeToJSON(child, pos)
		}
	}

	jn.Span.End = *pos
	return jn
}
