// Package format writes parse trees for the command line.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/chartparse/tree"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(t *tree.Tree) error
}

// Names lists the formats accepted by NewEncoder.
var Names = []string{"penn", "bracket", "json"}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "penn", "":
		return NewPennEncoder(w), nil
	case "bracket":
		return NewBracketEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
	}
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
