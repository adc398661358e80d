package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Penn renders t with Penn Treebank indentation: adjacent preterminals
// share a line, everything else starts a new indented line.
func Penn(t *Tree) string {
	var sb strings.Builder
	renderPenn(&sb, t, 0, false, false, true)
	sb.WriteByte('\n')
	return sb.String()
}

func renderPenn(sb *strings.Builder, t *Tree, indent int, firstSibling, leftSiblingPreTerminal, topLevel bool) {
	sameLine := t.IsPreTerminal() && (firstSibling || (leftSiblingPreTerminal && !strings.HasPrefix(t.Label, "CC")))
	if sameLine {
		sb.WriteByte(' ')
	} else {
		if !topLevel {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat("  ", indent))
	}

	if t.IsLeaf() || t.IsPreTerminal() {
		t.writeTo(sb)
		return
	}

	sb.WriteByte('(')
	sb.WriteString(t.Label)
	first, leftPreTerminal := true, true
	for _, child := range t.Children {
		renderPenn(sb, child, indent+1, first, leftPreTerminal, false)
		leftPreTerminal = child.IsPreTerminal() && !strings.HasPrefix(child.Label, "CC")
		first = false
	}
	sb.WriteByte(')')
}

// RootLabel is given to a bracketed tree whose outermost node is unlabeled.
const RootLabel = "ROOT"

// ErrSyntax is wrapped by every error the Reader returns for bad input.
var ErrSyntax = errors.New("tree syntax error")

// Reader reads bracketed trees such as "(S (NP (DT the) (NN dog)))" one
// after another from a stream.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Parse reads a single tree from s.
func Parse(s string) (*Tree, error) {
	t, err := NewReader(strings.NewReader(s)).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrSyntax)
	}
	return t, err
}

// Read returns the next tree, or io.EOF when the input is exhausted.
func (rd *Reader) Read() (*Tree, error) {
	rd.skipSpace()
	ch, err := rd.peek()
	if err != nil {
		return nil, err
	}
	if ch != '(' {
		return nil, fmt.Errorf("%w: expected '(', got %q", ErrSyntax, ch)
	}
	return rd.readTree(true)
}

// ReadAll reads trees until io.EOF.
func (rd *Reader) ReadAll() ([]*Tree, error) {
	var trees []*Tree
	for {
		t, err := rd.Read()
		if err == io.EOF {
			return trees, nil
		}
		if err != nil {
			return trees, err
		}
		trees = append(trees, t)
	}
}

// readTree uses an explicit stack so deep treebank trees cannot exhaust
// the goroutine stack.
func (rd *Reader) readTree(isRoot bool) (*Tree, error) {
	var stack []*Tree
	for {
		rd.skipSpace()
		ch, err := rd.peek()
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
		}
		switch ch {
		case '(':
			rd.r.ReadByte()
			rd.skipSpace()
			label := rd.readText()
			if label == "" && isRoot && len(stack) == 0 {
				label = RootLabel
			}
			stack = append(stack, &Tree{Label: label})
		case ')':
			rd.r.ReadByte()
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
			}
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return n, nil
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		default:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: leaf outside brackets", ErrSyntax)
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, Leaf(rd.readText()))
		}
	}
}

func (rd *Reader) peek() (byte, error) {
	b, err := rd.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (rd *Reader) skipSpace() {
	for {
		ch, err := rd.peek()
		if err != nil || !isSpace(ch) {
			return
		}
		rd.r.ReadByte()
	}
}

func (rd *Reader) readText() string {
	var sb strings.Builder
	for {
		ch, err := rd.peek()
		if err != nil || isSpace(ch) || ch == '(' || ch == ')' {
			return sb.String()
		}
		rd.r.ReadByte()
		sb.WriteByte(ch)
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\f' || ch == '\r' || ch == '\n'
}
