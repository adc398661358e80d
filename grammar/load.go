package grammar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadLine is wrapped by every LineError.
var ErrBadLine = errors.New("bad line")

// LineError reports a malformed line in a grammar or lexicon file.
type LineError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	msg := fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, ErrBadLine, e.Text)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LineError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBadLine}
	}
	return []error{ErrBadLine, e.Err}
}

var rulePattern = regexp.MustCompile(`^\s*(\S+?)\s*-*>\s*(.*\S)\s*$`)

// ParseRule splits a rule line of the form "Parent -> c1 c2 ..." with an
// optional trailing "%% score".
func ParseRule(line string) (parent Symbol, children []Symbol, score float64, err error) {
	body := line
	if i := strings.Index(line, "%%"); i >= 0 {
		body = line[:i]
		score, err = strconv.ParseFloat(strings.TrimSpace(line[i+2:]), 64)
		if err != nil {
			return "", nil, 0, fmt.Errorf("parse score: %w", err)
		}
	}
	m := rulePattern.FindStringSubmatch(body)
	if m == nil {
		return "", nil, 0, errors.New("expected Parent -> children")
	}
	for _, f := range strings.Fields(m[2]) {
		children = append(children, Symbol(f))
	}
	return Symbol(m[1]), children, score, nil
}

// IsSkippable reports whether a line carries no rule: blank or a # comment.
func IsSkippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// Parse reads a grammar file, one rule per line.
func Parse(filename string, r io.Reader) (*Grammar, error) {
	b := NewBuilder()
	if err := b.Parse(filename, r); err != nil {
		return nil, err
	}
	return b.Grammar(), nil
}

// Parse adds every rule of a grammar file to the builder. Several files
// may be read into one builder; their rules are merged.
func (b *Builder) Parse(filename string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if IsSkippable(line) {
			continue
		}
		parent, children, score, err := ParseRule(line)
		if err != nil {
			return &LineError{File: filename, Line: lineNo, Text: line, Err: err}
		}
		if err := b.AddScored(score, parent, children...); err != nil {
			return &LineError{File: filename, Line: lineNo, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read grammar: %w", err)
	}
	return nil
}

// Load reads a grammar file from disk.
func Load(filename string) (*Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return Parse(filename, f)
}
