// Package workspace keeps the grammar, lexicon and treebank files of a
// grammar directory in memory, checks them together and serves them to
// editors over the Language Server Protocol.
package workspace

import (
	"bytes"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/lexicon"
	"github.com/dhamidi/chartparse/project"
	"github.com/dhamidi/chartparse/tree"
)

type File struct {
	Path    string
	Kind    project.FileKind
	Content []byte
	Err     error
}

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	goal    grammar.Symbol
	files   map[string]*File
	open    map[string]bool
}

func New(rootDir string, goal grammar.Symbol) *Workspace {
	if goal == "" {
		goal = grammar.Root
	}
	return &Workspace{
		rootDir: rootDir,
		goal:    goal,
		files:   make(map[string]*File),
		open:    make(map[string]bool),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// ScanAll loads every file of the grammar directory.
func (w *Workspace) ScanAll() error {
	p, err := project.LoadFrom(w.rootDir)
	if err != nil {
		return err
	}
	for _, path := range p.Files() {
		if err := w.ScanFile(path); err != nil {
			return err
		}
	}
	return nil
}

// ScanFile reads path from disk, classifying it by extension.
func (w *Workspace) ScanFile(path string) error {
	return w.AddFile(path, project.KindOf(path))
}

// AddFile reads path from disk as a file of the given kind.
func (w *Workspace) AddFile(path string, kind project.FileKind) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updateFileLocked(path, kind, content)
	return nil
}

// UpdateFile replaces the content of path, for example with an unsaved
// editor buffer.
func (w *Workspace) UpdateFile(path string, content []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kind := project.KindOf(path)
	if f, ok := w.files[path]; ok {
		kind = f.Kind
	}
	w.updateFileLocked(path, kind, content)
}

func (w *Workspace) updateFileLocked(path string, kind project.FileKind, content []byte) {
	if kind == project.Unknown {
		return
	}
	w.files[path] = &File{
		Path:    path,
		Kind:    kind,
		Content: content,
		Err:     check(path, kind, content),
	}
}

// check parses content on its own and returns the first error.
func check(path string, kind project.FileKind, content []byte) error {
	var err error
	switch kind {
	case project.GrammarFile:
		_, err = grammar.Parse(path, bytes.NewReader(content))
	case project.LexiconFile:
		_, err = lexicon.Parse(path, bytes.NewReader(content))
	case project.TreebankFile:
		_, err = tree.NewReader(bytes.NewReader(content)).ReadAll()
	}
	return err
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
	delete(w.open, path)
}

func (w *Workspace) GetFile(path string) *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// SetOpen records whether an editor owns the content of path. The file
// watcher leaves open files alone.
func (w *Workspace) SetOpen(path string, open bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if open {
		w.open[path] = true
	} else {
		delete(w.open, path)
	}
}

func (w *Workspace) IsOpen(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.open[path]
}

// Paths returns the paths of all loaded files, sorted.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pathsLocked()
}

func (w *Workspace) pathsLocked() []string {
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Grammar merges every grammar file that parses. It reports false when
// there is none.
func (w *Workspace) Grammar() (*grammar.Grammar, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.grammarLocked()
}

func (w *Workspace) grammarLocked() (*grammar.Grammar, bool) {
	b := grammar.NewBuilder()
	found := false
	for _, path := range w.pathsLocked() {
		f := w.files[path]
		if f.Kind != project.GrammarFile || f.Err != nil {
			continue
		}
		if err := b.Parse(path, bytes.NewReader(f.Content)); err == nil {
			found = true
		}
	}
	return b.Grammar(), found
}

// Lexicon merges every lexicon file that parses.
func (w *Workspace) Lexicon() *lexicon.Lexicon {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lexiconLocked()
}

func (w *Workspace) lexiconLocked() *lexicon.Lexicon {
	l := lexicon.New()
	for _, path := range w.pathsLocked() {
		f := w.files[path]
		if f.Kind != project.LexiconFile || f.Err != nil {
			continue
		}
		if err := l.Parse(path, bytes.NewReader(f.Content)); err != nil {
			log.Warningf("merging lexicon %s: %s", path, err)
		}
	}
	return l
}

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a problem found in a file. Line and Column are zero-based.
type Diagnostic struct {
	Line      int
	Column    int
	EndColumn int
	Severity  Severity
	Message   string
}

// Diagnostics returns the problems of path. A file that does not parse
// reports only its first bad line. Otherwise the merged grammar and
// lexicon are verified against the goal and every finding about a
// symbol that occurs in path is reported at its first occurrence.
func (w *Workspace) Diagnostics(path string) []Diagnostic {
	w.mu.RLock()
	defer w.mu.RUnlock()

	f := w.files[path]
	if f == nil {
		return nil
	}
	if f.Err != nil {
		return []Diagnostic{errorDiagnostic(f)}
	}
	if f.Kind == project.TreebankFile {
		return nil
	}

	g, ok := w.grammarLocked()
	if !ok {
		return nil
	}

	var diags []Diagnostic
	for _, err := range grammar.Verify(path, g, w.lexiconLocked(), w.goal) {
		msg := strings.TrimPrefix(err.Error(), path+": ")
		msg = strings.TrimPrefix(msg, "<input>: ")
		severity := SeverityError
		if strings.HasSuffix(msg, " is unused") {
			severity = SeverityWarning
		}

		sym, ok := quotedSymbol(msg)
		if !ok {
			continue
		}
		line, col, found := locate(f, sym)
		if !found {
			if !strings.HasPrefix(msg, "no start production") || f.Kind != project.GrammarFile {
				continue
			}
			line, col = 0, 0
		}
		diags = append(diags, Diagnostic{
			Line:      line,
			Column:    col,
			EndColumn: col + len(sym),
			Severity:  severity,
			Message:   msg,
		})
	}
	return diags
}

func errorDiagnostic(f *File) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Message: f.Err.Error()}
	var le *grammar.LineError
	if errors.As(f.Err, &le) {
		d.Line = le.Line - 1
		d.EndColumn = len(le.Text)
		if le.Err != nil {
			d.Message = le.Err.Error()
		}
	}
	return d
}

// quotedSymbol extracts the symbol name from a verification message.
func quotedSymbol(msg string) (grammar.Symbol, bool) {
	start := strings.Index(msg, "‹")
	end := strings.LastIndex(msg, "›")
	if start < 0 || end < start {
		return "", false
	}
	return grammar.Symbol(msg[start+len("‹") : end]), true
}

// locate finds the first line of f that names sym as a rule symbol or a
// lexicon tag.
func locate(f *File, sym grammar.Symbol) (line, col int, found bool) {
	for i, text := range strings.Split(string(f.Content), "\n") {
		if grammar.IsSkippable(text) || !mentions(f.Kind, text, sym) {
			continue
		}
		if col := fieldIndex(text, string(sym)); col >= 0 {
			return i, col, true
		}
	}
	return 0, 0, false
}

func mentions(kind project.FileKind, line string, sym grammar.Symbol) bool {
	switch kind {
	case project.GrammarFile:
		parent, children, _, err := grammar.ParseRule(line)
		if err != nil {
			return false
		}
		return parent == sym || containsSymbol(children, sym)
	case project.LexiconFile:
		_, tags, err := lexicon.ParseEntry(line)
		return err == nil && containsSymbol(tags, sym)
	}
	return false
}

func containsSymbol(symbols []grammar.Symbol, sym grammar.Symbol) bool {
	for _, s := range symbols {
		if s == sym {
			return true
		}
	}
	return false
}

// fieldIndex returns the byte offset of the first occurrence of field in
// line that is not part of a longer symbol.
func fieldIndex(line, field string) int {
	for from := 0; from < len(line); {
		i := strings.Index(line[from:], field)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(field)
		if (i == 0 || isBoundary(line[i-1])) && (end == len(line) || isBoundary(line[end]) || strings.HasPrefix(line[end:], "->")) {
			return i
		}
		from = i + 1
	}
	return -1
}

func isBoundary(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '>' || ch == ':' || ch == '%'
}
