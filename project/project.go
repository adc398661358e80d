// Package project locates the grammar, lexicon and treebank files that
// make up a grammar directory.
package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/chartparse/grammar"
	"github.com/dhamidi/chartparse/lexicon"
	"github.com/dhamidi/chartparse/tree"
)

// EnvDir names the environment variable holding the default grammar directory.
const EnvDir = "CHARTPARSE_DIR"

// FileKind classifies a file by its extension.
type FileKind int

const (
	Unknown FileKind = iota
	GrammarFile
	LexiconFile
	TreebankFile
)

func (k FileKind) String() string {
	switch k {
	case GrammarFile:
		return "grammar"
	case LexiconFile:
		return "lexicon"
	case TreebankFile:
		return "treebank"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of path: .cfg grammars, .lex lexicons and
// .mrg treebanks.
func KindOf(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg":
		return GrammarFile
	case ".lex":
		return LexiconFile
	case ".mrg":
		return TreebankFile
	default:
		return Unknown
	}
}

// ErrNoGrammar is returned when neither grammar files nor a treebank are known.
var ErrNoGrammar = errors.New("no grammar or treebank files")

// ErrNoLexicon is returned when neither lexicon files nor a treebank are known.
var ErrNoLexicon = errors.New("no lexicon or treebank files")

// Project is a set of grammar, lexicon and treebank files. Rules of all
// grammar files are merged, as are the entries of all lexicon files.
// Treebanks are used only for what the explicit files do not provide.
type Project struct {
	RootDir   string
	Grammars  []string
	Lexicons  []string
	Treebanks []string
}

// Load scans the directory named by CHARTPARSE_DIR, or the current
// directory when it is unset.
func Load() (*Project, error) {
	dir := os.Getenv(EnvDir)
	if dir == "" {
		dir = "."
	}
	return LoadFrom(dir)
}

// LoadFrom scans rootDir recursively for grammar files. Hidden
// directories are skipped.
func LoadFrom(rootDir string) (*Project, error) {
	p := &Project{RootDir: rootDir}
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		p.add(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootDir, err)
	}
	if len(p.Files()) == 0 {
		return nil, fmt.Errorf("could not detect grammar: no *.cfg, *.lex or *.mrg files in %s", rootDir)
	}
	return p, nil
}

func (p *Project) add(path string) {
	switch KindOf(path) {
	case GrammarFile:
		p.Grammars = append(p.Grammars, path)
	case LexiconFile:
		p.Lexicons = append(p.Lexicons, path)
	case TreebankFile:
		p.Treebanks = append(p.Treebanks, path)
	}
}

// Files returns every file of the project: grammars, lexicons, treebanks.
func (p *Project) Files() []string {
	var files []string
	files = append(files, p.Grammars...)
	files = append(files, p.Lexicons...)
	files = append(files, p.Treebanks...)
	return files
}

// Grammar reads and merges the grammar files, or estimates a grammar
// from the treebanks when there are none.
func (p *Project) Grammar() (*grammar.Grammar, error) {
	if len(p.Grammars) == 0 {
		if len(p.Treebanks) == 0 {
			return nil, ErrNoGrammar
		}
		trees, err := p.Trees()
		if err != nil {
			return nil, err
		}
		return grammar.FromTrees(trees)
	}

	b := grammar.NewBuilder()
	for _, name := range p.Grammars {
		if err := readFile(name, b.Parse); err != nil {
			return nil, err
		}
	}
	return b.Grammar(), nil
}

// Lexicon reads and merges the lexicon files, or collects the
// preterminals of the treebanks when there are none.
func (p *Project) Lexicon() (*lexicon.Lexicon, error) {
	if len(p.Lexicons) == 0 {
		if len(p.Treebanks) == 0 {
			return nil, ErrNoLexicon
		}
		trees, err := p.Trees()
		if err != nil {
			return nil, err
		}
		return lexicon.FromTrees(trees), nil
	}

	l := lexicon.New()
	for _, name := range p.Lexicons {
		if err := readFile(name, l.Parse); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Trees reads every tree of every treebank.
func (p *Project) Trees() ([]*tree.Tree, error) {
	var all []*tree.Tree
	for _, name := range p.Treebanks {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open treebank: %w", err)
		}
		trees, err := tree.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		all = append(all, trees...)
	}
	return all, nil
}

func readFile(name string, parse func(string, io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return parse(name, f)
}
