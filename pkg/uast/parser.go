package uast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	ErrLanguageNotAvailable = errors.New("tree-sitter language not available")
	ErrSyntax               = errors.New("syntax error")
	errNoRootNode           = errors.New("parser: no root node")
	errPoolType             = errors.New("parser: pool returned unexpected type")
)

// SyntaxError reports the first line tree-sitter could not parse.
type SyntaxError struct {
	Line int
}

// Error implements error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near line %d", e.Line)
}

// Unwrap lets callers match ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parser parses source code with pooled tree-sitter parsers, one pool per language.
type Parser struct {
	mu    sync.Mutex
	pools map[string]*sync.Pool
}

// NewParser creates a Parser. Grammars are initialized lazily on first use.
func NewParser() *Parser {
	return &Parser{pools: make(map[string]*sync.Pool)}
}

func (p *Parser) pool(language string) (*sync.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[language]; ok {
		return pool, nil
	}

	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = GetLanguage(language)
	}()

	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotAvailable, language)
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}
	p.pools[language] = pool

	return pool, nil
}

// Parse parses content as the given language. Trees with error or missing
// nodes are rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, language string, content []byte) (*Tree, error) {
	pool, err := p.pool(language)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", language, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	t := &Tree{tree: tree, source: content, language: language}

	if root.HasError() {
		line := t.firstErrorLine(root)
		tree.Close()

		return nil, &SyntaxError{Line: line}
	}

	return t, nil
}

// Tree is a parsed syntax tree together with its source.
type Tree struct {
	tree     *sitter.Tree
	source   []byte
	language string
}

// Root returns the root node.
func (t *Tree) Root() sitter.Node {
	return t.tree.RootNode()
}

// Language returns the language the tree was parsed as.
func (t *Tree) Language() string {
	return t.language
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Text returns the source text covered by n.
func (t *Tree) Text(n sitter.Node) string {
	if n.IsNull() {
		return ""
	}

	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(t.source)) || start > end {
		return ""
	}

	return string(t.source[start:end])
}

// Line returns the 1-based start line of n.
func Line(n sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (t *Tree) firstErrorLine(n sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return Line(n)
	}

	for i := range n.ChildCount() {
		child := n.Child(i)
		if child.IsNull() || !child.HasError() {
			continue
		}

		return t.firstErrorLine(child)
	}

	return Line(n)
}
