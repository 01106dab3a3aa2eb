package complexity

import (
	"bytes"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

// The Python grammar also accepts Python 2 and a few forms the Python 3
// compiler rejects. pythonSyntaxError reports the first of them.
func pythonSyntaxError(t *uast.Tree) error {
	c := &py3Checker{tree: t}
	c.visit(t.Root())
	c.checkBackticks()

	if c.line == 0 {
		return nil
	}

	return &uast.SyntaxError{Line: c.line}
}

type byteRange struct{ start, end uint }

type py3Checker struct {
	tree *uast.Tree
	line int

	// literals are string and comment spans, where backticks are legal.
	literals []byteRange
}

func (c *py3Checker) report(line int) {
	if c.line == 0 || line < c.line {
		c.line = line
	}
}

func (c *py3Checker) visit(n sitter.Node) {
	switch n.Type() {
	case "string", "comment":
		c.literals = append(c.literals, byteRange{n.StartByte(), n.EndByte()})

		return
	case "print_statement", "exec_statement":
		c.report(uast.Line(n))
	case "except_clause", "except_group_clause":
		// "except E, e:" binds the exception with a comma.
		if hasChildToken(n, ",") {
			c.report(uast.Line(n))
		}
	case "comparison_operator":
		if hasChildToken(n, "<>") {
			c.report(uast.Line(n))
		}
	case "parameters", "lambda_parameters":
		c.checkParameters(n)
	}

	for i := range n.ChildCount() {
		c.visit(n.Child(i))
	}
}

// checkParameters rejects tuple parameters and a positional parameter
// without a default following one with a default.
func (c *py3Checker) checkParameters(params sitter.Node) {
	seenDefault := false

	for i := range params.NamedChildCount() {
		p := params.NamedChild(i)

		switch p.Type() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "identifier":
			if seenDefault {
				c.report(uast.Line(p))
			}
		case "typed_parameter":
			if isSplat(p) {
				return
			}

			if seenDefault {
				c.report(uast.Line(p))
			}
		case "tuple_pattern":
			c.report(uast.Line(p))
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return
		}
	}
}

// checkBackticks flags "`" outside strings and comments.
func (c *py3Checker) checkBackticks() {
	src := c.tree.Source()
	line := 1
	offset := 0

	for {
		idx := bytes.IndexByte(src[offset:], '`')
		if idx < 0 {
			return
		}

		pos := offset + idx
		line += bytes.Count(src[offset:pos], []byte{'\n'})
		offset = pos + 1

		if !c.inLiteral(uint(pos)) {
			c.report(line)

			return
		}
	}
}

func (c *py3Checker) inLiteral(pos uint) bool {
	for _, r := range c.literals {
		if pos >= r.start && pos < r.end {
			return true
		}
	}

	return false
}

func hasChildToken(n sitter.Node, token string) bool {
	for i := range n.ChildCount() {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}

	return false
}

func isSplat(p sitter.Node) bool {
	for i := range p.NamedChildCount() {
		switch p.NamedChild(i).Type() {
		case "list_splat_pattern", "dictionary_splat_pattern":
			return true
		}
	}

	return false
}
