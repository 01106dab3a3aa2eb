package complexity

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

func goBlocks(t *uast.Tree) []Block {
	root := t.Root()

	var blocks []Block

	for i := range root.NamedChildCount() {
		decl := root.NamedChild(i)

		switch decl.Type() {
		case "function_declaration":
			blocks = append(blocks, Block{
				Name:       nameOr(t.Text(decl.ChildByFieldName("name"))),
				Kind:       KindFunction,
				Line:       uast.Line(decl),
				Complexity: 1 + goDecisions(t, decl.ChildByFieldName("body")),
			})
		case "method_declaration":
			name := nameOr(t.Text(decl.ChildByFieldName("name")))
			if recv := receiverType(t, decl.ChildByFieldName("receiver")); recv != "" {
				name = recv + "." + name
			}

			blocks = append(blocks, Block{
				Name:       name,
				Kind:       KindMethod,
				Line:       uast.Line(decl),
				Complexity: 1 + goDecisions(t, decl.ChildByFieldName("body")),
			})
		}
	}

	return blocks
}

func goDecisions(t *uast.Tree, n sitter.Node) int {
	if n.IsNull() {
		return 0
	}

	total := 0

	switch n.Type() {
	case "if_statement", "for_statement", "expression_case", "type_case", "communication_case":
		total++
	case "binary_expression":
		switch t.Text(n.ChildByFieldName("operator")) {
		case "&&", "||":
			total++
		}
	}

	for i := range n.NamedChildCount() {
		total += goDecisions(t, n.NamedChild(i))
	}

	return total
}

// receiverType returns the bare receiver type name: "(s *Server[T])" -> "Server".
func receiverType(t *uast.Tree, params sitter.Node) string {
	if params.IsNull() || params.NamedChildCount() == 0 {
		return ""
	}

	typ := t.Text(params.NamedChild(0).ChildByFieldName("type"))
	typ = strings.TrimLeft(typ, "*")

	if idx := strings.IndexByte(typ, '['); idx >= 0 {
		typ = typ[:idx]
	}

	return strings.TrimSpace(typ)
}

func nameOr(name string) string {
	if name == "" {
		return anonymousName
	}

	return name
}
