package complexity

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

const anonymousName = "anonymous"

// pythonVisitor collects Python functions, classes and methods.
type pythonVisitor struct {
	tree   *uast.Tree
	blocks []Block
}

func pythonBlocks(t *uast.Tree) []Block {
	v := &pythonVisitor{tree: t}
	v.walkScope(t.Root(), "")

	return v.blocks
}

// scopeStats accumulates what a module or class body contains outside nested
// function bodies.
type scopeStats struct {
	decisions   int
	methods     int
	methodTotal int
}

func (s *scopeStats) add(o scopeStats) {
	s.decisions += o.decisions
	s.methods += o.methods
	s.methodTotal += o.methodTotal
}

// walkScope visits the statements of a module or class body. Function and
// class definitions become blocks; decision points elsewhere are counted.
func (v *pythonVisitor) walkScope(n sitter.Node, owner string) scopeStats {
	var stats scopeStats

	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		def := definitionOf(child)

		switch def.Type() {
		case "function_definition":
			stats.methods++
			stats.methodTotal += v.addFunction(def, owner)
		case "class_definition":
			v.addClass(def, owner)
		default:
			if !containsDefinition(child) {
				stats.decisions += pythonDecisions(child)

				continue
			}

			stats.decisions += pythonWeight(child)
			stats.add(v.walkScope(child, owner))
		}
	}

	return stats
}

func (v *pythonVisitor) addFunction(def sitter.Node, owner string) int {
	name := v.name(def)
	kind := KindFunction

	if owner != "" {
		name = owner + "." + name
		kind = KindMethod
	}

	score := 1 + pythonDecisions(def.ChildByFieldName("body"))

	v.blocks = append(v.blocks, Block{Name: name, Kind: kind, Line: uast.Line(def), Complexity: score})

	return score
}

// addClass scores a class: decisions in the class body and its methods
// add up to a total that is averaged over the methods.
func (v *pythonVisitor) addClass(def sitter.Node, owner string) {
	name := v.name(def)
	if owner != "" {
		name = owner + "." + name
	}

	idx := len(v.blocks)
	v.blocks = append(v.blocks, Block{Name: name, Kind: KindClass, Line: uast.Line(def)})

	stats := v.walkScope(def.ChildByFieldName("body"), name)

	total := 1 + stats.decisions + stats.methodTotal
	score := total

	if stats.methods > 0 {
		score = total / stats.methods
		if stats.methods > 1 {
			score++
		}
	}

	v.blocks[idx].Complexity = score
}

func (v *pythonVisitor) name(def sitter.Node) string {
	name := v.tree.Text(def.ChildByFieldName("name"))
	if name == "" {
		return anonymousName
	}

	return name
}

// definitionOf unwraps decorated definitions.
func definitionOf(n sitter.Node) sitter.Node {
	if n.Type() == "decorated_definition" {
		return n.ChildByFieldName("definition")
	}

	return n
}

func containsDefinition(n sitter.Node) bool {
	switch n.Type() {
	case "function_definition", "class_definition":
		return true
	}

	for i := range n.NamedChildCount() {
		if containsDefinition(n.NamedChild(i)) {
			return true
		}
	}

	return false
}

// pythonDecisions counts decision points in n and its descendants. Lambdas
// count; nested function and class bodies do not.
func pythonDecisions(n sitter.Node) int {
	if n.IsNull() {
		return 0
	}

	total := pythonWeight(n)

	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)

		switch child.Type() {
		case "function_definition", "class_definition":
			continue
		}

		total += pythonDecisions(child)
	}

	return total
}

// pythonWeight is the number of decision points n itself contributes.
func pythonWeight(n sitter.Node) int {
	switch n.Type() {
	case "if_statement", "elif_clause", "conditional_expression",
		"boolean_operator", "for_in_clause", "if_clause",
		"assert_statement", "case_clause",
		"except_clause", "except_group_clause":
		return 1
	case "for_statement", "while_statement":
		return 1 + hasElse(n)
	case "try_statement":
		return hasElse(n)
	default:
		return 0
	}
}

func hasElse(n sitter.Node) int {
	for i := range n.NamedChildCount() {
		if n.NamedChild(i).Type() == "else_clause" {
			return 1
		}
	}

	return 0
}
