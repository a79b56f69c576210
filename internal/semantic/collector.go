package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gasguard.semantic")

// Node kinds whose named children are all visited.
var traversedKinds = map[string]bool{
	"arguments":                   true,
	"binary_expression":           true,
	"unary_expression":            true,
	"reference_expression":        true,
	"assignment_expression":       true,
	"compound_assignment_expr":    true,
	"try_expression":              true,
	"parenthesized_expression":    true,
	"tuple_expression":            true,
	"array_expression":            true,
	"index_expression":            true,
	"range_expression":            true,
	"block":                       true,
	"expression_statement":        true,
	"let_declaration":             true,
	"if_expression":               true,
	"let_condition":               true,
	"let_chain":                   true,
	"else_clause":                 true,
	"match_expression":            true,
	"match_block":                 true,
	"match_arm":                   true,
	"match_pattern":               true,
	"while_expression":            true,
	"loop_expression":             true,
	"for_expression":              true,
	"return_expression":           true,
	"break_expression":            true,
	"field_initializer_list":      true,
	"shorthand_field_initializer": true,
	"base_field_initializer":      true,
	"tuple_pattern":               true,
	"struct_pattern":              true,
	"tuple_struct_pattern":        true,
	"reference_pattern":           true,
	"mut_pattern":                 true,
	"ref_pattern":                 true,
	"slice_pattern":               true,
	"or_pattern":                  true,
	"declaration_list":            true,
}

type usageCollector struct {
	src []byte
	set UsageSet
}

// AnalyzeUsage builds one usage set per implementation block found under
// root, keyed by the block's target type name. Blocks for the same target,
// including trait implementations, are merged.
func AnalyzeUsage(root *sitter.Node, src []byte) Usage {
	usage := Usage{}
	if root == nil {
		return usage
	}
	forEachImpl(root, func(impl *sitter.Node) {
		target := implTarget(impl, src)
		if target == "" {
			log.Debugf("implementation block at line %d has no nameable target", impl.StartPoint().Row+1)
			return
		}
		usage.merge(target, CollectUsage(impl, src))
	})
	return usage
}

// CollectUsage walks node and returns every identifier it references.
// Function and implementation items contribute only their bodies, so
// declared names and signatures are not counted.
func CollectUsage(node *sitter.Node, src []byte) UsageSet {
	c := &usageCollector{src: src, set: UsageSet{}}
	c.visit(node)
	return c.set
}

func (c *usageCollector) visit(n *sitter.Node) {
	if n == nil {
		return
	}

	switch kind := n.Type(); kind {
	case "identifier", "field_identifier", "shorthand_field_identifier":
		c.set.Add(n.Content(c.src))
	case "field_expression":
		c.visitFieldExpression(n)
	case "call_expression":
		c.visitCallee(n.ChildByFieldName("function"))
		c.visit(n.ChildByFieldName("arguments"))
	case "scoped_identifier":
		c.visit(n.ChildByFieldName("name"))
	case "generic_function":
		c.visit(n.ChildByFieldName("function"))
	case "type_cast_expression":
		c.visit(n.ChildByFieldName("value"))
	case "struct_expression":
		c.visit(n.ChildByFieldName("body"))
	case "field_initializer":
		c.visit(n.ChildByFieldName("value"))
	case "field_pattern":
		if pattern := n.ChildByFieldName("pattern"); pattern != nil {
			c.visit(pattern)
		} else {
			c.visit(n.ChildByFieldName("name"))
		}
	case "function_item", "impl_item", "closure_expression":
		c.visit(n.ChildByFieldName("body"))
	case "macro_invocation":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child.Type() == "token_tree" {
				c.visitTokens(child)
			}
		}
	case "token_tree":
		c.visitTokens(n)
	default:
		if traversedKinds[kind] {
			c.visitChildren(n)
		}
	}
}

func (c *usageCollector) visitChildren(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.visit(n.NamedChild(i))
	}
}

// visitFieldExpression records the accessed member and, for receiver
// accesses, the qualified "self.member" text.
func (c *usageCollector) visitFieldExpression(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	c.visit(value)

	field := n.ChildByFieldName("field")
	if field == nil || field.Type() != "field_identifier" {
		return
	}
	member := field.Content(c.src)
	c.set.Add(member)

	if value == nil {
		return
	}
	if receiver := value.Content(c.src); receiver == "self" || receiver == "self?" {
		c.set.Add(receiver + "." + member)
	}
}

// visitCallee skips method names: calling self.get() is not a use of a
// field named get.
func (c *usageCollector) visitCallee(fn *sitter.Node) {
	if fn != nil && fn.Type() == "field_expression" {
		c.visit(fn.ChildByFieldName("value"))
		return
	}
	c.visit(fn)
}

// visitTokens recovers identifiers from unparsed macro arguments, including
// "self . name" sequences.
func (c *usageCollector) visitTokens(tree *sitter.Node) {
	count := int(tree.ChildCount())
	for i := 0; i < count; i++ {
		child := tree.Child(i)
		switch {
		case child.Type() == "token_tree":
			c.visitTokens(child)
		case child.Content(c.src) == "self":
			if i+2 < count && tree.Child(i+1).Content(c.src) == "." && tree.Child(i+2).Type() == "identifier" {
				c.set.Add("self." + tree.Child(i+2).Content(c.src))
			}
		case child.Type() == "identifier":
			c.set.Add(child.Content(c.src))
		}
	}
}

func forEachImpl(n *sitter.Node, fn func(*sitter.Node)) {
	if n.Type() == "impl_item" {
		fn(n)
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		forEachImpl(n.NamedChild(i), fn)
	}
}

// implTarget returns the bare name of the implemented type: generic
// arguments and path qualifiers are dropped.
func implTarget(impl *sitter.Node, src []byte) string {
	target := impl.ChildByFieldName("type")
	if target == nil {
		return ""
	}
	if target.Type() == "generic_type" {
		if inner := target.ChildByFieldName("type"); inner != nil {
			target = inner
		}
	}
	name := target.Content(src)
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	return strings.TrimSpace(name)
}
