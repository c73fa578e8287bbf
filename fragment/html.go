package fragment

import (
	"slices"
	"strings"

	"github.com/rgonek/gutencard/schema"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func bodyContext() *xhtml.Node {
	return &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
}

// parseMarkup parses markup as the children of a synthetic <body> element.
func parseMarkup(markup string) (*xhtml.Node, error) {
	container := bodyContext()
	nodes, err := xhtml.ParseFragment(strings.NewReader(markup), bodyContext())
	if err != nil {
		return container, err
	}
	for _, node := range nodes {
		container.AppendChild(node)
	}
	return container, nil
}

func matchesStep(node *xhtml.Node, step schema.Step) bool {
	if node.Type != xhtml.ElementNode {
		return false
	}
	if step.Tag != "" && !strings.EqualFold(node.Data, step.Tag) {
		return false
	}
	if len(step.Classes) == 0 {
		return true
	}
	classes := strings.Fields(getHTMLAttr(node, "class"))
	for _, class := range step.Classes {
		if !slices.Contains(classes, class) {
			return false
		}
	}
	return true
}

// matchesPath reports whether node matches the last step and its ancestors
// below scope match the preceding steps, in order.
func matchesPath(node *xhtml.Node, steps []schema.Step, scope *xhtml.Node) bool {
	if len(steps) == 0 || !matchesStep(node, steps[len(steps)-1]) {
		return false
	}
	next := len(steps) - 2
	for ancestor := node.Parent; ancestor != nil && ancestor != scope && next >= 0; ancestor = ancestor.Parent {
		if matchesStep(ancestor, steps[next]) {
			next--
		}
	}
	return next < 0
}

// findPath returns the first descendant of scope, in document order, that
// matches steps. No steps designates scope itself.
func findPath(scope *xhtml.Node, steps []schema.Step) *xhtml.Node {
	if len(steps) == 0 {
		return scope
	}
	return findFirst(scope, func(node *xhtml.Node) bool {
		return matchesPath(node, steps, scope)
	})
}

func findFirst(parent *xhtml.Node, match func(*xhtml.Node) bool) *xhtml.Node {
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func getHTMLAttr(node *xhtml.Node, key string) string {
	value, _ := lookupHTMLAttr(node, key)
	return value
}

func lookupHTMLAttr(node *xhtml.Node, key string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

func extractHTMLNodeText(node *xhtml.Node) string {
	var builder strings.Builder

	var walk func(current *xhtml.Node)
	walk = func(current *xhtml.Node) {
		switch current.Type {
		case xhtml.TextNode:
			builder.WriteString(current.Data)
		case xhtml.ElementNode:
			if current.DataAtom == atom.Br {
				builder.WriteString("\n")
				return
			}
			for child := current.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
		default:
			for child := current.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}

	return builder.String()
}

func newElement(tag string) *xhtml.Node {
	return &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}
