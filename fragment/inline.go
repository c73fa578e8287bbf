package fragment

import (
	"fmt"
	"strings"

	"github.com/rgonek/gutencard/schema"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type markStack struct {
	items []schema.Mark
}

func (s *markStack) push(mark schema.Mark) {
	s.items = append(s.items, mark.Clone())
}

func (s *markStack) pop() {
	if len(s.items) > 0 {
		s.items = s.items[:len(s.items)-1]
	}
}

func (s *markStack) has(mark schema.Mark) bool {
	for _, item := range s.items {
		if item.Equal(mark) {
			return true
		}
	}
	return false
}

func (s *markStack) current() []schema.Mark {
	if len(s.items) == 0 {
		return nil
	}
	marks := make([]schema.Mark, 0, len(s.items))
	for _, mark := range s.items {
		marks = append(marks, mark.Clone())
	}
	return marks
}

// markForElement maps an inline element to the mark it applies.
func markForElement(node *xhtml.Node) (schema.Mark, bool) {
	switch node.DataAtom {
	case atom.Strong, atom.B:
		return schema.Mark{Type: schema.MarkStrong}, true
	case atom.Em, atom.I:
		return schema.Mark{Type: schema.MarkEm}, true
	case atom.S, atom.Del, atom.Strike:
		return schema.Mark{Type: schema.MarkStrike}, true
	case atom.Code:
		return schema.Mark{Type: schema.MarkCode}, true
	case atom.U:
		return schema.Mark{Type: schema.MarkUnderline}, true
	case atom.Sub:
		return schema.Mark{Type: schema.MarkSub}, true
	case atom.Sup:
		return schema.Mark{Type: schema.MarkSup}, true
	case atom.A:
		href, ok := lookupHTMLAttr(node, "href")
		if !ok || strings.TrimSpace(href) == "" {
			return schema.Mark{}, false
		}
		mark := schema.Link(href)
		if title := getHTMLAttr(node, "title"); title != "" {
			mark.Attrs["title"] = title
		}
		return mark, true
	default:
		return schema.Mark{}, false
	}
}

// inlineRuns converts the children of node into a canonical run sequence.
func (s *state) inlineRuns(fieldID string, node *xhtml.Node) schema.Runs {
	var runs schema.Runs
	stack := &markStack{}

	var walk func(current *xhtml.Node)
	walk = func(current *xhtml.Node) {
		switch current.Type {
		case xhtml.TextNode:
			runs = schema.AppendRun(runs, schema.TextRun(current.Data, stack.current()...))
		case xhtml.ElementNode:
			if current.DataAtom == atom.Br {
				runs = schema.AppendRun(runs, schema.HardBreak())
				return
			}

			mark, ok := markForElement(current)
			pushed := false
			if ok && !stack.has(mark) {
				stack.push(mark)
				pushed = true
			}
			if !ok && current.DataAtom != atom.A && current.DataAtom != atom.Span {
				if s.config.UnknownInline == InlineSkip {
					s.addWarning(WarningUnknownInline, fieldID, fmt.Sprintf("dropped unsupported inline element <%s>", current.Data))
					return
				}
				s.addWarning(WarningUnknownInline, fieldID, fmt.Sprintf("unsupported inline element <%s> kept as text", current.Data))
			}

			for child := current.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
			if pushed {
				stack.pop()
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}

	return runs
}

func elementForMark(mark schema.Mark) *xhtml.Node {
	var node *xhtml.Node
	switch mark.Type {
	case schema.MarkStrong:
		node = newElement("strong")
	case schema.MarkEm:
		node = newElement("em")
	case schema.MarkStrike:
		node = newElement("s")
	case schema.MarkCode:
		node = newElement("code")
	case schema.MarkUnderline:
		node = newElement("u")
	case schema.MarkSub:
		node = newElement("sub")
	case schema.MarkSup:
		node = newElement("sup")
	case schema.MarkLink:
		href := mark.Attrs["href"]
		if href == "" {
			return nil
		}
		node = newElement("a")
		node.Attr = append(node.Attr, xhtml.Attribute{Key: "href", Val: href})
		if title := mark.Attrs["title"]; title != "" {
			node.Attr = append(node.Attr, xhtml.Attribute{Key: "title", Val: title})
		}
	default:
		return nil
	}
	return node
}

type openMark struct {
	mark schema.Mark
	node *xhtml.Node
}

// appendRuns renders runs as inline children of parent. Marks shared by
// adjacent runs stay open so a run sequence maps to the smallest tree.
func appendRuns(parent *xhtml.Node, runs schema.Runs) {
	var open []openMark

	top := func() *xhtml.Node {
		for i := len(open) - 1; i >= 0; i-- {
			if open[i].node != nil {
				return open[i].node
			}
		}
		return parent
	}

	for _, run := range runs {
		var marks []schema.Mark
		if run.Type != schema.RunHardBreak {
			marks = run.Marks
		}

		common := 0
		for common < len(open) && common < len(marks) && open[common].mark.Equal(marks[common]) {
			common++
		}
		open = open[:common]

		for _, mark := range marks[common:] {
			node := elementForMark(mark)
			if node != nil {
				top().AppendChild(node)
			}
			open = append(open, openMark{mark: mark, node: node})
		}

		if run.Type == schema.RunHardBreak {
			top().AppendChild(newElement("br"))
			continue
		}
		if run.Text == "" {
			continue
		}
		top().AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: run.Text})
	}
}
