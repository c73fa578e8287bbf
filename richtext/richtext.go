// Package richtext converts rich text runs to and from Markdown so rich_run
// fields can be edited as text.
package richtext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rgonek/gutencard/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// Converter converts between Markdown and runs.
type Converter struct {
	config Config
	parser goldmark.Markdown
	log    *zap.Logger
}

type state struct {
	config   Config
	source   []byte
	runs     schema.Runs
	blocks   int
	warnings []Warning
	log      *zap.Logger
}

var inlineTagPattern = regexp.MustCompile(`^<(/?)([a-zA-Z][a-zA-Z0-9]*)\b[^>]*?/?>$`)

// New creates a converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Converter{
		config: cfg,
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
		),
		log: cfg.Logger.Named("richtext"),
	}, nil
}

// FromMarkdown reads runs from Markdown. Paragraphs, headings and list items
// are flattened into one run sequence separated by hard breaks.
func (c *Converter) FromMarkdown(markdown string) Result {
	s := &state{
		config: c.config,
		source: []byte(markdown),
		log:    c.log,
	}

	root := c.parser.Parser().Parse(text.NewReader(s.source))
	s.convertBlocks(root)

	return Result{
		Runs:     schema.NormalizeRuns(s.runs),
		Warnings: s.warnings,
	}
}

func (s *state) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
	s.log.Debug("Markdown conversion warning",
		zap.String("type", string(warnType)),
		zap.String("node", nodeType),
		zap.String("message", message))
}

func (s *state) convertBlocks(parent ast.Node) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			s.startBlock()
			s.convertInlineChildren(typed, newMarkStack())
		case *ast.Heading:
			s.addWarning(WarningFlattenedBlock, typed.Kind().String(), fmt.Sprintf("level %d heading kept as text", typed.Level))
			s.startBlock()
			s.convertInlineChildren(typed, newMarkStack())
		case *ast.List, *ast.Blockquote:
			s.addWarning(WarningFlattenedBlock, typed.Kind().String(), "block structure flattened to paragraphs")
			s.convertBlocks(typed)
		case *ast.ListItem:
			s.convertBlocks(typed)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			s.startBlock()
			lines := child.Lines()
			var sb strings.Builder
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(s.source))
			}
			s.appendText(strings.TrimSuffix(sb.String(), "\n"), []schema.Mark{{Type: schema.MarkCode}})
			s.addWarning(WarningFlattenedBlock, child.Kind().String(), "code block kept as code text")
		default:
			s.addWarning(WarningDroppedFeature, child.Kind().String(), "unsupported block dropped")
		}
	}
}

func (s *state) startBlock() {
	if s.blocks > 0 {
		for range s.config.BlockBreaks {
			s.runs = append(s.runs, schema.HardBreak())
		}
	}
	s.blocks++
}

func (s *state) appendText(value string, marks []schema.Mark) {
	s.runs = schema.AppendRun(s.runs, schema.TextRun(value, marks...))
}

func (s *state) convertInlineChildren(parent ast.Node, stack *markStack) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		s.convertInlineNode(child, stack)
	}
}

func (s *state) convertInlineNode(node ast.Node, stack *markStack) {
	switch typed := node.(type) {
	case *ast.Text:
		s.appendText(s.textValue(typed.Segment.Value(s.source)), stack.current())
		if typed.HardLineBreak() {
			s.runs = append(s.runs, schema.HardBreak())
		} else if typed.SoftLineBreak() {
			s.appendText(" ", stack.current())
		}

	case *ast.String:
		s.appendText(string(typed.Value), stack.current())

	case *ast.Emphasis:
		markType := schema.MarkEm
		if typed.Level >= 2 {
			markType = schema.MarkStrong
		}
		stack.push(schema.Mark{Type: markType})
		s.convertInlineChildren(typed, stack)
		stack.popByType(markType)

	case *extast.Strikethrough:
		stack.push(schema.Mark{Type: schema.MarkStrike})
		s.convertInlineChildren(typed, stack)
		stack.popByType(schema.MarkStrike)

	case *ast.CodeSpan:
		stack.push(schema.Mark{Type: schema.MarkCode})
		for child := typed.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				s.appendText(string(t.Segment.Value(s.source)), stack.current())
				if t.SoftLineBreak() {
					s.appendText(" ", stack.current())
				}
			}
		}
		stack.popByType(schema.MarkCode)

	case *ast.Link:
		href := strings.TrimSpace(string(typed.Destination))
		if href == "" {
			s.convertInlineChildren(typed, stack)
			return
		}

		mark := schema.Link(href)
		if title := strings.TrimSpace(string(typed.Title)); title != "" {
			mark.Attrs["title"] = title
		}

		stack.push(mark)
		s.convertInlineChildren(typed, stack)
		stack.popByType(schema.MarkLink)

	case *ast.AutoLink:
		stack.push(schema.Link(string(typed.URL(s.source))))
		s.appendText(string(typed.Label(s.source)), stack.current())
		stack.popByType(schema.MarkLink)

	case *ast.Image:
		s.addWarning(WarningDroppedFeature, typed.Kind().String(), "inline image kept as its alt text")
		s.convertInlineChildren(typed, stack)

	case *ast.RawHTML:
		s.convertRawHTML(typed, stack)

	default:
		if node.HasChildren() {
			s.convertInlineChildren(node, stack)
			return
		}
		s.addWarning(WarningDroppedFeature, node.Kind().String(), "unsupported inline node dropped")
	}
}

func (s *state) convertRawHTML(node *ast.RawHTML, stack *markStack) {
	var sb strings.Builder
	for i := 0; i < node.Segments.Len(); i++ {
		segment := node.Segments.At(i)
		sb.Write(segment.Value(s.source))
	}
	raw := strings.TrimSpace(sb.String())

	match := inlineTagPattern.FindStringSubmatch(raw)
	if match == nil {
		s.addWarning(WarningUnknownHTML, "RawHTML", fmt.Sprintf("dropped inline html %q", raw))
		return
	}
	closing := match[1] == "/"
	tag := strings.ToLower(match[2])

	if tag == "br" {
		s.runs = append(s.runs, schema.HardBreak())
		return
	}

	markType, ok := htmlMarkTypes[tag]
	if !ok {
		s.addWarning(WarningUnknownHTML, "RawHTML", fmt.Sprintf("dropped inline html %q", raw))
		return
	}
	if closing {
		stack.popByType(markType)
		return
	}
	stack.push(schema.Mark{Type: markType})
}

var htmlMarkTypes = map[string]string{
	"b":      schema.MarkStrong,
	"strong": schema.MarkStrong,
	"i":      schema.MarkEm,
	"em":     schema.MarkEm,
	"s":      schema.MarkStrike,
	"del":    schema.MarkStrike,
	"code":   schema.MarkCode,
	"u":      schema.MarkUnderline,
	"ins":    schema.MarkUnderline,
	"sub":    schema.MarkSub,
	"sup":    schema.MarkSup,
}

// textValue resolves backslash escapes and character references the way a
// Markdown renderer would.
func (s *state) textValue(raw []byte) string {
	value := util.UnescapePunctuations(raw)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	return string(value)
}
