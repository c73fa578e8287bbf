package fragment

import (
	"fmt"
	"strings"

	"github.com/rgonek/gutencard/schema"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer turns records into fragments.
type Renderer struct {
	config Config
	log    *zap.Logger
}

// NewRenderer creates a renderer. A zero Config renders with the default
// options.
func NewRenderer(config Config) (*Renderer, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid renderer config: %w", err)
	}
	return &Renderer{config: cfg, log: cfg.Logger.Named("renderer")}, nil
}

// Render emits the fragment for rec. Output depends only on rec and s.
// Fields missing from rec render their schema default.
func (r *Renderer) Render(rec schema.Record, s *schema.Schema) (string, error) {
	root, err := buildTree(rec.Complete(s, s.Defaults()), s)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := xhtml.Render(&sb, root.node(true)); err != nil {
		return "", fmt.Errorf("failed to render fragment: %w", err)
	}

	r.log.Debug("rendered fragment", zap.String("root", s.Root()), zap.Int("bytes", sb.Len()))
	return sb.String(), nil
}

// RenderBlock emits rec as a complete block: the fragment wrapped in the
// block comment that carries the companion metadata.
func (r *Renderer) RenderBlock(rec schema.Record, v *schema.Variant) (string, error) {
	completed := rec.Complete(v.Schema(), v.Defaults())
	html, err := r.Render(completed, v.Schema())
	if err != nil {
		return "", err
	}
	return EncodeBlock(Block{
		Name:  v.Name(),
		Attrs: Attributes(completed, v.Schema()),
		HTML:  html,
	}, r.config.BlockNamespace)
}

// Render emits the fragment for rec with the default renderer options.
func Render(rec schema.Record, s *schema.Schema) (string, error) {
	r, err := NewRenderer(Config{})
	if err != nil {
		return "", err
	}
	return r.Render(rec, s)
}

// element is one node of the tree implied by a schema's field locations.
type element struct {
	step     schema.Step
	children []*element
	byKey    map[string]*element

	attrs  []xhtml.Attribute
	styles []string

	hasText bool
	text    string
	hasRuns bool
	runs    schema.Runs

	// present is set by any field that makes the element worth emitting.
	present bool
	hasSrc  bool
	hasAlt  bool
}

func newTreeElement(step schema.Step) *element {
	return &element{step: step, byKey: make(map[string]*element)}
}

func (e *element) child(step schema.Step) *element {
	key := step.Key()
	if existing, ok := e.byKey[key]; ok {
		return existing
	}
	created := newTreeElement(step)
	e.byKey[key] = created
	e.children = append(e.children, created)
	return created
}

func (e *element) isImage() bool {
	return e.step.ElementTag() == "img"
}

func buildTree(rec schema.Record, s *schema.Schema) (*element, error) {
	rootStep, err := s.RootStep()
	if err != nil {
		return nil, fmt.Errorf("invalid root selector %q: %w", s.Root(), err)
	}
	root := newTreeElement(rootStep)

	for _, field := range s.Fields() {
		if field.Kind == schema.KindNumber {
			continue
		}

		steps, err := field.Location.Steps()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.ID, err)
		}
		el := root
		for _, step := range steps {
			el = el.child(step)
		}

		value := rec[field.ID]
		switch field.Kind {
		case schema.KindPlainText:
			text := strings.TrimSpace(rec.Text(field.ID))
			if field.OmitEmpty && text == "" {
				continue
			}
			el.hasText, el.text = true, text
			el.present = true
		case schema.KindRichRun:
			if field.OmitEmpty && schema.IsEmpty(value) {
				continue
			}
			el.hasRuns, el.runs = true, schema.NormalizeRuns(rec.Runs(field.ID))
			el.present = true
		case schema.KindAttribute:
			text := rec.Text(field.ID)
			if text == "" {
				continue
			}
			el.attrs = append(el.attrs, xhtml.Attribute{Key: field.Location.Attribute, Val: text})
			switch strings.ToLower(field.Location.Attribute) {
			case "src":
				el.hasSrc = true
			case "alt":
				el.hasAlt = true
			}
			if !el.isImage() {
				el.present = true
			}
		case schema.KindStyleObject:
			el.styles = append(el.styles, styleDeclarations(rec.Style(field.ID))...)
		case schema.KindEnum:
			if value := rec.Enum(field.ID); field.StyleProperty != "" && value != "" {
				el.styles = append(el.styles, field.StyleProperty+":"+value)
			}
		}
	}

	return root, nil
}

// node converts the element to an html node, or nil when it is pruned.
// Images need a source; other elements need content of their own or a
// child that survives.
func (e *element) node(isRoot bool) *xhtml.Node {
	if e.isImage() && !e.hasSrc && !isRoot {
		return nil
	}

	var children []*xhtml.Node
	for _, child := range e.children {
		if n := child.node(false); n != nil {
			children = append(children, n)
		}
	}
	if !isRoot && !e.present && !e.isImage() && len(children) == 0 {
		return nil
	}

	n := newElement(e.step.ElementTag())
	if class := e.step.ClassAttr(); class != "" {
		n.Attr = append(n.Attr, xhtml.Attribute{Key: "class", Val: class})
	}
	n.Attr = append(n.Attr, e.attrs...)
	if n.DataAtom == atom.Img && !e.hasAlt {
		n.Attr = append(n.Attr,
			xhtml.Attribute{Key: "alt", Val: ""},
			xhtml.Attribute{Key: "aria-hidden", Val: "true"})
	}
	if len(e.styles) > 0 {
		n.Attr = append(n.Attr, xhtml.Attribute{Key: "style", Val: strings.Join(e.styles, ";")})
	}

	if n.DataAtom == atom.Img {
		return n
	}
	switch {
	case e.hasText && e.text != "":
		n.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: e.text})
	case e.hasRuns:
		appendRuns(n, e.runs)
	}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}
