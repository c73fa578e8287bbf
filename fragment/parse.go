package fragment

import (
	"fmt"
	"strings"

	"github.com/rgonek/gutencard/schema"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
)

// Parser reads records back out of rendered fragments.
type Parser struct {
	config Config
	log    *zap.Logger
}

type state struct {
	config   Config
	log      *zap.Logger
	warnings []Warning
}

// NewParser creates a parser. A zero Config parses with the default options.
func NewParser(config Config) (*Parser, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser config: %w", err)
	}
	return &Parser{config: cfg, log: cfg.Logger.Named("parser")}, nil
}

// Parse reads a record for s from markup and the companion metadata store.
// Values that are missing or cannot be read fall back to the schema
// defaults. Parse never fails; what it could not read is listed in the
// result warnings.
func (p *Parser) Parse(markup string, meta Metadata, s *schema.Schema) Result {
	st := p.newState()
	return st.parse(markup, meta, s, s.Defaults())
}

// ParseVariant is like Parse but falls back to the registered default record
// of v.
func (p *Parser) ParseVariant(markup string, meta Metadata, v *schema.Variant) Result {
	st := p.newState()
	return st.parse(markup, meta, v.Schema(), v.Defaults())
}

// ParseDocument reads a record from a block-delimited document. A document
// without a block comment is parsed as bare markup with empty metadata.
func (p *Parser) ParseDocument(doc string, v *schema.Variant) Result {
	st := p.newState()

	block, ok, malformed := ParseBlock(doc, p.config.BlockNamespace)
	if !ok {
		return st.parse(doc, nil, v.Schema(), v.Defaults())
	}
	if malformed != nil {
		st.addWarning(WarningMalformedBlock, "", malformed.Error())
	}
	if block.Name != v.Name() {
		st.addWarning(WarningVariantMismatch, "", fmt.Sprintf("block %q parsed as variant %q", block.Name, v.Name()))
	}
	return st.parse(block.HTML, block.Attrs, v.Schema(), v.Defaults())
}

// Parse reads a record for s with the default parser options.
func Parse(markup string, meta Metadata, s *schema.Schema) schema.Record {
	p, err := NewParser(Config{})
	if err != nil {
		panic(err)
	}
	return p.Parse(markup, meta, s).Record
}

func (p *Parser) newState() *state {
	return &state{config: p.config, log: p.log}
}

func (s *state) addWarning(typ WarningType, field, message string) {
	s.warnings = append(s.warnings, Warning{Type: typ, Field: field, Message: message})
	s.log.Debug("parse warning",
		zap.String("type", string(typ)),
		zap.String("field", field),
		zap.String("message", message))
}

func (s *state) parse(markup string, meta Metadata, sch *schema.Schema, defaults schema.Record) Result {
	container, err := parseMarkup(markup)
	if err != nil {
		s.addWarning(WarningUnparsableMarkup, "", err.Error())
	}

	scope := container
	if rootStep, err := sch.RootStep(); err == nil {
		if root := findPath(container, []schema.Step{rootStep}); root != nil {
			scope = root
		} else if strings.TrimSpace(markup) != "" {
			s.addWarning(WarningMissingRoot, "", fmt.Sprintf("no %s element, reading fields from the whole fragment", rootStep))
		}
	}

	styleKeys := elementStyleKeys(sch, defaults)

	rec := make(schema.Record, sch.Len())
	for _, field := range sch.Fields() {
		var node *xhtml.Node
		if steps, err := field.Location.Steps(); err == nil {
			node = findPath(scope, steps)
		}

		switch field.Kind {
		case schema.KindPlainText:
			if node == nil {
				s.missing(field)
				continue
			}
			rec[field.ID] = schema.Text(strings.TrimSpace(extractHTMLNodeText(node)))
		case schema.KindRichRun:
			if node == nil {
				s.missing(field)
				continue
			}
			rec[field.ID] = schema.NormalizeRuns(s.inlineRuns(field.ID, node))
		case schema.KindAttribute:
			if node == nil {
				continue
			}
			if value, ok := lookupHTMLAttr(node, field.Location.Attribute); ok {
				rec[field.ID] = schema.Text(value)
			}
		case schema.KindStyleObject:
			if s.config.StyleSource == StyleFromMarkup && node != nil {
				rec[field.ID] = s.markupStyle(field, node, defaults.Style(field.ID), styleKeys[field.Location.ElementKey()])
			}
		case schema.KindNumber:
			raw, ok := meta[field.ID]
			if !ok || raw == nil {
				continue
			}
			n, ok := metadataNumber(raw)
			if !ok {
				s.addWarning(WarningInvalidNumber, field.ID, fmt.Sprintf("%v is not an integer", raw))
				continue
			}
			rec[field.ID] = schema.Number(n)
		case schema.KindEnum:
			raw, ok := meta[field.ID]
			if !ok || raw == nil {
				continue
			}
			value, isString := raw.(string)
			if !isString || !field.Allows(value) {
				s.addWarning(WarningInvalidEnum, field.ID, fmt.Sprintf("%v is not one of %s", raw, strings.Join(field.Options, ", ")))
				continue
			}
			rec[field.ID] = schema.Enum(value)
		}
	}

	return Result{
		Record:   rec.Complete(sch, defaults),
		Warnings: s.warnings,
	}
}

func (s *state) missing(field schema.FieldSpec) {
	if field.OmitEmpty {
		return
	}
	s.addWarning(WarningMissingElement, field.ID, fmt.Sprintf("no element matches %q", field.Location.Selector))
}

// markupStyle overlays the inline style of node on base. Only keys in the
// shape of base are taken; declarations owned by other fields on the same
// element are skipped silently.
func (s *state) markupStyle(field schema.FieldSpec, node *xhtml.Node, base schema.Style, known map[string]bool) schema.Style {
	style := base.Clone()
	if style == nil {
		style = schema.Style{}
	}
	for property, value := range parseInlineStyle(getHTMLAttr(node, "style")) {
		key := styleKey(property)
		if _, ok := style[key]; ok {
			style[key] = schema.Normalize(value)
			continue
		}
		if !known[key] && !known[property] {
			s.addWarning(WarningUnknownStyleKey, field.ID, fmt.Sprintf("ignored style property %q", property))
		}
	}
	return style
}

// elementStyleKeys indexes, per element, the style keys and properties that
// fields render on it.
func elementStyleKeys(sch *schema.Schema, defaults schema.Record) map[string]map[string]bool {
	index := make(map[string]map[string]bool)
	add := func(element, key string) {
		if index[element] == nil {
			index[element] = make(map[string]bool)
		}
		index[element][key] = true
	}
	for _, field := range sch.Fields() {
		element := field.Location.ElementKey()
		switch {
		case field.Kind == schema.KindStyleObject:
			for key := range defaults.Style(field.ID) {
				add(element, key)
			}
		case field.Kind == schema.KindEnum && field.StyleProperty != "":
			add(element, field.StyleProperty)
		}
	}
	return index
}
