package schema

import (
	"fmt"
	"strings"
)

// DefaultTag is used when a selector step names classes but no tag and an
// element has to be created for it.
const DefaultTag = "div"

// Step is one compound selector: an optional tag name plus classes.
type Step struct {
	Tag     string
	Classes []string
}

// Key returns a canonical representation of the step, used to reuse
// elements shared by several fields.
func (s Step) Key() string {
	var sb strings.Builder
	sb.WriteString(s.Tag)
	for _, class := range s.Classes {
		sb.WriteString(".")
		sb.WriteString(class)
	}
	return sb.String()
}

// ElementTag returns the tag used when rendering the step.
func (s Step) ElementTag() string {
	if s.Tag == "" {
		return DefaultTag
	}
	return s.Tag
}

// ClassAttr returns the value of the class attribute emitted for the step.
func (s Step) ClassAttr() string {
	return strings.Join(s.Classes, " ")
}

func (s Step) String() string {
	return s.Key()
}

// ParseStep parses a compound selector such as "img.card-image" or ".card".
func ParseStep(raw string) (Step, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Step{}, fmt.Errorf("empty selector step")
	}

	parts := strings.Split(raw, ".")
	step := Step{Tag: strings.ToLower(parts[0])}
	if !validIdent(step.Tag, true) {
		return Step{}, fmt.Errorf("invalid tag %q in selector step %q", parts[0], raw)
	}
	for _, class := range parts[1:] {
		if !validIdent(class, false) {
			return Step{}, fmt.Errorf("invalid class %q in selector step %q", class, raw)
		}
		step.Classes = append(step.Classes, class)
	}
	if step.Tag == "" && len(step.Classes) == 0 {
		return Step{}, fmt.Errorf("empty selector step %q", raw)
	}

	return step, nil
}

// ParseSelector parses a whitespace separated list of compound selectors
// joined by the descendant combinator. An empty selector yields no steps and
// designates the schema root.
func ParseSelector(raw string) ([]Step, error) {
	fields := strings.Fields(raw)
	steps := make([]Step, 0, len(fields))
	for _, field := range fields {
		step, err := ParseStep(field)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func validIdent(value string, allowEmpty bool) bool {
	if value == "" {
		return allowEmpty
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Location describes where a field's value lives inside a fragment.
type Location struct {
	// Selector is relative to the schema root. Empty means the root itself.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	// Attribute names the attribute holding the value for attribute fields.
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}

// Steps parses the location's selector.
func (l Location) Steps() ([]Step, error) {
	return ParseSelector(l.Selector)
}

// ElementKey identifies the element a location resolves to when rendered.
func (l Location) ElementKey() string {
	steps, err := l.Steps()
	if err != nil {
		return l.Selector
	}
	keys := make([]string, 0, len(steps))
	for _, step := range steps {
		keys = append(keys, step.Key())
	}
	return strings.Join(keys, " ")
}
