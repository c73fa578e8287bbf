package schema

import (
	"slices"

	"github.com/elliotchance/orderedmap"
)

// FieldSpec declares one content field: its identifier, value kind, where it
// lives in a fragment and its default.
type FieldSpec struct {
	ID       string   `validate:"required"`
	Kind     Kind     `validate:"required,oneof=plain_text rich_run attribute style_object number enum"`
	Location Location `validate:"-"`
	// Default is required for style_object and enum fields.
	Default Value `validate:"-"`
	// Options is the allowed set of an enum field.
	Options []string `validate:"omitempty,dive,required"`
	// StyleProperty, for enum fields, also emits the value as this CSS
	// property on the element at Location.
	StyleProperty string `validate:"omitempty,excludesall=;:"`
	// OmitEmpty drops the field's element from rendered output when the
	// value is empty.
	OmitEmpty bool
}

// Allows reports whether value is in the field's allowed enum set.
func (f FieldSpec) Allows(value string) bool {
	return slices.Contains(f.Options, value)
}

// Clone returns a deep copy of the field spec.
func (f FieldSpec) Clone() FieldSpec {
	cloned := f
	cloned.Default = CloneValue(f.Default)
	cloned.Options = slices.Clone(f.Options)
	return cloned
}

// Schema is the ordered set of fields of a variant. Field order is the
// order in which fields sharing a container are rendered and parsed.
type Schema struct {
	root       string
	fields     *orderedmap.OrderedMap
	duplicates []string
}

// NewSchema creates a schema rooted at the given compound selector (for
// example "div.card"). Duplicate field identifiers are kept aside and
// reported when the schema is registered.
func NewSchema(root string, fields ...FieldSpec) *Schema {
	s := &Schema{
		root:   root,
		fields: orderedmap.NewOrderedMap(),
	}
	for _, field := range fields {
		if !s.fields.Set(field.ID, field.Clone()) {
			s.duplicates = append(s.duplicates, field.ID)
		}
	}
	return s
}

// Root returns the root selector.
func (s *Schema) Root() string {
	return s.root
}

// RootStep returns the parsed root selector.
func (s *Schema) RootStep() (Step, error) {
	return ParseStep(s.root)
}

// Len returns the number of distinct fields.
func (s *Schema) Len() int {
	return s.fields.Len()
}

// Field looks up a field by identifier.
func (s *Schema) Field(id string) (FieldSpec, bool) {
	value, ok := s.fields.Get(id)
	if !ok {
		return FieldSpec{}, false
	}
	return value.(FieldSpec).Clone(), true
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []FieldSpec {
	fields := make([]FieldSpec, 0, s.fields.Len())
	for el := s.fields.Front(); el != nil; el = el.Next() {
		fields = append(fields, el.Value.(FieldSpec).Clone())
	}
	return fields
}

// IDs returns the field identifiers in declaration order.
func (s *Schema) IDs() []string {
	ids := make([]string, 0, s.fields.Len())
	for el := s.fields.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key.(string))
	}
	return ids
}

// Defaults returns a record holding each field's declared default, or the
// kind's zero value for fields without one.
func (s *Schema) Defaults() Record {
	rec := make(Record, s.fields.Len())
	for el := s.fields.Front(); el != nil; el = el.Next() {
		field := el.Value.(FieldSpec)
		if field.Default != nil {
			rec[field.ID] = CloneValue(field.Default)
			continue
		}
		rec[field.ID] = field.Kind.zeroValue()
	}
	return rec
}
