package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Variant is a named schema together with its default record. Variants are
// immutable: accessors hand out copies.
type Variant struct {
	name     string
	title    string
	schema   *Schema
	defaults Record
}

// Name returns the variant's stable identifier.
func (v *Variant) Name() string { return v.name }

// Title returns the human readable title, or the name when none was given.
func (v *Variant) Title() string {
	if v.title == "" {
		return v.name
	}
	return v.title
}

// Schema returns the variant's schema.
func (v *Variant) Schema() *Schema { return v.schema }

// Defaults returns a copy of the variant's default record.
func (v *Variant) Defaults() Record { return v.defaults.Clone() }

// Registry maps variant names to variants. It is append-only: names can be
// registered once and never removed.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*Variant
	order    []string
	validate *validator.Validate
	log      *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		variants: make(map[string]*Variant),
		validate: validator.New(),
		log:      log.Named("registry"),
	}
}

// Default is the process-wide registry used by the package-level functions.
// It is populated once during startup.
var Default = NewRegistry(nil)

// Register adds a variant to the default registry.
func Register(name string, s *Schema, defaults Record, opts ...RegisterOption) error {
	return Default.Register(name, s, defaults, opts...)
}

// Lookup finds a variant in the default registry.
func Lookup(name string) (*Variant, error) {
	return Default.Lookup(name)
}

// Names lists the variants of the default registry in registration order.
func Names() []string {
	return Default.Names()
}

// RegisterOption customizes a registration.
type RegisterOption func(*Variant)

// WithTitle sets the variant's human readable title.
func WithTitle(title string) RegisterOption {
	return func(v *Variant) {
		v.title = strings.TrimSpace(title)
	}
}

// Register validates the schema and stores the variant under name. It fails
// with ErrDuplicateVariant when name is taken and with ErrInvalidSchema when
// the schema or default record is inconsistent.
func (r *Registry) Register(name string, s *Schema, defaults Record, opts ...RegisterOption) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty variant name", ErrInvalidSchema)
	}
	if s == nil {
		return fmt.Errorf("%w: variant %q has no schema", ErrInvalidSchema, name)
	}

	if err := r.check(s, defaults); err != nil {
		return fmt.Errorf("%w: variant %q: %w", ErrInvalidSchema, name, err)
	}

	variant := &Variant{
		name:     name,
		schema:   s,
		defaults: defaults.Complete(s, s.Defaults()),
	}
	for _, opt := range opts {
		opt(variant)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.variants[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariant, name)
	}
	r.variants[name] = variant
	r.order = append(r.order, name)

	r.log.Debug("Registered variant", zap.String("name", name), zap.Int("fields", s.Len()))
	return nil
}

// Lookup returns the variant registered under name.
func (r *Registry) Lookup(name string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return variant, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// check collects every inconsistency of s and defaults.
func (r *Registry) check(s *Schema, defaults Record) error {
	var errs error

	for _, id := range s.duplicates {
		errs = multierr.Append(errs, fmt.Errorf("duplicate field id %q", id))
	}

	if _, err := s.RootStep(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("root selector: %w", err))
	}

	contentTargets := make(map[string]string)
	attrTargets := make(map[string]string)

	for _, field := range s.Fields() {
		if err := r.validate.Struct(field); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field %q: %w", field.ID, flattenValidation(err)))
			continue
		}
		errs = multierr.Append(errs, checkField(field, defaults))

		if _, err := field.Location.Steps(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field %q: selector: %w", field.ID, err))
			continue
		}

		element := field.Location.ElementKey()
		switch {
		case field.Kind.IsContent():
			if other, ok := contentTargets[element]; ok {
				errs = multierr.Append(errs, fmt.Errorf("fields %q and %q both fill element %q", other, field.ID, element))
			}
			contentTargets[element] = field.ID
		case field.Kind == KindAttribute:
			attr := strings.ToLower(strings.TrimSpace(field.Location.Attribute))
			if attr == "" {
				errs = multierr.Append(errs, fmt.Errorf("field %q: attribute field without attribute name", field.ID))
				continue
			}
			if attr == "class" || attr == "style" {
				errs = multierr.Append(errs, fmt.Errorf("field %q: attribute %q is reserved", field.ID, attr))
				continue
			}
			target := element + "@" + attr
			if other, ok := attrTargets[target]; ok {
				errs = multierr.Append(errs, fmt.Errorf("fields %q and %q both fill attribute %q", other, field.ID, target))
			}
			attrTargets[target] = field.ID
		}
	}

	for id := range defaults {
		if _, ok := s.Field(id); !ok {
			errs = multierr.Append(errs, fmt.Errorf("default record names %w %q", ErrUnknownField, id))
		}
	}

	return errs
}

func checkField(field FieldSpec, defaults Record) error {
	var errs error

	if field.Default != nil && !field.Kind.Accepts(field.Default) {
		errs = multierr.Append(errs, fmt.Errorf("field %q: default %T does not fit kind %s", field.ID, field.Default, field.Kind))
	}

	override, hasOverride := defaults[field.ID]
	if hasOverride && !field.Kind.Accepts(override) {
		errs = multierr.Append(errs, fmt.Errorf("field %q: default record value %T does not fit kind %s", field.ID, override, field.Kind))
	}

	if field.Kind.RequiresDefault() && field.Default == nil && !hasOverride {
		errs = multierr.Append(errs, fmt.Errorf("field %q: kind %s requires a default", field.ID, field.Kind))
	}

	if field.Kind == KindStyleObject {
		if style, ok := field.Default.(Style); ok && len(style) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("field %q: style default must name at least one key", field.ID))
		}
	}

	if field.Kind == KindEnum {
		if len(field.Options) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("field %q: enum without options", field.ID))
		}
		for _, candidate := range []Value{field.Default, override} {
			if value, ok := candidate.(Enum); ok && !field.Allows(string(value)) {
				errs = multierr.Append(errs, fmt.Errorf("field %q: default %q: %w", field.ID, value, ErrInvalidEnumValue))
			}
		}
	} else if field.StyleProperty != "" {
		errs = multierr.Append(errs, fmt.Errorf("field %q: style property is only valid on enum fields", field.ID))
	}

	if field.Kind != KindAttribute && field.Location.Attribute != "" {
		errs = multierr.Append(errs, fmt.Errorf("field %q: attribute name is only valid on attribute fields", field.ID))
	}

	return errs
}

func flattenValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var out error
	for _, fe := range verrs {
		out = multierr.Append(out, fmt.Errorf("%s failed %q validation", fe.Field(), fe.Tag()))
	}
	return out
}
