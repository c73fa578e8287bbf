// Package variants declares the built-in card variants as data and loads
// additional variant definitions from YAML.
package variants

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rgonek/gutencard/schema"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Names of the built-in variants.
const (
	Gutencard      = "gutencard/block-gutencard"
	PlainCard      = "gutencard/plain-card"
	TitledCard     = "gutencard/titled-card"
	ImageCard      = "gutencard/image-card"
	BackgroundCard = "gutencard/background-card"
	FeaturedCard   = "gutencard/featured-card"
	LinkCard       = "gutencard/link-card"
)

//go:embed builtin.yaml
var builtinYAML []byte

// File is the top-level shape of a variant definition file.
type File struct {
	Variants []Definition `yaml:"variants" validate:"required,min=1,dive"`
}

// Definition describes one variant.
type Definition struct {
	Name   string            `yaml:"name" validate:"required"`
	Title  string            `yaml:"title"`
	Root   string            `yaml:"root" validate:"required"`
	Fields []FieldDefinition `yaml:"fields" validate:"required,min=1,dive"`
}

// FieldDefinition is the YAML form of a schema.FieldSpec.
type FieldDefinition struct {
	ID            string   `yaml:"id" validate:"required"`
	Kind          string   `yaml:"kind" validate:"required"`
	Selector      string   `yaml:"selector"`
	Attribute     string   `yaml:"attribute"`
	Default       any      `yaml:"default"`
	Options       []string `yaml:"options"`
	StyleProperty string   `yaml:"styleProperty"`
	OmitEmpty     bool     `yaml:"omitEmpty"`
}

// Load parses and validates a variant definition file.
func Load(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse variant definitions: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrInvalidSchema, err)
	}

	return file.Variants, nil
}

// Builtins returns the built-in variant definitions.
func Builtins() []Definition {
	defs, err := Load(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in variant definitions are invalid: %v", err))
	}
	return defs
}

// RegisterBuiltins registers every built-in variant with reg. It is meant to
// be called once during startup.
func RegisterBuiltins(reg *schema.Registry) error {
	return Register(reg, Builtins())
}

// Register registers each definition with reg, stopping at the first
// failure.
func Register(reg *schema.Registry, defs []Definition) error {
	for _, def := range defs {
		s, err := def.Schema()
		if err != nil {
			return err
		}
		if err := reg.Register(def.Name, s, nil, schema.WithTitle(def.Title)); err != nil {
			return err
		}
	}
	return nil
}

// Schema converts the definition into a schema.
func (d Definition) Schema() (*schema.Schema, error) {
	var errs error
	fields := make([]schema.FieldSpec, 0, len(d.Fields))
	for _, fd := range d.Fields {
		field, err := fd.spec()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		fields = append(fields, field)
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: variant %q: %w", schema.ErrInvalidSchema, d.Name, errs)
	}

	return schema.NewSchema(d.Root, fields...), nil
}

func (fd FieldDefinition) spec() (schema.FieldSpec, error) {
	kind := schema.Kind(strings.TrimSpace(fd.Kind))
	if !kind.Valid() {
		return schema.FieldSpec{}, fmt.Errorf("field %q: unknown kind %q", fd.ID, fd.Kind)
	}

	field := schema.FieldSpec{
		ID:   fd.ID,
		Kind: kind,
		Location: schema.Location{
			Selector:  fd.Selector,
			Attribute: fd.Attribute,
		},
		Options:       fd.Options,
		StyleProperty: fd.StyleProperty,
		OmitEmpty:     fd.OmitEmpty,
	}

	if fd.Default != nil {
		value, err := defaultValue(kind, fd.Default)
		if err != nil {
			return schema.FieldSpec{}, fmt.Errorf("field %q: %w", fd.ID, err)
		}
		field.Default = value
	}

	return field, nil
}

func defaultValue(kind schema.Kind, raw any) (schema.Value, error) {
	switch kind {
	case schema.KindStyleObject:
		entries, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("style default must be a mapping, got %T", raw)
		}
		style := make(schema.Style, len(entries))
		for key, value := range entries {
			style[key] = fmt.Sprint(value)
		}
		return style, nil
	case schema.KindNumber:
		switch n := raw.(type) {
		case int:
			return schema.Number(n), nil
		case int64:
			return schema.Number(n), nil
		default:
			return nil, fmt.Errorf("number default must be an integer, got %T", raw)
		}
	case schema.KindEnum:
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("enum default must be a string, got %T", raw)
		}
		return schema.Enum(value), nil
	case schema.KindRichRun:
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("rich_run default must be a string, got %T", raw)
		}
		return schema.NormalizeRuns(schema.Runs{schema.TextRun(value)}), nil
	default:
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s default must be a string, got %T", kind, raw)
		}
		return schema.Text(value), nil
	}
}
