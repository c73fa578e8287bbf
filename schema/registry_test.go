package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardSchema() *Schema {
	return NewSchema("div.card",
		FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h3.card-title"}, OmitEmpty: true},
		FieldSpec{ID: "content", Kind: KindRichRun, Location: Location{Selector: "p"}},
		FieldSpec{
			ID:       "contentStyle",
			Kind:     KindStyleObject,
			Location: Location{Selector: "p"},
			Default:  Style{"color": "black", "textAlign": "left"},
		},
		FieldSpec{ID: "imageUrl", Kind: KindAttribute, Location: Location{Selector: "img.card-image", Attribute: "src"}},
		FieldSpec{ID: "imageId", Kind: KindNumber},
		FieldSpec{
			ID:      "displayValue",
			Kind:    KindEnum,
			Options: []string{"column", "column-reverse", "row", "row-reverse"},
			Default: Enum("column"),
		},
	)
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register("gutencard/card", cardSchema(), nil, WithTitle("Card")))

	variant, err := reg.Lookup("gutencard/card")
	require.NoError(t, err)
	assert.Equal(t, "gutencard/card", variant.Name())
	assert.Equal(t, "Card", variant.Title())
	assert.Equal(t, []string{"title", "content", "contentStyle", "imageUrl", "imageId", "displayValue"}, variant.Schema().IDs())

	defaults := variant.Defaults()
	assert.Len(t, defaults, 6)
	assert.Equal(t, Text(""), defaults["title"])
	assert.Equal(t, Style{"color": "black", "textAlign": "left"}, defaults["contentStyle"])
	assert.Equal(t, Enum("column"), defaults["displayValue"])
	assert.Equal(t, Number(0), defaults["imageId"])
}

func TestRegisterDefaultRecordOverridesFieldDefaults(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register("gutencard/card", cardSchema(), Record{
		"title":        Text("Hello"),
		"displayValue": Enum("row"),
	}))

	variant, err := reg.Lookup("gutencard/card")
	require.NoError(t, err)
	assert.Equal(t, "Hello", variant.Defaults().Text("title"))
	assert.Equal(t, "row", variant.Defaults().Enum("displayValue"))
}

func TestVariantDefaultsAreCopies(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register("gutencard/card", cardSchema(), nil))
	variant, err := reg.Lookup("gutencard/card")
	require.NoError(t, err)

	defaults := variant.Defaults()
	defaults["contentStyle"].(Style)["color"] = "red"

	assert.Equal(t, "black", variant.Defaults().Style("contentStyle")["color"])
}

func TestRegisterDuplicateVariant(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register("gutencard/card", cardSchema(), nil))

	err := reg.Register("gutencard/card", cardSchema(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateVariant))
	assert.Equal(t, []string{"gutencard/card"}, reg.Names())
}

func TestLookupUnknownVariant(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Lookup("gutencard/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestRegisterInvalidSchema(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		record  Record
		message string
	}{
		{
			name: "style without default",
			schema: NewSchema("div.card",
				FieldSpec{ID: "contentStyle", Kind: KindStyleObject, Location: Location{Selector: "p"}},
			),
			message: `kind style_object requires a default`,
		},
		{
			name: "enum without default",
			schema: NewSchema("div.card",
				FieldSpec{ID: "displayValue", Kind: KindEnum, Options: []string{"row"}},
			),
			message: `kind enum requires a default`,
		},
		{
			name: "duplicate field id",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h3"}},
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h2"}},
			),
			message: `duplicate field id "title"`,
		},
		{
			name: "enum default outside options",
			schema: NewSchema("div.card",
				FieldSpec{ID: "displayValue", Kind: KindEnum, Options: []string{"row"}, Default: Enum("diagonal")},
			),
			message: `invalid enum value`,
		},
		{
			name: "unknown kind",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: Kind("markdown")},
			),
			message: `Kind failed "oneof" validation`,
		},
		{
			name: "missing id",
			schema: NewSchema("div.card",
				FieldSpec{Kind: KindPlainText},
			),
			message: `ID failed "required" validation`,
		},
		{
			name: "attribute without name",
			schema: NewSchema("div.card",
				FieldSpec{ID: "imageUrl", Kind: KindAttribute, Location: Location{Selector: "img"}},
			),
			message: `attribute field without attribute name`,
		},
		{
			name: "two content fields on one element",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "p"}},
				FieldSpec{ID: "content", Kind: KindRichRun, Location: Location{Selector: "p"}},
			),
			message: `fields "title" and "content" both fill element "p"`,
		},
		{
			name: "default record names unknown field",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h3"}},
			),
			record:  Record{"subtitle": Text("x")},
			message: `unknown field "subtitle"`,
		},
		{
			name: "default does not fit kind",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h3"}, Default: Number(3)},
			),
			message: `default schema.Number does not fit kind plain_text`,
		},
		{
			name: "bad selector",
			schema: NewSchema("div.card",
				FieldSpec{ID: "title", Kind: KindPlainText, Location: Location{Selector: "h3#title"}},
			),
			message: `invalid tag "h3#title"`,
		},
		{
			name:    "bad root",
			schema:  NewSchema(""),
			message: `root selector: empty selector step`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(nil)
			err := reg.Register("gutencard/broken", tt.schema, tt.record)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, reg.Names())
		})
	}
}

func TestRegisterReportsEveryCause(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Register("gutencard/broken", NewSchema("div.card",
		FieldSpec{ID: "contentStyle", Kind: KindStyleObject, Location: Location{Selector: "p"}},
		FieldSpec{ID: "displayValue", Kind: KindEnum, Options: []string{"row"}},
	), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"contentStyle": kind style_object requires a default`)
	assert.Contains(t, err.Error(), `"displayValue": kind enum requires a default`)
}

func TestRegisterAcceptsStyleDefaultFromRecord(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Register("gutencard/card", NewSchema("div.card",
		FieldSpec{ID: "backgroundStyle", Kind: KindStyleObject},
	), Record{"backgroundStyle": Style{"backgroundColor": "white"}})
	require.NoError(t, err)
}

func TestPackageLevelRegistry(t *testing.T) {
	name := "gutencard/test-package-level"
	require.NoError(t, Register(name, cardSchema(), nil))

	variant, err := Lookup(name)
	require.NoError(t, err)
	assert.Equal(t, name, variant.Name())
	assert.Contains(t, Names(), name)
}
