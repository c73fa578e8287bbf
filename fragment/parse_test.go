package fragment

import (
	"encoding/json"
	"testing"

	"github.com/rgonek/gutencard/schema"
	"github.com/rgonek/gutencard/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseEmptyMarkupYieldsDefaults(t *testing.T) {
	reg := builtinRegistry(t)
	p := newTestParser(t, Config{})

	for _, name := range reg.Names() {
		variant, err := reg.Lookup(name)
		require.NoError(t, err)

		result := p.ParseVariant("", nil, variant)
		assertRecordEqual(t, variant.Defaults(), result.Record)
	}
}

func TestParseMalformedMarkupNeverFails(t *testing.T) {
	variant := lookupVariant(t, variants.Gutencard)

	result := newTestParser(t, Config{}).ParseVariant(`<div class="card"><h3 class="card-title">  Title </h3><p>Unclosed <strong>bold`, nil, variant)

	assert.Equal(t, "Title", result.Record.Text("title"))
	assert.Equal(t, schema.Runs{
		schema.TextRun("Unclosed "),
		schema.TextRun("bold", schema.Mark{Type: schema.MarkStrong}),
	}, result.Record.Runs("content"))
	assert.Equal(t, schema.Style{"color": "black", "textAlign": "left"}, result.Record.Style("contentStyle"))
}

func TestParseMissingRootSearchesWholeFragment(t *testing.T) {
	variant := lookupVariant(t, variants.Gutencard)

	result := newTestParser(t, Config{}).ParseVariant(`<p>Loose <em>text</em></p>`, nil, variant)

	assert.Equal(t, schema.Runs{
		schema.TextRun("Loose "),
		schema.TextRun("text", schema.Mark{Type: schema.MarkEm}),
	}, result.Record.Runs("content"))
	assert.Contains(t, warningTypes(result.Warnings), WarningMissingRoot)
}

func TestParseMissingElementWarnsOnlyForRequiredContent(t *testing.T) {
	variant := lookupVariant(t, variants.Gutencard)

	result := newTestParser(t, Config{}).ParseVariant(`<div class="card"></div>`, nil, variant)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningMissingElement, result.Warnings[0].Type)
	assert.Equal(t, "content", result.Warnings[0].Field)
}

func TestParseAbsentRichRunUsesFieldDefault(t *testing.T) {
	s := schema.NewSchema("blockquote.quote",
		schema.FieldSpec{
			ID:       "quote",
			Kind:     schema.KindRichRun,
			Location: schema.Location{Selector: "p"},
			Default:  schema.Runs{schema.TextRun("Say something")},
		},
	)

	rec := Parse(`<blockquote class="quote"></blockquote>`, nil, s)
	assert.Equal(t, schema.Runs{schema.TextRun("Say something")}, rec.Runs("quote"))
}

func TestParseStyleSource(t *testing.T) {
	variant := lookupVariant(t, variants.Gutencard)
	markup := `<div class="card"><p style="color: red; text-align: center; font-weight: bold">Hi</p></div>`

	t.Run("defaults", func(t *testing.T) {
		result := newTestParser(t, Config{}).ParseVariant(markup, nil, variant)
		assert.Equal(t, schema.Style{"color": "black", "textAlign": "left"}, result.Record.Style("contentStyle"))
		assert.Empty(t, result.Warnings)
	})

	t.Run("markup", func(t *testing.T) {
		result := newTestParser(t, Config{StyleSource: StyleFromMarkup}).ParseVariant(markup, nil, variant)
		assert.Equal(t, schema.Style{"color": "red", "textAlign": "center"}, result.Record.Style("contentStyle"))
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningUnknownStyleKey, result.Warnings[0].Type)
		assert.Equal(t, "contentStyle", result.Warnings[0].Field)
	})

	t.Run("markup keeps default for missing keys", func(t *testing.T) {
		result := newTestParser(t, Config{StyleSource: StyleFromMarkup}).
			ParseVariant(`<div class="card"><p style="color:#336699">Hi</p></div>`, nil, variant)
		assert.Equal(t, schema.Style{"color": "#336699", "textAlign": "left"}, result.Record.Style("contentStyle"))
	})
}

func TestParseStyleFromMarkupSkipsLayoutProperty(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)
	markup := `<div class="card card-image-layout" style="flex-direction:row"><div class="card-body"><p style="color:green">x</p></div></div>`

	result := newTestParser(t, Config{StyleSource: StyleFromMarkup}).ParseVariant(markup, nil, variant)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "green", result.Record.Style("contentStyle")["color"])
	assert.Equal(t, "column", result.Record.Enum("displayValue"))
}

func TestParseEnumCoercion(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)
	p := newTestParser(t, Config{})

	tests := []struct {
		name     string
		meta     Metadata
		expected string
		warns    bool
	}{
		{name: "allowed", meta: Metadata{"displayValue": "row-reverse"}, expected: "row-reverse"},
		{name: "absent", meta: nil, expected: "column"},
		{name: "not allowed", meta: Metadata{"displayValue": "diagonal"}, expected: "column", warns: true},
		{name: "not a string", meta: Metadata{"displayValue": 3}, expected: "column", warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseVariant(`<div class="card card-image-layout"><div class="card-body"><p></p></div></div>`, tt.meta, variant)
			assert.Equal(t, tt.expected, result.Record.Enum("displayValue"))
			if tt.warns {
				assert.Contains(t, warningTypes(result.Warnings), WarningInvalidEnum)
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestParseNumberFromMetadata(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)
	p := newTestParser(t, Config{})

	tests := []struct {
		name     string
		raw      any
		expected int64
		warns    bool
	}{
		{name: "json number", raw: json.Number("17"), expected: 17},
		{name: "integral float", raw: float64(17), expected: 17},
		{name: "int", raw: 17, expected: 17},
		{name: "numeric string", raw: " 17 ", expected: 17},
		{name: "fractional", raw: 17.5, expected: 0, warns: true},
		{name: "word", raw: "seventeen", expected: 0, warns: true},
		{name: "bool", raw: true, expected: 0, warns: true},
		{name: "float past int64 range", raw: float64(1 << 63), expected: 0, warns: true},
		{name: "float below int64 range", raw: -1e19, expected: 0, warns: true},
		{name: "largest exact float", raw: float64(1 << 62), expected: 1 << 62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ParseVariant("", Metadata{"imageId": tt.raw}, variant)
			assert.Equal(t, tt.expected, result.Record.Number("imageId"))
			assert.Equal(t, tt.warns, containsWarning(result.Warnings, WarningInvalidNumber))
		})
	}
}

func containsWarning(warnings []Warning, typ WarningType) bool {
	for _, w := range warnings {
		if w.Type == typ {
			return true
		}
	}
	return false
}

func TestParseUnknownInline(t *testing.T) {
	variant := lookupVariant(t, variants.PlainCard)
	markup := `<div class="card card-plain"><p>a <mark>b</mark> <span>c</span></p></div>`

	t.Run("text", func(t *testing.T) {
		result := newTestParser(t, Config{}).ParseVariant(markup, nil, variant)
		assert.Equal(t, schema.Runs{schema.TextRun("a b c")}, result.Record.Runs("content"))
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningUnknownInline, result.Warnings[0].Type)
	})

	t.Run("skip", func(t *testing.T) {
		result := newTestParser(t, Config{UnknownInline: InlineSkip}).ParseVariant(markup, nil, variant)
		assert.Equal(t, schema.Runs{schema.TextRun("a  c")}, result.Record.Runs("content"))
		require.Len(t, result.Warnings, 1)
	})
}

func TestParseLinkTitleAndNestedMarks(t *testing.T) {
	variant := lookupVariant(t, variants.PlainCard)
	markup := `<div class="card card-plain"><p><b>x<i>y</i></b><br><a href="https://example.com" title="Example">z</a><a>w</a></p></div>`

	rec := Parse(markup, nil, variant.Schema())

	link := schema.Link("https://example.com")
	link.Attrs["title"] = "Example"
	assert.Equal(t, schema.Runs{
		schema.TextRun("x", schema.Mark{Type: schema.MarkStrong}),
		schema.TextRun("y", schema.Mark{Type: schema.MarkStrong}, schema.Mark{Type: schema.MarkEm}),
		schema.HardBreak(),
		schema.TextRun("z", link),
		schema.TextRun("w"),
	}, rec.Runs("content"))
}

func TestParseDocument(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)
	p := newTestParser(t, Config{})

	t.Run("block", func(t *testing.T) {
		doc := "<!-- wp:gutencard/image-card {\"imageId\":5,\"displayValue\":\"row\"} -->\n" +
			`<div class="card card-image-layout"><div class="card-body"><p>Hi</p></div></div>` +
			"\n<!-- /wp:gutencard/image-card -->"

		result := p.ParseDocument(doc, variant)
		assert.Empty(t, result.Warnings)
		assert.Equal(t, int64(5), result.Record.Number("imageId"))
		assert.Equal(t, "row", result.Record.Enum("displayValue"))
		assert.Equal(t, "Hi", result.Record.Runs("content").PlainText())
	})

	t.Run("bare markup", func(t *testing.T) {
		result := p.ParseDocument(`<div class="card card-image-layout"><div class="card-body"><p>Hi</p></div></div>`, variant)
		assert.Empty(t, result.Warnings)
		assert.Equal(t, "Hi", result.Record.Runs("content").PlainText())
	})

	t.Run("other variant", func(t *testing.T) {
		result := p.ParseDocument(`<!-- wp:gutencard/plain-card /-->`, variant)
		assert.Contains(t, warningTypes(result.Warnings), WarningVariantMismatch)
		assertRecordEqual(t, variant.Defaults(), result.Record)
	})

	t.Run("malformed attributes", func(t *testing.T) {
		doc := "<!-- wp:gutencard/image-card {imageId: 5} -->\n<div class=\"card card-image-layout\"><div class=\"card-body\"><p></p></div></div>\n<!-- /wp:gutencard/image-card -->"
		result := p.ParseDocument(doc, variant)
		assert.Equal(t, []WarningType{WarningMalformedBlock}, warningTypes(result.Warnings))
		assert.Equal(t, int64(0), result.Record.Number("imageId"))
	})
}

func TestParseLogsWarnings(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	variant := lookupVariant(t, variants.ImageCard)

	p := newTestParser(t, Config{Logger: zap.New(core)})
	p.ParseVariant("", Metadata{"displayValue": "diagonal"}, variant)

	entries := logs.FilterMessage("parse warning").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "parser", entries[0].LoggerName)
}
