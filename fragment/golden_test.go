package fragment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgonek/gutencard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goldenFixture struct {
	Variant string          `json:"variant"`
	Record  json.RawMessage `json:"record"`
}

func TestGoldenFragments(t *testing.T) {
	reg := builtinRegistry(t)
	r := newTestRenderer(t)
	p := newTestParser(t, Config{StyleSource: StyleFromMarkup})

	fixtures := []string{
		"gutencard_full",
		"gutencard_defaults",
		"image_card_no_alt",
		"featured_card",
		"link_card",
	}

	for _, fixture := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			jsonPath := filepath.Join("testdata", fixture+".json")
			htmlPath := filepath.Join("testdata", fixture+".html")

			data, err := os.ReadFile(jsonPath)
			require.NoError(t, err)
			expectedHTML, err := os.ReadFile(htmlPath)
			require.NoError(t, err)

			var fx goldenFixture
			require.NoError(t, json.Unmarshal(data, &fx))
			variant, err := reg.Lookup(fx.Variant)
			require.NoError(t, err)

			rec, err := schema.UnmarshalRecord(fx.Record, variant.Schema(), variant.Defaults())
			require.NoError(t, err)

			html, err := r.Render(rec, variant.Schema())
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(string(expectedHTML)), html)

			result := p.ParseVariant(html, Attributes(rec, variant.Schema()), variant)
			assertRecordEqual(t, rec, result.Record)
			assert.Empty(t, result.Warnings)
		})
	}
}
