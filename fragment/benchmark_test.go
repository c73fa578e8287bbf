package fragment

import (
	"testing"

	"github.com/rgonek/gutencard/variants"
)

func BenchmarkRender(b *testing.B) {
	variant := lookupVariant(b, variants.FeaturedCard)
	rec := sampleRecord(variant)
	r, err := NewRenderer(Config{})
	if err != nil {
		b.Fatalf("failed to create renderer: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render(rec, variant.Schema()); err != nil {
			b.Fatalf("render failed: %v", err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	variant := lookupVariant(b, variants.FeaturedCard)
	r, err := NewRenderer(Config{})
	if err != nil {
		b.Fatalf("failed to create renderer: %v", err)
	}
	doc, err := r.RenderBlock(sampleRecord(variant), variant)
	if err != nil {
		b.Fatalf("render failed: %v", err)
	}
	p, err := NewParser(Config{StyleSource: StyleFromMarkup})
	if err != nil {
		b.Fatalf("failed to create parser: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ParseDocument(doc, variant)
	}
}
