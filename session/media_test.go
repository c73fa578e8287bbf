package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rgonek/gutencard/schema"
	"github.com/rgonek/gutencard/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageSlot = MediaSlot{IDField: "imageId", URLField: "imageUrl", AltField: "imageAlt"}

func libraryResolver(calls *int) MediaResolver {
	return func(ctx context.Context, id int64) (Media, error) {
		*calls++
		switch id {
		case 7:
			return Media{URL: "https://example.com/7.png", Alt: "Seven"}, nil
		case 8:
			return Media{}, nil
		case 9:
			return Media{}, errors.New("library offline")
		default:
			return Media{}, fmt.Errorf("media %d: %w", id, ErrUnresolved)
		}
	}
}

func TestSelectMedia(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)

	t.Run("explicit media", func(t *testing.T) {
		s := New(variant)
		require.NoError(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 3, URL: " https://example.com/3.png ", Alt: "Three"}))

		rec := s.CurrentRecord()
		assert.Equal(t, int64(3), rec.Number("imageId"))
		assert.Equal(t, "https://example.com/3.png", rec.Text("imageUrl"))
		assert.Equal(t, "Three", rec.Text("imageAlt"))
		assert.True(t, s.Dirty())
	})

	t.Run("resolved by id", func(t *testing.T) {
		calls := 0
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		require.NoError(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 7}))

		rec := s.CurrentRecord()
		assert.Equal(t, 1, calls)
		assert.Equal(t, int64(7), rec.Number("imageId"))
		assert.Equal(t, "https://example.com/7.png", rec.Text("imageUrl"))
		assert.Equal(t, "Seven", rec.Text("imageAlt"))
	})

	t.Run("resolver skipped when url given", func(t *testing.T) {
		calls := 0
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		require.NoError(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 7, URL: "https://cdn.example.com/x.png"}))
		assert.Equal(t, 0, calls)
		assert.Equal(t, "https://cdn.example.com/x.png", s.CurrentRecord().Text("imageUrl"))
	})

	t.Run("unresolved best effort keeps url", func(t *testing.T) {
		calls := 0
		s := Open(variant, schema.Record{"imageUrl": schema.Text("https://example.com/old.png")},
			WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		require.NoError(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 404}))

		rec := s.CurrentRecord()
		assert.Equal(t, int64(404), rec.Number("imageId"))
		assert.Equal(t, "https://example.com/old.png", rec.Text("imageUrl"))
	})

	t.Run("unresolved strict fails", func(t *testing.T) {
		calls := 0
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionStrict))
		err := s.SelectMedia(context.Background(), imageSlot, Media{ID: 404})
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.False(t, s.Dirty())
		assert.Equal(t, variant.Defaults(), s.CurrentRecord())
	})

	t.Run("resolver failure", func(t *testing.T) {
		calls := 0
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		err := s.SelectMedia(context.Background(), imageSlot, Media{ID: 9})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "media resolver failed")
		assert.False(t, s.Dirty())
	})

	t.Run("resolver without url", func(t *testing.T) {
		calls := 0
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		err := s.SelectMedia(context.Background(), imageSlot, Media{ID: 8})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid media resolver output")
	})

	t.Run("canceled context", func(t *testing.T) {
		calls := 0
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := New(variant, WithMediaResolver(libraryResolver(&calls), ResolutionBestEffort))
		err := s.SelectMedia(ctx, imageSlot, Media{ID: 7})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, calls)
	})

	t.Run("invalid slot", func(t *testing.T) {
		s := New(variant)
		err := s.SelectMedia(context.Background(), MediaSlot{IDField: "title", URLField: "imageUrl"}, Media{ID: 1})
		assert.ErrorIs(t, err, schema.ErrUnknownField)

		err = s.SelectMedia(context.Background(), MediaSlot{IDField: "imageId", URLField: "imageUrl", AltField: "content"}, Media{ID: 1})
		assert.ErrorIs(t, err, schema.ErrUnknownField)
	})

	t.Run("closed session", func(t *testing.T) {
		s := New(variant)
		s.Finish()
		assert.ErrorIs(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 1}), ErrSessionClosed)
		assert.ErrorIs(t, s.ClearMedia(imageSlot), ErrSessionClosed)
	})
}

func TestClearMedia(t *testing.T) {
	variant := lookupVariant(t, variants.ImageCard)
	s := New(variant)
	require.NoError(t, s.SelectMedia(context.Background(), imageSlot, Media{ID: 3, URL: "https://example.com/3.png", Alt: "Three"}))

	require.NoError(t, s.ClearMedia(imageSlot))
	assert.Equal(t, variant.Defaults(), s.CurrentRecord())
}
