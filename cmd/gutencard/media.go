package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rgonek/gutencard/schema"
	"github.com/rgonek/gutencard/session"
	"gopkg.in/yaml.v3"
)

// mediaEntry is one image of a --media-library file.
type mediaEntry struct {
	URL string `yaml:"url"`
	Alt string `yaml:"alt"`
}

func loadMediaLibrary(path string) (map[int64]mediaEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media library %q: %w", path, err)
	}
	var library map[int64]mediaEntry
	if err := yaml.Unmarshal(data, &library); err != nil {
		return nil, fmt.Errorf("failed to parse media library %q: %w", path, err)
	}
	return library, nil
}

func libraryResolver(library map[int64]mediaEntry) session.MediaResolver {
	return func(ctx context.Context, id int64) (session.Media, error) {
		entry, ok := library[id]
		if !ok {
			return session.Media{}, fmt.Errorf("media %d not in library: %w", id, session.ErrUnresolved)
		}
		return session.Media{ID: id, URL: entry.URL, Alt: entry.Alt}, nil
	}
}

// mediaSlotFor derives the URL and alt fields paired with an id field by
// name: imageId pairs with imageUrl and imageAlt.
func mediaSlotFor(sch *schema.Schema, idField string) (session.MediaSlot, error) {
	prefix, ok := strings.CutSuffix(idField, "Id")
	if !ok {
		return session.MediaSlot{}, fmt.Errorf("%w: %q is not a media id field", schema.ErrUnknownField, idField)
	}
	slot := session.MediaSlot{IDField: idField, URLField: prefix + "Url"}
	if _, ok := sch.Field(prefix + "Alt"); ok {
		slot.AltField = prefix + "Alt"
	}
	return slot, nil
}

// parseMedia reads "ID" or "ID,URL" or "ID,URL,ALT".
func parseMedia(raw string) (session.Media, error) {
	parts := strings.SplitN(raw, ",", 3)
	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return session.Media{}, fmt.Errorf("invalid media id %q: %w", parts[0], err)
	}
	media := session.Media{ID: id}
	if len(parts) > 1 {
		media.URL = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		media.Alt = parts[2]
	}
	return media, nil
}
