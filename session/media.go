package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rgonek/gutencard/schema"
	"go.uber.org/zap"
)

// ErrUnresolved indicates that a media resolver could not find an image.
var ErrUnresolved = errors.New("unresolved media reference")

// ResolutionMode controls how unresolved media is handled by SelectMedia.
type ResolutionMode string

const (
	// ResolutionBestEffort stores the media id and keeps the current URL.
	ResolutionBestEffort ResolutionMode = "best_effort"
	// ResolutionStrict fails SelectMedia when the resolver returns
	// ErrUnresolved.
	ResolutionStrict ResolutionMode = "strict"
)

// Media is an image picked from the host's media library.
type Media struct {
	ID  int64
	URL string
	Alt string
}

// MediaSlot names the fields that together hold one image of a variant.
// AltField is optional.
type MediaSlot struct {
	IDField  string
	URLField string
	AltField string
}

// MediaResolver looks up an image by id.
type MediaResolver func(ctx context.Context, id int64) (Media, error)

// WithMediaResolver sets the resolver SelectMedia uses for media given by id
// only.
func WithMediaResolver(resolver MediaResolver, mode ResolutionMode) Option {
	return func(s *Session) {
		s.resolver = resolver
		if mode == ResolutionStrict {
			s.resolution = ResolutionStrict
		}
	}
}

// SelectMedia stores media in the fields of slot. When media has an id but
// no URL and a resolver is configured, the resolver supplies the URL and alt
// text. The fields are updated together or not at all.
func (s *Session) SelectMedia(ctx context.Context, slot MediaSlot, media Media) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.checkSlot(slot); err != nil {
		return err
	}

	if media.URL == "" && media.ID != 0 && s.resolver != nil {
		resolved, ok, err := s.resolveMedia(ctx, media.ID)
		if err != nil {
			return err
		}
		if ok {
			media = resolved
		} else {
			media.URL = s.record.Text(slot.URLField)
		}
	}

	s.record[slot.IDField] = schema.Number(media.ID)
	s.record[slot.URLField] = schema.Text(strings.TrimSpace(media.URL))
	if slot.AltField != "" {
		s.record[slot.AltField] = schema.Text(media.Alt)
	}
	s.dirty = true
	s.log.Debug("Selected media", zap.String("field", slot.IDField), zap.Int64("id", media.ID))
	return nil
}

// ClearMedia resets every field of slot to its default.
func (s *Session) ClearMedia(slot MediaSlot) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.checkSlot(slot); err != nil {
		return err
	}
	for _, id := range []string{slot.IDField, slot.URLField, slot.AltField} {
		if id != "" {
			s.ClearField(id)
		}
	}
	return nil
}

func (s *Session) resolveMedia(ctx context.Context, id int64) (Media, bool, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, false, err
	}

	media, err := s.resolver(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnresolved) {
			if s.resolution == ResolutionStrict {
				return Media{}, false, fmt.Errorf("unresolved media reference %d: %w", id, err)
			}
			s.log.Warn("Unresolved media reference; keeping current URL", zap.Int64("id", id))
			return Media{}, false, nil
		}
		return Media{}, false, fmt.Errorf("media resolver failed: %w", err)
	}

	if strings.TrimSpace(media.URL) == "" {
		return Media{}, false, errors.New("invalid media resolver output: resolved media requires a non-empty URL")
	}
	media.ID = id
	return media, true, nil
}

func (s *Session) checkSlot(slot MediaSlot) error {
	sch := s.variant.Schema()
	check := func(id string, kind schema.Kind) error {
		field, ok := sch.Field(id)
		if !ok || field.Kind != kind {
			return fmt.Errorf("%w: %q is not a %s field of %s", schema.ErrUnknownField, id, kind, s.variant.Name())
		}
		return nil
	}

	if err := check(slot.IDField, schema.KindNumber); err != nil {
		return err
	}
	if err := check(slot.URLField, schema.KindAttribute); err != nil {
		return err
	}
	if slot.AltField != "" {
		return check(slot.AltField, schema.KindAttribute)
	}
	return nil
}
