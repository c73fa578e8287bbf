// Package session holds the editing state of one block instance while it is
// being edited.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rgonek/gutencard/schema"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by operations on a finished session.
var ErrSessionClosed = errors.New("session closed")

// Option customizes a session.
type Option func(*Session)

// WithLogger sets the logger used to report ignored mutations.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// Session owns the working record of one block instance. Sessions are meant
// for a single caller; distinct sessions share no state.
type Session struct {
	id         string
	variant    *schema.Variant
	defaults   schema.Record
	record     schema.Record
	dirty      bool
	closed     bool
	resolver   MediaResolver
	resolution ResolutionMode
	log        *zap.Logger
}

// New starts a session from the variant's default record.
func New(variant *schema.Variant, opts ...Option) *Session {
	return Open(variant, nil, opts...)
}

// Open starts a session from an existing record, typically one parsed from
// stored markup. Fields missing from rec are taken from the defaults.
func Open(variant *schema.Variant, rec schema.Record, opts ...Option) *Session {
	defaults := variant.Defaults()
	s := &Session{
		id:         uuid.NewString(),
		variant:    variant,
		defaults:   defaults,
		record:     rec.Complete(variant.Schema(), defaults),
		resolution: ResolutionBestEffort,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("session").With(
		zap.String("session", s.id),
		zap.String("variant", variant.Name()))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Variant returns the variant being edited.
func (s *Session) Variant() *schema.Variant {
	return s.variant
}

// SetField replaces the value of a field. Style values are partial updates
// merged into the current style; keys the field's default does not declare
// and values that are not a single style value (such as "red;top:0") are
// dropped, and blank values become schema.None. Plain text is trimmed. Unknown fields, values of
// the wrong kind and enum values outside the allowed set are ignored.
func (s *Session) SetField(id string, value schema.Value) {
	if s.closed {
		s.log.Warn("Ignored update on closed session", zap.String("field", id))
		return
	}
	field, ok := s.variant.Schema().Field(id)
	if !ok {
		s.log.Warn("Ignored update of unknown field", zap.String("field", id))
		return
	}
	if !field.Kind.Accepts(value) {
		s.log.Warn("Ignored update with wrong value type",
			zap.String("field", id),
			zap.String("kind", string(field.Kind)),
			zap.String("type", fmt.Sprintf("%T", value)))
		return
	}

	switch v := value.(type) {
	case schema.Style:
		s.record[id] = s.mergeStyle(id, v)
	case schema.Runs:
		s.record[id] = schema.NormalizeRuns(v)
	case schema.Text:
		if field.Kind == schema.KindPlainText {
			v = schema.Text(strings.TrimSpace(string(v)))
		}
		s.record[id] = v
	case schema.Enum:
		if !field.Allows(string(v)) {
			s.log.Warn("Ignored enum value outside allowed set", zap.String("field", id), zap.String("value", string(v)))
			return
		}
		s.record[id] = v
	default:
		s.record[id] = schema.CloneValue(v)
	}
	s.dirty = true
	s.log.Debug("Updated field", zap.String("field", id))
}

func (s *Session) mergeStyle(id string, partial schema.Style) schema.Style {
	shape := s.defaults.Style(id)
	accepted := make(schema.Style, len(partial))
	for key, value := range partial {
		if _, ok := shape[key]; !ok {
			s.log.Warn("Dropped style key outside field shape", zap.String("field", id), zap.String("key", key))
			continue
		}
		if !schema.ValidStyleValue(value) {
			s.log.Warn("Dropped style value that is not a single declaration value",
				zap.String("field", id), zap.String("key", key), zap.String("value", value))
			continue
		}
		accepted[key] = value
	}
	return s.record.Style(id).Merge(accepted)
}

// SetText sets a text value. Rich text fields receive a single unmarked run.
func (s *Session) SetText(id, text string) {
	if field, ok := s.variant.Schema().Field(id); ok && field.Kind == schema.KindRichRun {
		s.SetField(id, schema.Runs{schema.TextRun(text)})
		return
	}
	s.SetField(id, schema.Text(text))
}

// SetRuns sets the runs of a rich text field.
func (s *Session) SetRuns(id string, runs schema.Runs) {
	s.SetField(id, runs)
}

// SetNumber sets a number field.
func (s *Session) SetNumber(id string, n int64) {
	s.SetField(id, schema.Number(n))
}

// SetStyle sets one key of a style field, keeping the other keys.
func (s *Session) SetStyle(id, key, value string) {
	s.SetField(id, schema.Style{key: value})
}

// ClearField resets a field to its default.
func (s *Session) ClearField(id string) {
	if s.closed {
		s.log.Warn("Ignored update on closed session", zap.String("field", id))
		return
	}
	value, ok := s.defaults[id]
	if !ok {
		s.log.Warn("Ignored reset of unknown field", zap.String("field", id))
		return
	}
	s.record[id] = schema.CloneValue(value)
	s.dirty = true
}

// SetLayout sets an enum field. Values outside the allowed set fail with
// schema.ErrInvalidEnumValue and leave the record unchanged.
func (s *Session) SetLayout(id, value string) error {
	if s.closed {
		return ErrSessionClosed
	}
	field, ok := s.variant.Schema().Field(id)
	if !ok || field.Kind != schema.KindEnum {
		return fmt.Errorf("%w: %q is not a layout field of %s", schema.ErrUnknownField, id, s.variant.Name())
	}
	if !field.Allows(value) {
		return fmt.Errorf("%w: %q for %s (allowed: %s)", schema.ErrInvalidEnumValue, value, id, strings.Join(field.Options, ", "))
	}
	s.record[id] = schema.Enum(value)
	s.dirty = true
	s.log.Debug("Updated layout", zap.String("field", id), zap.String("value", value))
	return nil
}

// CurrentRecord returns a snapshot of the working record. Changing the
// snapshot does not affect the session.
func (s *Session) CurrentRecord() schema.Record {
	return s.record.Clone()
}

// Dirty reports whether the record changed since the session started.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Closed reports whether Finish was called.
func (s *Session) Closed() bool {
	return s.closed
}

// Finish closes the session and returns the final record. Later updates are
// ignored.
func (s *Session) Finish() schema.Record {
	if !s.closed {
		s.closed = true
		s.log.Debug("Finished session", zap.Bool("dirty", s.dirty))
	}
	return s.record.Clone()
}
