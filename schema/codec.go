package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalRecord encodes rec as a JSON object whose keys follow the schema's
// field order. Fields missing from rec are encoded with their zero value.
func MarshalRecord(rec Record, s *Schema) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field id %q: %w", field.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, ok := rec[field.ID]
		if !ok || !field.Kind.Accepts(value) {
			value = field.Kind.zeroValue()
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", field.ID, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes a JSON object produced by MarshalRecord. Fields
// absent from data take their value from defaults. Unknown keys are an error.
func UnmarshalRecord(data []byte, s *Schema, defaults Record) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse record JSON: %w", err)
	}

	rec := make(Record, len(raw))
	for id, message := range raw {
		field, ok := s.Field(id)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownField, id)
		}
		value, err := decodeValue(field, message)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", id, err)
		}
		rec[id] = value
	}

	return rec.Complete(s, defaults), nil
}

// ParseValue converts the textual form of a value, as typed on a command
// line, into a value for field. Rich runs are taken as a single plain run,
// styles as "key=value" pairs separated by ";" and numbers in base 10.
func ParseValue(field FieldSpec, raw string) (Value, error) {
	switch field.Kind {
	case KindPlainText, KindAttribute:
		return Text(raw), nil
	case KindRichRun:
		return NormalizeRuns(Runs{TextRun(raw)}), nil
	case KindEnum:
		return Enum(strings.TrimSpace(raw)), nil
	case KindNumber:
		var n int64
		if _, err := fmt.Sscan(strings.TrimSpace(raw), &n); err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return Number(n), nil
	case KindStyleObject:
		style := Style{}
		for _, pair := range strings.Split(raw, ";") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid style pair %q: expected key=value", pair)
			}
			style[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		return style, nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", field.Kind)
	}
}

func decodeValue(field FieldSpec, message json.RawMessage) (Value, error) {
	switch field.Kind {
	case KindPlainText, KindAttribute:
		var v string
		if err := json.Unmarshal(message, &v); err != nil {
			return nil, err
		}
		return Text(v), nil
	case KindRichRun:
		var v Runs
		if err := json.Unmarshal(message, &v); err != nil {
			return nil, err
		}
		return NormalizeRuns(v), nil
	case KindStyleObject:
		var v Style
		if err := json.Unmarshal(message, &v); err != nil {
			return nil, err
		}
		if v == nil {
			v = Style{}
		}
		return v, nil
	case KindNumber:
		var v int64
		if err := json.Unmarshal(message, &v); err != nil {
			return nil, err
		}
		return Number(v), nil
	case KindEnum:
		var v string
		if err := json.Unmarshal(message, &v); err != nil {
			return nil, err
		}
		if !field.Allows(v) {
			return nil, fmt.Errorf("%w %q", ErrInvalidEnumValue, v)
		}
		return Enum(v), nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", field.Kind)
	}
}
