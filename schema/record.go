package schema

// Record maps field identifiers to values. A record produced by this module
// always holds an entry for every field of its schema.
type Record map[string]Value

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	cloned := make(Record, len(r))
	for id, value := range r {
		cloned[id] = CloneValue(value)
	}
	return cloned
}

// Complete returns a copy of r holding an entry for every field of s. Missing
// entries and entries whose type does not fit the field kind are taken from
// defaults; entries for unknown fields are dropped.
func (r Record) Complete(s *Schema, defaults Record) Record {
	out := make(Record, s.Len())
	for _, field := range s.Fields() {
		if value, ok := r[field.ID]; ok && field.Kind.Accepts(value) {
			out[field.ID] = CloneValue(value)
			continue
		}
		if value, ok := defaults[field.ID]; ok && field.Kind.Accepts(value) {
			out[field.ID] = CloneValue(value)
			continue
		}
		out[field.ID] = field.Kind.zeroValue()
	}
	return out
}

// Text returns the string held by a plain_text, attribute or enum field.
func (r Record) Text(id string) string {
	switch v := r[id].(type) {
	case Text:
		return string(v)
	case Enum:
		return string(v)
	default:
		return ""
	}
}

// Runs returns a copy of the runs held by a rich_run field.
func (r Record) Runs(id string) Runs {
	v, _ := r[id].(Runs)
	return v.Clone()
}

// Style returns a copy of the style held by a style_object field.
func (r Record) Style(id string) Style {
	v, _ := r[id].(Style)
	return v.Clone()
}

// Number returns the value held by a number field.
func (r Record) Number(id string) int64 {
	v, _ := r[id].(Number)
	return int64(v)
}

// Enum returns the value held by an enum field.
func (r Record) Enum(id string) string {
	v, _ := r[id].(Enum)
	return string(v)
}

// IsEmpty reports whether v carries no content: an empty string, an empty
// run sequence (or one without text) or an empty style.
func IsEmpty(v Value) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case Text:
		return typed == ""
	case Enum:
		return typed == ""
	case Runs:
		for _, run := range typed {
			if run.Type == RunHardBreak || run.Text != "" {
				return false
			}
		}
		return true
	case Style:
		return len(typed) == 0
	default:
		return false
	}
}
