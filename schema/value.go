package schema

import (
	"maps"
	"slices"
	"strings"
)

// None is the literal an unspecified style key is normalized to.
const None = "none"

// Value is the value held by one record field. The concrete type follows the
// field kind: Text for plain_text and attribute, Runs for rich_run, Style for
// style_object, Number for number and Enum for enum.
type Value interface {
	clone() Value
}

// Text is a plain string value.
type Text string

// Runs is an ordered sequence of inline runs.
type Runs []Run

// Style is a small fixed-shape mapping of presentation keys (camelCase, e.g.
// color, textAlign, backgroundColor) to values.
type Style map[string]string

// Number is a numeric value such as a media id.
type Number int64

// Enum is one value of a field's allowed set.
type Enum string

func (v Text) clone() Value   { return v }
func (v Number) clone() Value { return v }
func (v Enum) clone() Value   { return v }

func (v Runs) clone() Value {
	return v.Clone()
}

func (v Style) clone() Value {
	return v.Clone()
}

// Run types.
const (
	RunText      = "text"
	RunHardBreak = "hardBreak"
)

// Mark types.
const (
	MarkStrong    = "strong"
	MarkEm        = "em"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkUnderline = "underline"
	MarkSub       = "sub"
	MarkSup       = "sup"
	MarkLink      = "link"
)

// Run is one inline span of rich text.
type Run struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Marks []Mark `json:"marks,omitempty"`
}

// Mark is formatting applied to a run (e.g. strong, em, link).
type Mark struct {
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// TextRun returns a text run with the given marks.
func TextRun(text string, marks ...Mark) Run {
	run := Run{Type: RunText, Text: text}
	if len(marks) > 0 {
		run.Marks = marks
	}
	return run
}

// HardBreak returns a line break run.
func HardBreak() Run {
	return Run{Type: RunHardBreak}
}

// Link returns a link mark pointing at href.
func Link(href string) Mark {
	return Mark{Type: MarkLink, Attrs: map[string]string{"href": href}}
}

// Equal reports whether two marks have the same type and attributes.
func (m Mark) Equal(other Mark) bool {
	return m.Type == other.Type && maps.Equal(m.Attrs, other.Attrs)
}

// Clone returns a deep copy of the mark.
func (m Mark) Clone() Mark {
	cloned := m
	cloned.Attrs = maps.Clone(m.Attrs)
	return cloned
}

// MarksEqual reports whether two mark lists are equal, order included.
func MarksEqual(left, right []Mark) bool {
	return slices.EqualFunc(left, right, Mark.Equal)
}

// Clone returns a deep copy of the run.
func (r Run) Clone() Run {
	cloned := r
	if r.Marks != nil {
		cloned.Marks = make([]Mark, len(r.Marks))
		for i, mark := range r.Marks {
			cloned.Marks[i] = mark.Clone()
		}
	}
	return cloned
}

// Clone returns a deep copy of the sequence.
func (v Runs) Clone() Runs {
	if v == nil {
		return nil
	}
	cloned := make(Runs, len(v))
	for i, run := range v {
		cloned[i] = run.Clone()
	}
	return cloned
}

// PlainText concatenates the text of all runs, hard breaks become newlines.
func (v Runs) PlainText() string {
	var sb strings.Builder
	for _, run := range v {
		if run.Type == RunHardBreak {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// NormalizeRuns returns the canonical form of runs: empty text runs are
// dropped, repeated marks on a run are removed, adjacent text runs with equal
// marks are merged, unknown run types become text runs and an empty result
// is nil.
func NormalizeRuns(runs Runs) Runs {
	var out Runs
	for _, run := range runs {
		out = AppendRun(out, run)
	}
	return out
}

// AppendRun appends next to runs, merging it into the last run when both are
// text runs with the same marks.
func AppendRun(runs Runs, next Run) Runs {
	next = next.Clone()
	if next.Type != RunHardBreak {
		next.Type = RunText
		if next.Text == "" {
			return runs
		}
		next.Marks = uniqueMarks(next.Marks)
	} else {
		next.Text = ""
		next.Marks = nil
	}

	if len(runs) == 0 {
		return append(runs, next)
	}

	last := &runs[len(runs)-1]
	if last.Type == RunText && next.Type == RunText && MarksEqual(last.Marks, next.Marks) {
		last.Text += next.Text
		return runs
	}

	return append(runs, next)
}

// uniqueMarks drops repeated marks, keeping the first occurrence. An empty
// result is nil.
func uniqueMarks(marks []Mark) []Mark {
	var out []Mark
	for _, mark := range marks {
		if !slices.ContainsFunc(out, mark.Equal) {
			out = append(out, mark)
		}
	}
	return out
}

// Clone returns a copy of the style.
func (v Style) Clone() Style {
	if v == nil {
		return nil
	}
	return maps.Clone(v)
}

// Keys returns the style keys in sorted order.
func (v Style) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// Merge returns a copy of v with the keys of partial applied. Keys absent from
// partial keep their current value. Values are passed through Normalize.
func (v Style) Merge(partial Style) Style {
	merged := v.Clone()
	if merged == nil {
		merged = Style{}
	}
	for key, value := range partial {
		merged[key] = Normalize(value)
	}
	return merged
}

// Normalize maps an unspecified value (empty or blank) to None and returns
// any other value unchanged.
func Normalize(value string) string {
	if strings.TrimSpace(value) == "" {
		return None
	}
	return value
}

// CloneValue returns a deep copy of v.
func CloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.clone()
}
