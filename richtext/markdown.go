package richtext

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rgonek/gutencard/schema"
)

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
		`[`, `\[`,
		`]`, `\]`,
		`~`, `\~`,
		`<`, `\<`,
		`>`, `\>`,
		`#`, `\#`,
	)
	entityPattern    = regexp.MustCompile(`&(#?[A-Za-z0-9]+;)`)
	listStartPattern = regexp.MustCompile(`^(\d{1,9})([.)])`)
)

// ToMarkdown writes runs as Markdown. Marks shared by adjacent runs stay
// open; code is always the innermost delimiter. Whitespace at the edges of a
// marked run is moved outside its delimiters.
func (c *Converter) ToMarkdown(runs schema.Runs) string {
	var sb strings.Builder
	var active []schema.Mark
	var pending string

	runs = schema.NormalizeRuns(runs)
	useUnderscoreForEm := hasStrongAndEm(runs)

	closeMarks := func(marks []schema.Mark) {
		for i := len(marks) - 1; i >= 0; i-- {
			_, closing := c.delimiters(marks[i], useUnderscoreForEm)
			sb.WriteString(closing)
		}
	}

	for _, run := range runs {
		if run.Type == schema.RunHardBreak {
			closeMarks(active)
			active = nil
			pending = ""
			sb.WriteString("\\\n")
			continue
		}
		if strings.TrimSpace(run.Text) == "" {
			pending += run.Text
			continue
		}

		current := orderMarks(run.Marks)
		body := strings.TrimRightFunc(run.Text, unicode.IsSpace)
		trailing := run.Text[len(body):]

		closing := marksToClose(active, current)
		opening := marksToOpen(active, current)
		closeMarks(closing)
		sb.WriteString(pending)
		if len(opening) > 0 {
			trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
			sb.WriteString(body[:len(body)-len(trimmed)])
			body = trimmed
			for _, mark := range opening {
				delimiter, _ := c.delimiters(mark, useUnderscoreForEm)
				sb.WriteString(delimiter)
			}
		}

		if hasMark(current, schema.MarkCode) {
			sb.WriteString(body)
		} else {
			written := sb.String()
			sb.WriteString(escapeText(body, written == "" || strings.HasSuffix(written, "\n")))
		}
		pending = trailing
		active = current
	}
	closeMarks(active)
	sb.WriteString(pending)

	return sb.String()
}

func escapeText(value string, atLineStart bool) string {
	escaped := markdownEscaper.Replace(value)
	escaped = entityPattern.ReplaceAllString(escaped, "&amp;$1")
	if atLineStart {
		switch {
		case strings.HasPrefix(escaped, "- "), strings.HasPrefix(escaped, "+ "), strings.HasPrefix(escaped, "= "):
			escaped = `\` + escaped
		case listStartPattern.MatchString(escaped):
			escaped = listStartPattern.ReplaceAllString(escaped, `$1\$2`)
		}
	}
	return escaped
}

func (c *Converter) delimiters(mark schema.Mark, useUnderscoreForEm bool) (string, string) {
	switch mark.Type {
	case schema.MarkStrong:
		return "**", "**"
	case schema.MarkEm:
		if useUnderscoreForEm {
			return "_", "_"
		}
		return "*", "*"
	case schema.MarkStrike:
		return "~~", "~~"
	case schema.MarkCode:
		return "`", "`"
	case schema.MarkUnderline:
		if c.config.UnderlineStyle == HTMLMarkIgnore {
			return "", ""
		}
		return "<u>", "</u>"
	case schema.MarkSub, schema.MarkSup:
		if c.config.SubSupStyle == HTMLMarkIgnore {
			return "", ""
		}
		return "<" + mark.Type + ">", "</" + mark.Type + ">"
	case schema.MarkLink:
		href := mark.Attrs["href"]
		if href == "" {
			return "", ""
		}
		if strings.ContainsAny(href, " ()<>") {
			href = "<" + href + ">"
		}

		closing := "](" + href
		if title := mark.Attrs["title"]; title != "" {
			escapedTitle := strings.ReplaceAll(title, "\\", "\\\\")
			escapedTitle = strings.ReplaceAll(escapedTitle, "\"", "\\\"")
			closing += " \"" + escapedTitle + "\""
		}
		return "[", closing + ")"
	default:
		return "", ""
	}
}

// orderMarks moves code marks last; a code span cannot contain other
// delimiters.
func orderMarks(marks []schema.Mark) []schema.Mark {
	if !hasMark(marks, schema.MarkCode) {
		return marks
	}
	ordered := make([]schema.Mark, 0, len(marks))
	var code []schema.Mark
	for _, mark := range marks {
		if mark.Type == schema.MarkCode {
			code = append(code, mark)
			continue
		}
		ordered = append(ordered, mark)
	}
	return append(ordered, code...)
}

func hasMark(marks []schema.Mark, markType string) bool {
	for _, mark := range marks {
		if mark.Type == markType {
			return true
		}
	}
	return false
}

// hasStrongAndEm reports whether any run carries both strong and em, in
// which case em is written with underscores to keep delimiters distinct.
func hasStrongAndEm(runs schema.Runs) bool {
	for _, run := range runs {
		if hasMark(run.Marks, schema.MarkStrong) && hasMark(run.Marks, schema.MarkEm) {
			return true
		}
	}
	return false
}
