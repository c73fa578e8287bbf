package fragment

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/rgonek/gutencard/schema"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// cssProperty translates a style key to its presentation property, for
// example textAlign to text-align.
func cssProperty(key string) string {
	var sb strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// styleKey translates a presentation property back to a style key, for
// example background-color to backgroundColor.
func styleKey(property string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(property)), "-")
	var sb strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 || sb.Len() == 0 {
			sb.WriteString(part)
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// styleDeclarations renders style as declarations in sorted key order.
// Values that are not a single declaration value are left out.
func styleDeclarations(style schema.Style) []string {
	decls := make([]string, 0, len(style))
	for _, key := range style.Keys() {
		value := strings.TrimSpace(style[key])
		if value == "" || !schema.ValidStyleValue(value) {
			continue
		}
		decls = append(decls, cssProperty(key)+":"+value)
	}
	return decls
}

// parseInlineStyle reads the declarations of a style attribute. Property
// names are lower-cased; values keep their token text.
func parseInlineStyle(raw string) map[string]string {
	props := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return props
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader([]byte(raw))), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return props
		case css.DeclarationGrammar:
			value := declarationValue(parser.Values())
			if value != "" {
				props[strings.ToLower(string(data))] = value
			}
		}
	}
}

func declarationValue(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
