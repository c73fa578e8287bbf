package schema

import (
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ValidStyleValue reports whether value can be written as the value of one
// style declaration. Values that would end the declaration, open a block or
// leave a function or string unterminated are rejected. Blank values are
// valid; they normalize to None.
func ValidStyleValue(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}

	lexer := css.NewLexer(parse.NewInput(strings.NewReader(value)))
	depth := 0
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return depth == 0 && lexer.Err() == io.EOF
		case css.SemicolonToken, css.ColonToken,
			css.LeftBraceToken, css.RightBraceToken,
			css.BadStringToken, css.BadURLToken,
			css.CDOToken, css.CDCToken, css.CommentToken:
			return false
		case css.StringToken:
			if len(data) < 2 || data[len(data)-1] != data[0] {
				return false
			}
		case css.URLToken:
			if len(data) == 0 || data[len(data)-1] != ')' {
				return false
			}
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth == 0 {
				return false
			}
			depth--
		}
	}
}
