// Package shell splits a line of interactive input into an argument vector.
//
// The grammar is a small subset of POSIX shell word splitting:
//
//	arg_list     := arg (whitespace+ arg)*
//	arg          := dquoted | squoted | bare
//	dquoted      := '"' (escaped_char | not('\' or '"'))* '"'
//	squoted      := '\'' (escaped_char | not('\' or '\''))* '\''
//	bare         := not(space or tab)+
//	escaped_char := '\\' ('\\' | '"' | '\'')
//
// Quotes only open a quoted argument at the start of a token. Inside a bare token
// quote characters and backslashes are literal.
package shell

import (
	"fmt"
	"strings"
)

// ParseError reports input that the argument grammar cannot consume.
type ParseError struct {
	Line   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse arguments at column %d: %s", e.Offset+1, e.Reason)
}

// Tokenize splits line into arguments. Empty or blank input yields an empty slice.
// Tokenization fails as a whole: on error no partial result is returned.
func Tokenize(line string) ([]string, error) {
	tokens := []string{}
	pos := 0

	for {
		pos = skipSeparators(line, pos)
		if pos >= len(line) {
			return tokens, nil
		}

		var (
			token string
			err   error
		)
		switch line[pos] {
		case '"', '\'':
			token, pos, err = scanQuoted(line, pos)
			if err != nil {
				return nil, err
			}
			if pos < len(line) && !isSeparator(line[pos]) {
				return nil, &ParseError{Line: line, Offset: pos, Reason: "unexpected character after closing quote"}
			}
		default:
			start := pos
			for pos < len(line) && !isSeparator(line[pos]) {
				pos++
			}
			token = line[start:pos]
		}
		tokens = append(tokens, token)
	}
}

// scanQuoted reads a quoted argument starting at the opening quote and returns the
// unescaped value and the offset just past the closing quote.
func scanQuoted(line string, start int) (string, int, error) {
	quote := line[start]
	var b strings.Builder

	for pos := start + 1; pos < len(line); pos++ {
		c := line[pos]
		switch {
		case c == quote:
			return b.String(), pos + 1, nil
		case c == '\\':
			if pos+1 >= len(line) {
				return "", 0, &ParseError{Line: line, Offset: pos, Reason: "unterminated escape sequence"}
			}
			next := line[pos+1]
			if !isEscapable(next) {
				return "", 0, &ParseError{
					Line:   line,
					Offset: pos,
					Reason: fmt.Sprintf("invalid escape sequence \\%c", next),
				}
			}
			b.WriteByte(next)
			pos++
		default:
			b.WriteByte(c)
		}
	}

	return "", 0, &ParseError{Line: line, Offset: start, Reason: fmt.Sprintf("unterminated %c quote", quote)}
}

// Quote renders s as a double-quoted argument that Tokenize reads back as s.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// Join quotes every argument and joins them with single spaces.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}

func skipSeparators(line string, pos int) int {
	for pos < len(line) && isSeparator(line[pos]) {
		pos++
	}
	return pos
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t'
}

func isEscapable(c byte) bool {
	return c == '\\' || c == '"' || c == '\''
}
