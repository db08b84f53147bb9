package script

import "strings"

// kwPrefix marks a string literal that stood for a :keyword in the source.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene script source into something the zygomys
// reader accepts:
//
//   - :keyword becomes the string literal "__kw_keyword"
//   - kebab-case identifiers become snake_case (top-radius -> top_radius)
//   - ; and ;; line comments become // comments
//
// String literals ("..." and `...`) pass through untouched.
func preprocessSource(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			i = copyQuoted(&out, src, i, '"', true)
		case c == '`':
			i = copyQuoted(&out, src, i, '`', false)
		case c == ';':
			out.WriteString("//")
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out.WriteByte(src[i])
				i++
			}
		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out.WriteString(":=")
			i += 2
		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKeywordChar(src[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(src[i+1 : j])
			out.WriteByte('"')
			i = j
		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyQuoted copies the literal starting at src[start] up to and including
// its closing quote and returns the index just past it.
func copyQuoted(out *strings.Builder, src string, start int, quote byte, escapes bool) int {
	out.WriteByte(quote)
	i := start + 1
	for i < len(src) && src[i] != quote {
		if escapes && src[i] == '\\' && i+1 < len(src) {
			out.WriteString(src[i : i+2])
			i += 2
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	if i < len(src) {
		out.WriteByte(quote)
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
