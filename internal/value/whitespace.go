package value

import (
	"strings"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// IsXMLWhitespace reports whether b is one of the four XML whitespace bytes.
func IsXMLWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Normalize applies a whiteSpace facet mode to s.
func Normalize(mode corpus.WhiteSpace, s string) string {
	switch mode {
	case corpus.WhiteSpaceReplace:
		return replace(s)
	case corpus.WhiteSpaceCollapse:
		return strings.Join(Fields(s), " ")
	default:
		return s
	}
}

func replace(s string) string {
	if strings.IndexAny(s, "\t\n\r") < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}

// Fields splits s around runs of XML whitespace.
func Fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r < 0x80 && IsXMLWhitespace(byte(r))
	})
}

// TrimXMLWhitespace removes leading and trailing XML whitespace.
func TrimXMLWhitespace(s string) string {
	start, end := 0, len(s)
	for start < end && IsXMLWhitespace(s[start]) {
		start++
	}
	for end > start && IsXMLWhitespace(s[end-1]) {
		end--
	}
	return s[start:end]
}
