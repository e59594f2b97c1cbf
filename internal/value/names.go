package value

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var languagePattern = regexp.MustCompile(`^[A-Za-z]{1,8}(-[A-Za-z0-9]{1,8})*$`)

// IsNCName reports whether s matches the NCName production.
func IsNCName(s string) bool {
	return !strings.Contains(s, ":") && IsName(s)
}

// IsName reports whether s matches the XML Name production.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !isNameStartChar(r) {
				return false
			}
		} else if !isNameChar(r) {
			return false
		}
	}
	return true
}

// IsNMTOKEN reports whether s matches the Nmtoken production.
func IsNMTOKEN(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == utf8.RuneError || !isNameChar(r) {
			return false
		}
	}
	return true
}

// ValidateToken checks the xs:token lexical space.
func ValidateToken(s string) error {
	if s == "" {
		return nil
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return fmt.Errorf("token cannot have leading or trailing spaces")
	}
	if strings.Contains(s, "  ") {
		return fmt.Errorf("token cannot have consecutive spaces")
	}
	if strings.ContainsAny(s, "\t\n\r") {
		return fmt.Errorf("token cannot contain CR, LF, or Tab")
	}
	return nil
}

// ValidateLanguage checks the xs:language lexical space.
func ValidateLanguage(s string) error {
	if !languagePattern.MatchString(s) {
		return fmt.Errorf("invalid language tag %q", s)
	}
	return nil
}

// ValidateAnyURI rejects control characters, characters excluded from URI
// references, and malformed percent escapes.
func ValidateAnyURI(s string) error {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 || b == 0x7f {
			return fmt.Errorf("anyURI contains control characters")
		}
		switch b {
		case '\\', '{', '}', '|', '^', '`':
			return fmt.Errorf("anyURI contains invalid character %q", b)
		case '%':
			if i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2]) {
				return fmt.Errorf("anyURI contains invalid percent-encoding")
			}
			i += 2
		}
	}
	return nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isNameStartChar(r rune) bool {
	return r == ':' || r == '_' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0xC0 && r <= 0xD6) ||
		(r >= 0xD8 && r <= 0xF6) ||
		(r >= 0xF8 && r <= 0x2FF) ||
		(r >= 0x370 && r <= 0x37D) ||
		(r >= 0x37F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) ||
		r == '-' || r == '.' ||
		(r >= '0' && r <= '9') ||
		r == 0xB7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}
