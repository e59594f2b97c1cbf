package derive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// errPatternUnsupported marks a valid XSD pattern that has no RE2 equivalent.
var errPatternUnsupported = errors.New("pattern not supported by RE2")

const (
	nameStartClass = `:A-Z_a-z\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{2FF}\x{370}-\x{37D}\x{37F}-\x{1FFF}` +
		`\x{200C}-\x{200D}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}` +
		`\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	nameCharClass  = nameStartClass + `\-.0-9\x{B7}\x{300}-\x{36F}\x{203F}-\x{2040}`
	spaceClass     = `\x20\t\n\r`
	nonWordClass   = `\p{P}\p{Z}\p{C}`
	digitClass     = `\p{Nd}`
	nonDigitClass  = `\P{Nd}`
	anyButNewlines = `[^\n\r]`
)

// classEscape is the translation of a multi-character escape. inClass is the
// text usable inside a bracket expression; it is empty when the escape is a
// complement that RE2 cannot nest.
type classEscape struct {
	outside string
	inClass string
}

var classEscapes = map[rune]classEscape{
	'i': {outside: "[" + nameStartClass + "]", inClass: nameStartClass},
	'I': {outside: "[^" + nameStartClass + "]"},
	'c': {outside: "[" + nameCharClass + "]", inClass: nameCharClass},
	'C': {outside: "[^" + nameCharClass + "]"},
	'd': {outside: digitClass, inClass: digitClass},
	'D': {outside: nonDigitClass, inClass: nonDigitClass},
	's': {outside: "[" + spaceClass + "]", inClass: spaceClass},
	'S': {outside: "[^" + spaceClass + "]"},
	'w': {outside: "[^" + nonWordClass + "]"},
	'W': {outside: "[" + nonWordClass + "]", inClass: nonWordClass},
}

// singleEscapes are the XSD single-character escapes with their RE2 text.
var singleEscapes = map[rune]string{
	'n': `\n`, 'r': `\r`, 't': `\t`,
	'\\': `\\`, '|': `\|`, '.': `\.`, '-': `\-`, '^': `\^`, '?': `\?`,
	'*': `\*`, '+': `\+`, '{': `\{`, '}': `\}`, '(': `\(`, ')': `\)`,
	'[': `\[`, ']': `\]`,
}

// patternTranslator rewrites an XSD regular expression into RE2 syntax. XSD
// patterns are implicitly anchored and have no anchors of their own.
type patternTranslator struct {
	pattern string
	pos     int
	out     strings.Builder
	depth   int
}

// translatePattern returns the anchored RE2 form of an XSD pattern. The error
// wraps errPatternUnsupported when the pattern is valid but not expressible.
func translatePattern(pattern string) (string, error) {
	t := &patternTranslator{pattern: pattern}
	if err := t.translate(); err != nil {
		return "", err
	}
	return `^(?:` + t.out.String() + `)$`, nil
}

func (t *patternTranslator) next() rune {
	r, size := utf8.DecodeRuneInString(t.pattern[t.pos:])
	t.pos += size
	return r
}

func (t *patternTranslator) peek() (rune, bool) {
	if t.pos >= len(t.pattern) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(t.pattern[t.pos:])
	return r, true
}

func (t *patternTranslator) syntaxError(format string, args ...any) error {
	return fmt.Errorf("pattern-syntax-error: %s in %q", fmt.Sprintf(format, args...), t.pattern)
}

func (t *patternTranslator) translate() error {
	for t.pos < len(t.pattern) {
		r := t.next()
		switch r {
		case '\\':
			if err := t.escape(false); err != nil {
				return err
			}
		case '[':
			if err := t.class(); err != nil {
				return err
			}
		case '.':
			t.out.WriteString(anyButNewlines)
		case '^', '$':
			t.out.WriteByte('\\')
			t.out.WriteRune(r)
		case '(':
			if next, ok := t.peek(); ok && next == '?' {
				return t.syntaxError("group modifiers are not allowed")
			}
			t.depth++
			t.out.WriteString("(?:")
		case ')':
			if t.depth == 0 {
				return t.syntaxError("unmatched ')'")
			}
			t.depth--
			t.out.WriteByte(')')
		case '{':
			if err := t.quantifier(); err != nil {
				return err
			}
		case ']', '}':
			return t.syntaxError("unescaped %q", r)
		case '?', '*', '+':
			t.out.WriteRune(r)
			if next, ok := t.peek(); ok && next == '?' {
				return t.syntaxError("lazy quantifiers are not allowed")
			}
		default:
			t.out.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if t.depth > 0 {
		return t.syntaxError("unclosed '('")
	}
	return nil
}

// quantifier copies {n}, {n,} or {n,m} after checking its shape.
func (t *patternTranslator) quantifier() error {
	end := strings.IndexByte(t.pattern[t.pos:], '}')
	if end < 0 {
		return t.syntaxError("unclosed quantifier")
	}
	body := t.pattern[t.pos : t.pos+end]
	lo, hi, hasComma := strings.Cut(body, ",")
	if !allDigits(lo) || lo == "" || (hasComma && hi != "" && !allDigits(hi)) {
		return t.syntaxError("invalid quantifier {%s}", body)
	}
	t.pos += end + 1
	t.out.WriteString("{" + body + "}")
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// escape translates the escape after a backslash, inside or outside a class.
func (t *patternTranslator) escape(inClass bool) error {
	if t.pos >= len(t.pattern) {
		return t.syntaxError("trailing backslash")
	}
	r := t.next()
	if s, ok := singleEscapes[r]; ok {
		t.out.WriteString(s)
		return nil
	}
	if ce, ok := classEscapes[r]; ok {
		if !inClass {
			t.out.WriteString(ce.outside)
			return nil
		}
		if ce.inClass == "" {
			return fmt.Errorf("\\%c inside a character class: %w", r, errPatternUnsupported)
		}
		t.out.WriteString(ce.inClass)
		return nil
	}
	switch r {
	case 'p', 'P':
		return t.property(r)
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return t.syntaxError("back references are not allowed")
	}
	return t.syntaxError("unknown escape \\%c", r)
}

// property copies a \p{..} or \P{..} category escape. Unicode block names
// (IsXxx) have no RE2 form.
func (t *patternTranslator) property(r rune) error {
	if next, ok := t.peek(); !ok || next != '{' {
		return t.syntaxError("\\%c must be followed by {", r)
	}
	end := strings.IndexByte(t.pattern[t.pos:], '}')
	if end < 0 {
		return t.syntaxError("unclosed \\%c{", r)
	}
	name := t.pattern[t.pos+1 : t.pos+end]
	t.pos += end + 1
	if strings.HasPrefix(name, "Is") {
		return fmt.Errorf("block escape \\%c{%s}: %w", r, name, errPatternUnsupported)
	}
	if name == "" {
		return t.syntaxError("empty category")
	}
	t.out.WriteString(`\` + string(r) + `{` + name + `}`)
	return nil
}

// class translates a bracket expression up to its closing bracket.
func (t *patternTranslator) class() error {
	t.out.WriteByte('[')
	if next, ok := t.peek(); ok && next == '^' {
		t.next()
		t.out.WriteByte('^')
	}
	first := true
	for {
		r, ok := t.peek()
		if !ok {
			return t.syntaxError("unclosed character class")
		}
		t.next()
		switch {
		case r == ']' && !first:
			t.out.WriteByte(']')
			return nil
		case r == '\\':
			if err := t.escape(true); err != nil {
				return err
			}
		case r == '-':
			next, ok := t.peek()
			switch {
			case ok && next == '[':
				return fmt.Errorf("character class subtraction: %w", errPatternUnsupported)
			case first || (ok && next == ']'):
				t.out.WriteString(`\-`)
			default:
				t.out.WriteByte('-')
			}
		case r == '[':
			return t.syntaxError("unescaped '[' in character class")
		default:
			t.out.WriteString(regexp.QuoteMeta(string(r)))
		}
		first = false
	}
}
