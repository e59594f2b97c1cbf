package num

import "fmt"

// ParseError represents a numeric lexical failure.
type ParseError struct {
	Input string
	Kind  ParseErrKind
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%q: %s", e.Input, e.Kind)
}

// ParseErrKind identifies a parse failure category.
type ParseErrKind uint8

const (
	ParseInvalid ParseErrKind = iota
	ParseEmpty
	ParseBadChar
	ParseMultipleDots
	ParseNoDigits
)

// String returns a stable label for the parse error kind.
func (k ParseErrKind) String() string {
	switch k {
	case ParseEmpty:
		return "empty"
	case ParseBadChar:
		return "bad character"
	case ParseMultipleDots:
		return "multiple dots"
	case ParseNoDigits:
		return "no digits"
	default:
		return "invalid"
	}
}

func parseErr(s string, kind ParseErrKind) *ParseError {
	return &ParseError{Input: s, Kind: kind}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
