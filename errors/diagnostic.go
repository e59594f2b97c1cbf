package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	// SeverityWarning marks an issue that changed nothing in the compiled output.
	SeverityWarning Severity = iota
	// SeverityError marks a recoverable issue: the offending piece was dropped or reverted.
	SeverityError
	// SeverityFatal marks an issue that prevents producing a corpus.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic describes one schema problem found while compiling.
//
//nolint:errname // public API name uses XSD domain term.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	SystemID string
	Line     int
	Column   int
}

// Error formats the diagnostic for display, including code, message, and location.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "diagnostic <nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", d.Code, d.Message))
	if d.SystemID != "" {
		b.WriteString(" in " + d.SystemID)
	}
	if d.Line > 0 {
		if d.Column > 0 {
			b.WriteString(fmt.Sprintf(" at line %d, column %d", d.Line, d.Column))
		} else {
			b.WriteString(fmt.Sprintf(" at line %d", d.Line))
		}
	}
	return b.String()
}

// NewDiagnostic builds a Diagnostic with a code and message.
func NewDiagnostic(sev Severity, code ErrorCode, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: string(code), Message: msg}
}

// NewDiagnosticf formats a message and builds a Diagnostic.
func NewDiagnosticf(sev Severity, code ErrorCode, format string, args ...any) Diagnostic {
	return NewDiagnostic(sev, code, fmt.Sprintf(format, args...))
}

// At returns a copy of d positioned at the given source location.
func (d Diagnostic) At(systemID string, line, column int) Diagnostic {
	d.SystemID = systemID
	d.Line = line
	d.Column = column
	return d
}

// DiagnosticList is an error that wraps one or more diagnostics.
type DiagnosticList []Diagnostic //nolint:errname // public API name.

// Error returns a compact summary of the diagnostics.
func (l DiagnosticList) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Fatal returns the fatal diagnostics of l.
func (l DiagnosticList) Fatal() DiagnosticList {
	var out DiagnosticList
	for _, d := range l {
		if d.Severity == SeverityFatal {
			out = append(out, d)
		}
	}
	return out
}

// AsDiagnostics extracts diagnostics from an error returned by Compile.
func AsDiagnostics(err error) ([]Diagnostic, bool) {
	if err == nil {
		return nil, false
	}
	var list DiagnosticList
	if errors.As(err, &list) {
		return []Diagnostic(list), true
	}
	var listPtr *DiagnosticList
	if errors.As(err, &listPtr) && listPtr != nil {
		return []Diagnostic(*listPtr), true
	}
	return nil, false
}

// Sink receives diagnostics as they are produced.
type Sink func(Diagnostic)

// Collector accumulates diagnostics and forwards each one to an optional sink.
// The zero value is ready to use.
type Collector struct {
	sink  Sink
	list  DiagnosticList
	fatal int
}

// NewCollector returns a collector forwarding to sink, which may be nil.
func NewCollector(sink Sink) *Collector {
	return &Collector{sink: sink}
}

// Report records d and forwards it to the sink.
func (c *Collector) Report(d Diagnostic) {
	c.list = append(c.list, d)
	if d.Severity == SeverityFatal {
		c.fatal++
	}
	if c.sink != nil {
		c.sink(d)
	}
}

// Reportf builds and records a diagnostic.
func (c *Collector) Reportf(sev Severity, code ErrorCode, systemID string, line, column int, format string, args ...any) {
	c.Report(NewDiagnosticf(sev, code, format, args...).At(systemID, line, column))
}

// HasFatal reports whether a fatal diagnostic was recorded.
func (c *Collector) HasFatal() bool { return c.fatal > 0 }

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int { return len(c.list) }

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Collector) Diagnostics() DiagnosticList {
	return append(DiagnosticList(nil), c.list...)
}

// Count returns how many recorded diagnostics carry code.
func (c *Collector) Count(code ErrorCode) int {
	n := 0
	for _, d := range c.list {
		if d.Code == string(code) {
			n++
		}
	}
	return n
}
