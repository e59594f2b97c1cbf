// Command xsdcorpus compiles XML Schema documents into a corpus and reports
// diagnostics.
//
// Usage:
//
//	# Compile schemas into one corpus and print node counts
//	xsdcorpus compile schema.xsd other.xsd
//
//	# Print declarations and content-model head tables
//	xsdcorpus dump schema.xsd
//
//	# Compile each root on its own, in parallel
//	xsdcorpus check --jobs 4 a.xsd b.xsd c.xsd
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(runWithArgs(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks errors caused by invalid arguments.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// errFailed reports that the command ran and already printed the problems
// it found.
var errFailed = errors.New("schema compilation failed")

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	case errors.As(err, new(usageError)):
		_ = writef(stderr, "error: %v\n", err)
		_ = writef(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		return 2
	default:
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
