package main

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/xsdcorpus"
	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

func newCompileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <schema>...",
		Short: "Compile schemas into one corpus and print node counts",
		Long: `Compile every schema root into a single corpus. Diagnostics are written to
stderr as they are found; the command fails when the corpus cannot be built.`,
		Args: requireSchemas,
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := a.compile(args, a.printDiagnostic)
			if err != nil {
				return failure(err)
			}
			return writeStats(a.stdout, c.Stats(), len(c.Diagnostics()))
		},
	}
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <schema>...",
		Short: "Print declarations and content-model head tables",
		Args:  requireSchemas,
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := a.compile(args, a.printDiagnostic)
			if err != nil {
				return failure(err)
			}
			writeDump(a.stdout, c)
			return nil
		},
	}
}

func (a *app) compile(paths []string, sink xsderrors.Sink) (*xsdcorpus.Corpus, error) {
	set := xsdcorpus.NewSchemaSet(a.options().WithSink(sink))
	for _, p := range paths {
		if err := addRoot(set, p); err != nil {
			return nil, err
		}
	}
	return set.Compile()
}

// failure maps a compile error to the command result. Diagnostics were
// already printed by the sink.
func failure(err error) error {
	if _, ok := xsderrors.AsDiagnostics(err); ok {
		return errFailed
	}
	return err
}
