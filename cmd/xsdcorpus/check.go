package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

type checkResult struct {
	diagnostics []xsderrors.Diagnostic
	err         error
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <schema>...",
		Short: "Compile each schema root on its own and report its status",
		Long: `Compile every schema root independently, up to --jobs at a time, and print
one status line per root in argument order. The command fails if any root
fails to compile.`,
		Args: requireSchemas,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.Context(), args)
		},
	}
	cmd.Flags().IntVarP(&a.jobs, "jobs", "j", 0, "roots compiled in parallel (overrides config)")
	return cmd
}

func (a *app) check(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]checkResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// each root compiles on one goroutine; results[i] is its own
			res := &results[i]
			_, res.err = a.compile([]string{path}, func(d xsderrors.Diagnostic) {
				res.diagnostics = append(res.diagnostics, d)
			})
			a.logger.Debug("schema checked", "path", path, "diagnostics", len(res.diagnostics))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for i, path := range paths {
		res := results[i]
		for _, d := range res.diagnostics {
			writeDiagnostic(a.stderr, d, a.color)
		}
		switch {
		case res.err == nil:
			_ = writef(a.stdout, "%s: ok (%d diagnostics)\n", path, len(res.diagnostics))
		default:
			failed = true
			if _, ok := xsderrors.AsDiagnostics(res.err); ok {
				_ = writef(a.stdout, "%s: failed (%d diagnostics)\n", path, len(res.diagnostics))
			} else {
				_ = writef(a.stdout, "%s: failed: %v\n", path, res.err)
			}
		}
	}
	if failed {
		return errFailed
	}
	return nil
}
