// Package compiler runs the compilation passes over one arena builder and
// freezes the result.
package compiler

import (
	"fmt"
	"log/slog"
	"time"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/automaton"
	"github.com/jacoelho/xsdcorpus/internal/contentmodel"
	"github.com/jacoelho/xsdcorpus/internal/derive"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/intrange"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// BuildConfig configures a compilation.
type BuildConfig struct {
	// Sink receives every diagnostic as it is produced, whatever the outcome.
	Sink   xsderrors.Sink
	Logger *slog.Logger
}

// Build compiles parsed documents into an immutable corpus. Schema problems
// that make the corpus unusable are returned as an errors.DiagnosticList;
// recoverable ones are carried by the corpus. Any other error is an
// internal failure.
func Build(docs []*schemadoc.Document, cfg BuildConfig) (*corpus.Corpus, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := corpus.NewBuilder()
	diags := xsderrors.NewCollector(func(d xsderrors.Diagnostic) {
		b.Report(d)
		if cfg.Sink != nil {
			cfg.Sink(d)
		}
	})

	start := time.Now()
	var res *graph.Result
	passes := []struct {
		name string
		run  func() error
	}{
		{"graph", func() error {
			res = graph.Build(b, diags, logger, docs)
			return nil
		}},
		{"derive", func() error {
			derive.Run(b, diags, logger, res)
			return nil
		}},
		{"intrange", func() error {
			intrange.Run(b, logger, res.Builtins)
			return nil
		}},
		{"automaton", func() error { return automaton.Run(b, logger) }},
		{"contentmodel", func() error { return contentmodel.Run(b, diags, logger) }},
	}
	for _, p := range passes {
		passStart := time.Now()
		if err := p.run(); err != nil {
			return nil, fmt.Errorf("%s pass: %w", p.name, err)
		}
		logger.Debug("compile pass finished", "pass", p.name,
			"nodes", b.Len()-1, "diagnostics", diags.Len(), "elapsed", time.Since(passStart))
	}
	if diags.HasFatal() {
		return nil, diags.Diagnostics().Fatal()
	}

	c, err := b.Freeze()
	if err != nil {
		return nil, fmt.Errorf("freeze corpus: %w", err)
	}
	logger.Debug("corpus compiled", "documents", len(docs), "nodes", c.Len()-1,
		"diagnostics", diags.Len(), "elapsed", time.Since(start))
	return c, nil
}
