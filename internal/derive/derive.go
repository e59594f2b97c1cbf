// Package derive checks derivation legality over a built graph. It resolves
// facets and value constraints into variants and repairs every offending
// declaration so later passes see a consistent corpus.
package derive

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

type deriver struct {
	b     *corpus.Builder
	diags *xsderrors.Collector
	log   *slog.Logger

	builtins graph.Builtins
	names    map[corpus.TypeID]string
	// patterns caches compiled pattern facets; a nil entry is a pattern
	// that is kept but not enforced.
	patterns map[corpus.StringID]*regexp.Regexp
	// fixed lists the facets a user simple type fixes for its derivations.
	fixed map[corpus.TypeID]map[string]bool
	// repaired lists complex types whose content was changed by a repair.
	repaired map[corpus.TypeID]bool
}

// Run validates facets, value constraints, attribute uses, content
// restrictions and substitution affiliations, in that order.
func Run(b *corpus.Builder, diags *xsderrors.Collector, logger *slog.Logger, res *graph.Result) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &deriver{
		b:        b,
		diags:    diags,
		log:      logger,
		builtins: res.Builtins,
		names:    make(map[corpus.TypeID]string, len(res.Builtins.Types)),
		patterns: make(map[corpus.StringID]*regexp.Regexp),
		fixed:    make(map[corpus.TypeID]map[string]bool),
		repaired: make(map[corpus.TypeID]bool),
	}
	for name, id := range res.Builtins.Types {
		d.names[id] = name
	}

	before := diags.Len()
	for _, st := range res.Pending.SimpleTypes {
		d.deriveSimpleType(st)
	}
	// declarations first: a use is checked against its declaration's fixed value
	for _, uses := range []bool{false, true} {
		for _, v := range res.Pending.Values {
			if (b.Kind(v.Node) == corpus.KindAttributeUse) == uses {
				d.resolveValue(v)
			}
		}
	}
	for _, ct := range res.Pending.ComplexTypes {
		if ext, ok := res.Pending.Extensions[ct]; ok {
			d.inheritRepairs(ct, ext)
		}
		d.checkAttributeUses(ct)
		d.checkContentRestriction(ct)
	}
	d.checkSubstitutions()
	logger.Debug("derivation checked",
		"simple_types", len(res.Pending.SimpleTypes),
		"complex_types", len(res.Pending.ComplexTypes),
		"values", len(res.Pending.Values),
		"diagnostics", diags.Len()-before)
}

func (d *deriver) report(code xsderrors.ErrorCode, loc corpus.Location, format string, args ...any) {
	d.diags.Reportf(xsderrors.SeverityError, code, loc.SystemID, loc.Line, loc.Column, format, args...)
}

func (d *deriver) warn(code xsderrors.ErrorCode, loc corpus.Location, format string, args ...any) {
	d.diags.Reportf(xsderrors.SeverityWarning, code, loc.SystemID, loc.Line, loc.Column, format, args...)
}

// builtinAncestor returns the nearest builtin type on the base chain of t.
func (d *deriver) builtinAncestor(t corpus.TypeID) (string, corpus.TypeID) {
	for t != corpus.TypeID(corpus.Nil) {
		if name, ok := d.names[t]; ok {
			return name, t
		}
		if !d.b.IsSimpleType(t) {
			break
		}
		t = d.b.SimpleType(t).Base
	}
	return builtins.TypeNameAnySimpleType, d.builtins.AnySimpleType
}

// derivesFrom reports whether t is ancestor or reaches it through base,
// list item or union member links.
func (d *deriver) derivesFrom(t, ancestor corpus.TypeID) bool {
	if ancestor == d.builtins.AnyType {
		return true
	}
	seen := make(map[corpus.TypeID]bool)
	for t != corpus.TypeID(corpus.Nil) && !seen[t] {
		if t == ancestor {
			return true
		}
		seen[t] = true
		if d.b.IsComplexType(t) {
			t = d.b.ComplexType(t).Base
			continue
		}
		rec := d.b.SimpleType(t)
		if rec.Variety == corpus.VarietyUnion && ancestor != d.builtins.AnySimpleType {
			for _, m := range rec.MemberTypes {
				if d.derivesFrom(m, ancestor) {
					return true
				}
			}
		}
		t = rec.Base
	}
	return false
}

func (d *deriver) typeLabel(t corpus.TypeID) string {
	var name corpus.StringID
	if d.b.IsSimpleType(t) {
		name = d.b.SimpleType(t).Name
	} else {
		name = d.b.ComplexType(t).Name
	}
	if s := d.b.String(name); s != "" {
		return s
	}
	return "(anonymous)"
}

// pattern returns the compiled form of a stored pattern facet. A nil regexp
// with a nil error means the pattern is not enforced.
func (d *deriver) pattern(id corpus.StringID) (*regexp.Regexp, error) {
	if re, ok := d.patterns[id]; ok {
		return re, nil
	}
	src, err := translatePattern(d.b.String(id))
	if err != nil {
		if errors.Is(err, errPatternUnsupported) {
			d.patterns[id] = nil
			return nil, nil
		}
		return nil, err
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("pattern-syntax-error: %w", err)
	}
	d.patterns[id] = re
	return re, nil
}
