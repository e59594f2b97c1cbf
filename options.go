package xsdcorpus

import (
	"fmt"
	"log/slog"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

type loggerOption struct {
	value *slog.Logger
	set   bool
}

type resolverOption struct {
	value Resolver
	set   bool
}

// Options configures schema loading and compilation. The zero value is valid.
type Options struct {
	sink                        xsderrors.Sink
	logger                      loggerOption
	resolver                    resolverOption
	allowMissingImportLocations bool
}

type resolvedOptions struct {
	sink                        xsderrors.Sink
	logger                      *slog.Logger
	resolver                    Resolver
	allowMissingImportLocations bool
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithSink sets the function receiving every diagnostic as it is produced,
// whether or not compilation succeeds. A nil sink disables delivery.
func (o Options) WithSink(sink xsderrors.Sink) Options {
	o.sink = sink
	return o
}

// WithLogger sets the logger used for debug output (default discards).
func (o Options) WithLogger(logger *slog.Logger) Options {
	o.logger = loggerOption{value: logger, set: true}
	return o
}

// WithResolver sets the resolver for root and directive locations. It takes
// precedence over the file systems passed to AddFS.
func (o Options) WithResolver(r Resolver) Options {
	o.resolver = resolverOption{value: r, set: true}
	return o
}

// WithAllowMissingImportLocations controls whether imports whose location
// cannot be found are skipped.
func (o Options) WithAllowMissingImportLocations(value bool) Options {
	o.allowMissingImportLocations = value
	return o
}

func (o Options) withDefaults() (resolvedOptions, error) {
	res := resolvedOptions{
		sink:                        o.sink,
		logger:                      slog.New(slog.DiscardHandler),
		allowMissingImportLocations: o.allowMissingImportLocations,
	}
	if o.logger.set {
		if o.logger.value == nil {
			return resolvedOptions{}, fmt.Errorf("options: nil logger")
		}
		res.logger = o.logger.value
	}
	if o.resolver.set {
		if o.resolver.value == nil {
			return resolvedOptions{}, fmt.Errorf("options: nil resolver")
		}
		res.resolver = o.resolver.value
	}
	return res, nil
}
