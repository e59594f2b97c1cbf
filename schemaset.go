package xsdcorpus

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/compiler"
)

// SchemaSet collects schema roots and compiles them into one corpus.
type SchemaSet struct {
	roots []compiler.Root
	opts  Options
}

// NewSchemaSet creates an empty schema set.
func NewSchemaSet(opts ...Options) *SchemaSet {
	o := NewOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return &SchemaSet{opts: o}
}

// WithOptions replaces the schema-set options.
func (s *SchemaSet) WithOptions(opts Options) *SchemaSet {
	if s == nil {
		return nil
	}
	s.opts = opts
	return s
}

// AddFS adds one schema root location from fsys.
func (s *SchemaSet) AddFS(fsys fs.FS, location string) error {
	if s == nil {
		return fmt.Errorf("schema set: nil set")
	}
	if fsys == nil {
		return fmt.Errorf("schema set: nil fs")
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return fmt.Errorf("schema set: empty location")
	}
	s.roots = append(s.roots, compiler.Root{FS: fsys, Location: location})
	return nil
}

// AddSource adds one inline schema root. Directives of any root in the set
// may refer to it by systemID.
func (s *SchemaSet) AddSource(systemID string, data []byte) error {
	if s == nil {
		return fmt.Errorf("schema set: nil set")
	}
	systemID = strings.TrimSpace(systemID)
	if systemID == "" {
		return fmt.Errorf("schema set: empty system ID")
	}
	for _, r := range s.roots {
		if r.FS == nil && r.SystemID == systemID {
			return fmt.Errorf("schema set: duplicate source %s", systemID)
		}
	}
	s.roots = append(s.roots, compiler.Root{SystemID: systemID, Data: data})
	return nil
}

// Compile compiles every added root, in order, into one corpus. A set with
// no roots yields the builtin namespaces only.
//
// When the schema set is unusable the error wraps an errors.DiagnosticList
// holding the fatal diagnostics; use errors.AsDiagnostics to extract it.
// Recoverable diagnostics are available from Corpus.Diagnostics.
func (s *SchemaSet) Compile() (*Corpus, error) {
	if s == nil {
		return nil, fmt.Errorf("compile schema set: nil set")
	}
	opts, err := s.opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("compile schema set: %w", err)
	}
	docs, err := compiler.Load(compiler.LoadConfig{
		Resolver:                    opts.resolver,
		AllowMissingImportLocations: opts.allowMissingImportLocations,
		Logger:                      opts.logger,
	}, s.roots)
	if err != nil {
		return nil, fmt.Errorf("compile schema set: %w", err)
	}
	c, err := compiler.Build(docs, compiler.BuildConfig{Sink: opts.sink, Logger: opts.logger})
	if err != nil {
		return nil, fmt.Errorf("compile schema set: %w", err)
	}
	return c, nil
}
