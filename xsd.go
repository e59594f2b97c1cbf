// Package xsdcorpus compiles XML Schema documents into an immutable,
// integer-indexed corpus: every declaration as an arena node, validated
// derivations, attribute-use tables, integral codec hints and, for every
// content group, the table of particles that may occur at each position.
package xsdcorpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// Corpus is a compiled schema set. It is immutable and safe for concurrent use.
type Corpus = corpus.Corpus

// Compile compiles the schema roots at locations in fsys with default options.
func Compile(fsys fs.FS, locations ...string) (*Corpus, error) {
	return CompileWithOptions(NewOptions(), fsys, locations...)
}

// CompileWithOptions compiles the schema roots at locations in fsys.
func CompileWithOptions(opts Options, fsys fs.FS, locations ...string) (*Corpus, error) {
	set := NewSchemaSet(opts)
	for _, location := range locations {
		if err := set.AddFS(fsys, location); err != nil {
			return nil, fmt.Errorf("compile %s: %w", location, err)
		}
	}
	return set.Compile()
}

// CompileFile compiles the schema at path; relative directives resolve
// against its directory.
func CompileFile(path string, opts Options) (*Corpus, error) {
	return CompileWithOptions(opts, os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
