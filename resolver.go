package xsdcorpus

import (
	"io/fs"

	"github.com/jacoelho/xsdcorpus/internal/loader"
)

// ResolveKind identifies the kind of schema resolution request.
type ResolveKind = loader.ResolveKind

const (
	ResolveInclude ResolveKind = loader.ResolveInclude
	ResolveImport  ResolveKind = loader.ResolveImport
)

// ResolveRequest describes one include or import location to resolve.
type ResolveRequest = loader.ResolveRequest

// Resolver resolves schema documents into readers and canonical system IDs.
type Resolver = loader.Resolver

// NewFSResolver returns a Resolver reading locations relative to the
// including document from fsys.
func NewFSResolver(fsys fs.FS) Resolver {
	return loader.NewFSResolver(fsys)
}
