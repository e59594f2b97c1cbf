package loader

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// ResolveKind identifies the kind of schema resolution request.
type ResolveKind uint8

const (
	ResolveInclude ResolveKind = iota
	ResolveImport
)

func (k ResolveKind) String() string {
	if k == ResolveImport {
		return "import"
	}
	return "include"
}

// ResolveRequest describes a schema resolution request.
type ResolveRequest struct {
	BaseSystemID   string
	SchemaLocation string
	ImportNS       string
	Kind           ResolveKind
}

// Resolver resolves schema documents into readers and canonical system IDs.
type Resolver interface {
	Resolve(req ResolveRequest) (doc io.ReadCloser, systemID string, err error)
}

// FSResolver resolves schema locations relative to the including document
// inside an fs.FS. Locations must stay inside the filesystem root.
type FSResolver struct {
	fsys fs.FS
}

// NewFSResolver creates a resolver backed by the provided filesystem.
func NewFSResolver(fsys fs.FS) *FSResolver {
	return &FSResolver{fsys: fsys}
}

// Resolve implements Resolver.
func (r *FSResolver) Resolve(req ResolveRequest) (io.ReadCloser, string, error) {
	if r == nil || r.fsys == nil {
		return nil, "", fmt.Errorf("no filesystem configured: %w", fs.ErrNotExist)
	}
	systemID, err := SystemID(req.BaseSystemID, req.SchemaLocation)
	if err != nil {
		return nil, "", err
	}
	f, err := r.fsys.Open(systemID)
	if err != nil {
		return nil, "", err
	}
	return f, systemID, nil
}

// SystemID joins a schema location to the directory of baseSystemID and
// cleans the result. Absolute locations, backslashes and paths escaping
// the root are rejected.
func SystemID(baseSystemID, schemaLocation string) (string, error) {
	switch {
	case schemaLocation == "":
		return "", fmt.Errorf("schema location is empty: %w", fs.ErrNotExist)
	case strings.Contains(schemaLocation, "\\") || strings.Contains(baseSystemID, "\\"):
		return "", fmt.Errorf("schema location contains backslash: %q", schemaLocation)
	case strings.HasPrefix(schemaLocation, "/"):
		return "", fmt.Errorf("schema location must be relative: %q", schemaLocation)
	case slices.Contains(strings.Split(schemaLocation, "/"), ""):
		return "", fmt.Errorf("invalid schema location segment: %q", schemaLocation)
	}
	joined := path.Clean(path.Join(path.Dir(baseSystemID), schemaLocation))
	if joined == "." {
		return "", fmt.Errorf("schema location is empty: %w", fs.ErrNotExist)
	}
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", fmt.Errorf("schema location escapes root: %q", schemaLocation)
	}
	return joined, nil
}
