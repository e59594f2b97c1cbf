// Package loader reads schema documents and the documents they include and
// import, wiring every directive to its parsed target.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/jacoelho/xsdcorpus/internal/parser"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
)

// Config holds configuration for the schema loader.
type Config struct {
	// FS resolves locations when Resolver is nil.
	FS fs.FS
	// Resolver overrides FS resolution.
	Resolver Resolver
	// Sources holds inline documents by system ID; they take precedence
	// over Resolver and FS.
	Sources map[string][]byte
	// AllowMissingImportLocations skips imports whose location cannot be found.
	AllowMissingImportLocations bool
	Logger                      *slog.Logger
}

// Loader parses each system ID once. Directives are resolved eagerly, so the
// returned documents form a possibly cyclic graph that needs no further I/O.
type Loader struct {
	cfg  Config
	docs map[string]*schemadoc.Document
}

// New returns a loader for cfg.
func New(cfg Config) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Resolver == nil && cfg.FS != nil {
		cfg.Resolver = NewFSResolver(cfg.FS)
	}
	return &Loader{cfg: cfg, docs: make(map[string]*schemadoc.Document)}
}

// Load reads the root document at location.
func (l *Loader) Load(location string) (*schemadoc.Document, error) {
	return l.resolve(ResolveRequest{SchemaLocation: location, Kind: ResolveInclude})
}

// LoadSource reads an inline root document.
func (l *Loader) LoadSource(systemID string, data []byte) (*schemadoc.Document, error) {
	if doc, ok := l.docs[systemID]; ok {
		return doc, nil
	}
	return l.load(io.NopCloser(bytes.NewReader(data)), systemID)
}

// Documents returns the number of distinct documents read so far.
func (l *Loader) Documents() int { return len(l.docs) }

func (l *Loader) resolve(req ResolveRequest) (*schemadoc.Document, error) {
	if id, err := SystemID(req.BaseSystemID, req.SchemaLocation); err == nil {
		if doc, ok := l.docs[id]; ok {
			return doc, nil
		}
		if data, ok := l.cfg.Sources[id]; ok {
			return l.load(io.NopCloser(bytes.NewReader(data)), id)
		}
	}
	if l.cfg.Resolver == nil {
		return nil, fmt.Errorf("resolve %s: no resolver configured: %w", req.SchemaLocation, fs.ErrNotExist)
	}
	rc, systemID, err := l.cfg.Resolver.Resolve(req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", req.SchemaLocation, err)
	}
	if doc, ok := l.docs[systemID]; ok {
		_ = rc.Close()
		return doc, nil
	}
	return l.load(rc, systemID)
}

func (l *Loader) load(rc io.ReadCloser, systemID string) (doc *schemadoc.Document, err error) {
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", systemID, closeErr)
		}
	}()
	doc, err = parser.Parse(rc, systemID)
	if err != nil {
		return nil, err
	}
	// registered before the directives are followed so cycles terminate
	l.docs[systemID] = doc
	l.cfg.Logger.Debug("schema document loaded", "system_id", systemID,
		"includes", len(doc.Includes), "imports", len(doc.Imports))

	for _, inc := range doc.Includes {
		target, err := l.resolve(ResolveRequest{
			BaseSystemID:   systemID,
			SchemaLocation: inc.Location,
			Kind:           ResolveInclude,
		})
		if err != nil {
			return nil, fmt.Errorf("include %s from %s: %w", inc.Location, systemID, err)
		}
		inc.Doc = target
	}
	for _, imp := range doc.Imports {
		if imp.Location == "" {
			continue
		}
		target, err := l.resolve(ResolveRequest{
			BaseSystemID:   systemID,
			SchemaLocation: imp.Location,
			ImportNS:       imp.Namespace,
			Kind:           ResolveImport,
		})
		if err != nil {
			if l.cfg.AllowMissingImportLocations && errors.Is(err, fs.ErrNotExist) {
				l.cfg.Logger.Debug("import location skipped", "system_id", systemID,
					"location", imp.Location, "namespace", imp.Namespace)
				continue
			}
			return nil, fmt.Errorf("import %s from %s: %w", imp.Location, systemID, err)
		}
		imp.Doc = target
	}
	return doc, nil
}
