package compiler

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jacoelho/xsdcorpus/internal/loader"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
)

// Root is one schema root: a location in FS, or inline Data under SystemID.
type Root struct {
	FS       fs.FS
	Location string
	SystemID string
	Data     []byte
}

func (r Root) inline() bool { return r.FS == nil }

// LoadConfig configures how roots and their directives are read.
type LoadConfig struct {
	Resolver                    loader.Resolver
	AllowMissingImportLocations bool
	Logger                      *slog.Logger
}

// Load parses every root and the documents they include and import. Inline
// roots are visible to directives of every other root by system ID.
func Load(cfg LoadConfig, roots []Root) ([]*schemadoc.Document, error) {
	sources := make(map[string][]byte)
	for _, r := range roots {
		if r.inline() {
			sources[r.SystemID] = r.Data
		}
	}
	newLoader := func(fsys fs.FS) *loader.Loader {
		return loader.New(loader.Config{
			FS:                          fsys,
			Resolver:                    cfg.Resolver,
			Sources:                     sources,
			AllowMissingImportLocations: cfg.AllowMissingImportLocations,
			Logger:                      cfg.Logger,
		})
	}

	// fs.FS values are not comparable, so each filesystem root gets its own
	// loader; the graph builder merges documents seen twice by system ID.
	inline := newLoader(nil)
	docs := make([]*schemadoc.Document, 0, len(roots))
	for _, r := range roots {
		var (
			doc *schemadoc.Document
			err error
		)
		if r.inline() {
			doc, err = inline.LoadSource(r.SystemID, r.Data)
		} else {
			doc, err = newLoader(r.FS).Load(r.Location)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", r.name(), err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r Root) name() string {
	if r.inline() {
		return r.SystemID
	}
	return r.Location
}
