package glyphcat

import (
	"context"
	"errors"
	"fmt"

	"github.com/esimov/glyphcat/catalog"
	"github.com/esimov/glyphcat/store"
	"go.uber.org/zap"
)

const (
	// CatalogJSONPath is the collection path of the structured catalog.
	CatalogJSONPath = "data/glyphs.catalog.json"
	// CatalogCSVPath is the collection path of the tabular catalog.
	CatalogCSVPath = "data/glyphs.catalog.csv"
)

// Kind tells whether a publish created the catalog or extended it.
type Kind string

const (
	KindInit     Kind = "LIBRARY.INIT"
	KindExpanded Kind = "LIBRARY.EXPANDED"
)

// Outcome describes a successful publish.
type Outcome struct {
	Commit string
	Kind   Kind
	Before int
	Added  int
	After  int
}

// Message returns the commit message of the publish.
func (o *Outcome) Message() string {
	if o.Kind == KindInit {
		return fmt.Sprintf("[%s]   %d glyphs + 2 catalogs generated\n\nlibrary: %d glyphs in total\n",
			o.Kind, o.Added, o.After)
	}
	return fmt.Sprintf("[%s]   +%d glyphs, 2 catalogs updated\n\nlibrary: %d + %d = %d glyphs in total\n",
		o.Kind, o.Added, o.Before, o.Added, o.After)
}

// Publisher appends analyzed glyphs to a collection.
type Publisher struct {
	Collection *store.Collection
	Logger     *zap.Logger
}

func (p *Publisher) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Prepare makes sure the collection exists, creating its base layout when it
// does not. It is not part of the atomic publish and is safe to call again.
func (p *Publisher) Prepare(ctx context.Context) (bool, error) {
	created, err := p.Collection.Ensure(ctx)
	if err != nil {
		return false, &StorageError{Op: "prepare collection", Err: err}
	}
	if created {
		p.logger().Info("collection created", zap.Stringer("collection", p.Collection.Location()))
	}
	return created, nil
}

// Load returns the catalog currently published in the collection. A
// collection without catalog yields an empty one.
func (p *Publisher) Load(ctx context.Context) (*catalog.Catalog, error) {
	data, err := p.Collection.ReadFile(ctx, CatalogJSONPath)
	if errors.Is(err, store.ErrNotFound) {
		return catalog.New(), nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read catalog", Err: err}
	}
	c, err := catalog.DecodeJSON(data)
	if err != nil {
		return nil, &StorageError{Op: "read catalog", Err: err}
	}
	return c, nil
}

// checkUnique rejects the results whose id or file name is already used by
// the published catalog or by an earlier result of the batch.
func checkUnique(existing *catalog.Catalog, results []Result) error {
	ids := make(map[string]string, existing.Len()+len(results))
	names := make(map[string]string, existing.Len()+len(results))
	for _, g := range existing.Glyphs {
		ids[g.ID] = "catalog"
		names[g.Filename] = "catalog"
	}
	for _, r := range results {
		g := r.Glyph
		src, dup := ids[g.ID]
		if !dup {
			src, dup = names[g.Filename]
		}
		if dup {
			return &DuplicateError{ID: g.ID, Filename: g.Filename, Source: src}
		}
		ids[g.ID] = "batch"
		names[g.Filename] = "batch"
	}
	return nil
}

// Publish merges the report records into the published catalog and writes
// the new glyph images together with both catalog forms as a single commit.
// Either everything becomes visible or the collection is left untouched.
// Records colliding with published ones fail with a *DuplicateError before
// anything is written.
func (p *Publisher) Publish(ctx context.Context, rep *Report) (*Outcome, error) {
	if rep == nil || len(rep.Results) == 0 {
		return nil, ErrNoGlyphs
	}

	existing, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkUnique(existing, rep.Results); err != nil {
		return nil, err
	}

	added := make([]catalog.Glyph, 0, len(rep.Results))
	files := make([]store.File, 0, len(rep.Results)+2)
	for _, r := range rep.Results {
		added = append(added, r.Glyph)
		files = append(files, store.File{Path: GlyphDir + "/" + r.Glyph.Filename, Data: r.Image})
	}
	merged := catalog.Merge(existing, added)

	js, err := merged.EncodeJSON()
	if err != nil {
		return nil, err
	}
	tab, err := merged.EncodeCSV()
	if err != nil {
		return nil, err
	}
	files = append(files,
		store.File{Path: CatalogJSONPath, Data: js},
		store.File{Path: CatalogCSVPath, Data: tab},
	)

	out := &Outcome{
		Kind:   KindExpanded,
		Before: existing.Len(),
		Added:  len(added),
		After:  merged.Len(),
	}
	if out.Before == 0 {
		out.Kind = KindInit
	}

	hash, err := p.Collection.Commit(ctx, out.Message(), files)
	if err != nil {
		return nil, &StorageError{Op: "commit", Err: err}
	}
	out.Commit = hash

	p.logger().Info("catalog published",
		zap.String("commit", hash),
		zap.String("kind", string(out.Kind)),
		zap.Int("before", out.Before),
		zap.Int("added", out.Added),
		zap.Int("after", out.After),
	)
	return out, nil
}
