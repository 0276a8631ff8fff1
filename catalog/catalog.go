package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Catalog is the append-only collection of published glyphs.
type Catalog struct {
	Total  int     `json:"total"`
	Glyphs []Glyph `json:"glyphs"`

	// raw holds the published form of the leading glyphs. Those records are
	// written back byte for byte, keeping keys this package does not model.
	raw []json.RawMessage
}

// New returns a catalog holding the given glyphs.
func New(glyphs ...Glyph) *Catalog {
	c := &Catalog{Glyphs: make([]Glyph, 0, len(glyphs))}
	c.Glyphs = append(c.Glyphs, glyphs...)
	c.Total = len(c.Glyphs)
	return c
}

// Merge returns a new catalog with the existing glyphs first, in their
// original order, followed by the added ones. Neither input is modified.
// A nil existing catalog is treated as empty.
func Merge(existing *Catalog, added []Glyph) *Catalog {
	var prev []Glyph
	if existing != nil {
		prev = existing.Glyphs
	}
	merged := make([]Glyph, 0, len(prev)+len(added))
	merged = append(merged, prev...)
	merged = append(merged, added...)
	out := &Catalog{Total: len(merged), Glyphs: merged}
	if existing != nil && len(existing.raw) > 0 {
		out.raw = append([]json.RawMessage(nil), existing.raw...)
	}
	return out
}

// Len returns the number of glyphs in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Glyphs)
}

// document is the wire form of a catalog.
type document struct {
	Total  int               `json:"total"`
	Glyphs []json.RawMessage `json:"glyphs"`
}

// EncodeJSON returns the structured form of the catalog, indented by two spaces.
// Glyphs read with DecodeJSON are emitted exactly as they were published.
func (c *Catalog) EncodeJSON() ([]byte, error) {
	doc := document{
		Total:  len(c.Glyphs),
		Glyphs: make([]json.RawMessage, 0, len(c.Glyphs)),
	}
	for i := range c.Glyphs {
		if i < len(c.raw) && c.raw[i] != nil {
			doc.Glyphs = append(doc.Glyphs, c.raw[i])
			continue
		}
		rec, err := json.Marshal(&c.Glyphs[i])
		if err != nil {
			return nil, fmt.Errorf("catalog: encoding glyph %d: %w", i, err)
		}
		doc.Glyphs = append(doc.Glyphs, rec)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("catalog: encoding json: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a structured catalog. The total is recomputed from the
// glyph list, since that is what the catalog actually holds.
func DecodeJSON(data []byte) (*Catalog, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decoding json: %w", err)
	}

	c := &Catalog{Glyphs: make([]Glyph, len(doc.Glyphs)), raw: doc.Glyphs}
	for i, rec := range doc.Glyphs {
		if err := json.Unmarshal(rec, &c.Glyphs[i]); err != nil {
			return nil, fmt.Errorf("catalog: decoding glyph %d: %w", i, err)
		}
	}
	c.Total = len(c.Glyphs)
	return c, nil
}
