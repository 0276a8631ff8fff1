package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/esimov/glyphcat/utils"
)

// Columns is the fixed column order of the tabular catalog.
var Columns = []string{
	"id", "filename", "glyph_url",
	"dominant_hex", "dominant_group", "dominant_rgb", "dominant_lab",
	"secondary_hex", "secondary_group", "secondary_rgb", "secondary_lab",
	"palette_contrast",
	"edge_density", "entropy", "texture", "contrast", "circularity", "aspect_ratio",
	"edge_angle", "color_harmony", "mood", "created_date", "created_time",
}

// EncodeCSV returns the tabular form of the catalog: a header row followed by
// one row per glyph.
func (c *Catalog) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("catalog: writing csv header: %w", err)
	}
	for i := range c.Glyphs {
		if err := w.Write(row(&c.Glyphs[i])); err != nil {
			return nil, fmt.Errorf("catalog: writing csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("catalog: flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func row(g *Glyph) []string {
	f := utils.FormatFloat
	return []string{
		g.ID, g.Filename, g.URL,
		g.Color.Dominant.Hex, g.Color.Dominant.Group,
		formatInts(g.Color.Dominant.RGB), formatFloats(g.Color.Dominant.Lab),
		g.Color.Secondary.Hex, g.Color.Secondary.Group,
		formatInts(g.Color.Secondary.RGB), formatFloats(g.Color.Secondary.Lab),
		f(g.Color.PaletteContrast),
		f(g.Metrics.EdgeDensity), f(g.Metrics.Entropy), f(g.Metrics.Texture),
		f(g.Metrics.Contrast), f(g.Metrics.Circularity), f(g.Metrics.AspectRatio),
		f(g.Metrics.EdgeAngle), string(g.ColorHarmony), g.Mood,
		g.CreatedAt.Date, g.CreatedAt.Time,
	}
}

func formatInts(v [3]int) string {
	return fmt.Sprintf("[%d, %d, %d]", v[0], v[1], v[2])
}

func formatFloats(v [3]float64) string {
	return "[" + utils.FormatFloat(v[0]) + ", " + utils.FormatFloat(v[1]) + ", " + utils.FormatFloat(v[2]) + "]"
}

// DecodeCSV parses the tabular form of a catalog.
func DecodeCSV(data []byte) (*Catalog, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Columns)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: reading csv header: %w", err)
	}
	for i, name := range Columns {
		if header[i] != name {
			return nil, fmt.Errorf("catalog: unexpected csv column %d: %q, want %q", i, header[i], name)
		}
	}

	c := &Catalog{Glyphs: []Glyph{}}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: reading csv: %w", err)
		}
		g, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("catalog: csv line %d: %w", line, err)
		}
		c.Glyphs = append(c.Glyphs, g)
	}
	c.Total = len(c.Glyphs)
	return c, nil
}

// rowParser accumulates the first parse error so a row can be decoded
// field after field without checking every call.
type rowParser struct {
	rec []string
	err error
}

func (p *rowParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.rec[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", Columns[i], err)
	}
	return v
}

func (p *rowParser) list(i int) [3]float64 {
	var out [3]float64
	s := strings.TrimSpace(p.rec[i])
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		if p.err == nil {
			p.err = fmt.Errorf("column %s: expected 3 values, got %q", Columns[i], p.rec[i])
		}
		return out
	}
	for k, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil && p.err == nil {
			p.err = fmt.Errorf("column %s: %w", Columns[i], err)
		}
		out[k] = v
	}
	return out
}

func (p *rowParser) ints(i int) [3]int {
	f := p.list(i)
	return [3]int{int(f[0]), int(f[1]), int(f[2])}
}

func parseRow(rec []string) (Glyph, error) {
	p := &rowParser{rec: rec}
	g := Glyph{
		ID:       rec[0],
		Filename: rec[1],
		URL:      rec[2],
		Color: Color{
			Dominant:        Swatch{Hex: rec[3], Group: rec[4], RGB: p.ints(5), Lab: p.list(6)},
			Secondary:       Swatch{Hex: rec[7], Group: rec[8], RGB: p.ints(9), Lab: p.list(10)},
			PaletteContrast: p.float(11),
		},
		Metrics: Metrics{
			EdgeDensity: p.float(12),
			Entropy:     p.float(13),
			Texture:     p.float(14),
			Contrast:    p.float(15),
			Circularity: p.float(16),
			AspectRatio: p.float(17),
			EdgeAngle:   p.float(18),
		},
		ColorHarmony: Harmony(rec[19]),
		Mood:         rec[20],
		CreatedAt:    Timestamp{Date: rec[21], Time: rec[22]},
	}
	return g, p.err
}
