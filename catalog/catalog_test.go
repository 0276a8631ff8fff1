package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreRaw = cmpopts.IgnoreUnexported(Catalog{})

func sampleGlyph(id string) Glyph {
	return Glyph{
		ID:       id,
		Filename: "ff0000_0000ff_" + id + ".png",
		URL:      "https://cdn.jsdelivr.net/gh/esimov/glyphs@main/glyphs/ff0000_0000ff_" + id + ".png",
		Color: Color{
			Dominant:        Swatch{Hex: "ff0000", Group: "red", RGB: [3]int{255, 0, 0}, Lab: [3]float64{53.24, 80.09, 67.2}},
			Secondary:       Swatch{Hex: "0000ff", Group: "blue", RGB: [3]int{0, 0, 255}, Lab: [3]float64{32.3, 79.19, -107.86}},
			PaletteContrast: 1.7632,
		},
		Metrics: Metrics{
			EdgeDensity: 0.0412,
			Entropy:     2.5,
			Texture:     2.1013,
			Contrast:    0,
			Circularity: 0.7853,
			AspectRatio: 1,
			EdgeAngle:   90,
		},
		ColorHarmony: NoHarmony,
		Mood:         "energetic",
		CreatedAt:    Timestamp{Date: "2026-10-18", Time: "09:15:02"},
	}
}

func TestCatalog_MergeKeepsExistingOrder(t *testing.T) {
	existing := New(sampleGlyph("aaaaaaaa"), sampleGlyph("bbbbbbbb"))
	before := *existing
	before.Glyphs = append([]Glyph(nil), existing.Glyphs...)

	merged := Merge(existing, []Glyph{sampleGlyph("cccccccc")})

	require.Equal(t, 3, merged.Total)
	assert.Equal(t, "aaaaaaaa", merged.Glyphs[0].ID)
	assert.Equal(t, "bbbbbbbb", merged.Glyphs[1].ID)
	assert.Equal(t, "cccccccc", merged.Glyphs[2].ID)
	if diff := cmp.Diff(before, *existing, ignoreRaw); diff != "" {
		t.Errorf("existing catalog was modified (-want +got):\n%s", diff)
	}
}

func TestCatalog_MergeNilExisting(t *testing.T) {
	merged := Merge(nil, []Glyph{sampleGlyph("aaaaaaaa")})
	assert.Equal(t, 1, merged.Total)
	assert.Equal(t, 1, merged.Len())
	assert.Equal(t, 0, (*Catalog)(nil).Len())
}

func TestCatalog_JSONRoundTrip(t *testing.T) {
	c := New(sampleGlyph("aaaaaaaa"), sampleGlyph("bbbbbbbb"))
	data, err := c.EncodeJSON()
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n  \"total\": 2,\n  \"glyphs\": ["))
	assert.Contains(t, s, `"glyph_url"`)
	assert.Contains(t, s, `"palette_contrast": 1.7632`)

	back, err := DecodeJSON(data)
	require.NoError(t, err)
	if diff := cmp.Diff(c, back, ignoreRaw); diff != "" {
		t.Errorf("json round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_JSONKeepsUnknownKeys(t *testing.T) {
	published := []byte(`{
  "total": 1,
  "glyphs": [
    {"id": "aaaaaaaa", "filename": "ff0000_0000ff_aaaaaaaa.png", "source": "scan-01", "mood": "calm"}
  ]
}`)
	existing, err := DecodeJSON(published)
	require.NoError(t, err)
	require.Equal(t, 1, existing.Len())
	assert.Equal(t, "calm", existing.Glyphs[0].Mood)

	merged := Merge(existing, []Glyph{sampleGlyph("bbbbbbbb")})
	data, err := merged.EncodeJSON()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"source": "scan-01"`)
	assert.True(t, strings.HasPrefix(s, "{\n  \"total\": 2,"))

	back, err := DecodeJSON(data)
	require.NoError(t, err)
	require.Equal(t, 2, back.Total)
	assert.Equal(t, "aaaaaaaa", back.Glyphs[0].ID)
	assert.Equal(t, sampleGlyph("bbbbbbbb"), back.Glyphs[1])
}

func TestCatalog_EmptyJSONHasGlyphList(t *testing.T) {
	data, err := (&Catalog{}).EncodeJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"glyphs":[]}`, string(data))
}

func TestCatalog_CSVLayout(t *testing.T) {
	data, err := New(sampleGlyph("aaaaaaaa")).EncodeCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Contains(t, lines[1], `"[255, 0, 0]"`)
	assert.Contains(t, lines[1], `"[53.24, 80.09, 67.2]"`)
	assert.Contains(t, lines[1], ",0.0,0.7853,1.0,90.0,none,energetic,2026-10-18,09:15:02")
}

func TestCatalog_SerializationsAgree(t *testing.T) {
	c := New(sampleGlyph("aaaaaaaa"), sampleGlyph("bbbbbbbb"), sampleGlyph("cccccccc"))

	js, err := c.EncodeJSON()
	require.NoError(t, err)
	tab, err := c.EncodeCSV()
	require.NoError(t, err)

	fromJSON, err := DecodeJSON(js)
	require.NoError(t, err)
	fromCSV, err := DecodeCSV(tab)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Total, fromCSV.Total)
	if diff := cmp.Diff(fromJSON, fromCSV, ignoreRaw); diff != "" {
		t.Errorf("json and csv disagree (-json +csv):\n%s", diff)
	}
}

func TestCatalog_DecodeCSVRejectsBadInput(t *testing.T) {
	_, err := DecodeCSV([]byte("id,filename\n"))
	assert.Error(t, err)

	data, err := New(sampleGlyph("aaaaaaaa")).EncodeCSV()
	require.NoError(t, err)
	broken := strings.Replace(string(data), "0.7853", "round", 1)
	_, err = DecodeCSV([]byte(broken))
	assert.ErrorContains(t, err, "circularity")
}
