// Package catalog defines the glyph record and the append-only catalog
// together with its two serializations (JSON document and CSV table).
package catalog

// Harmony describes the hue relation between the dominant and secondary colors.
type Harmony string

const (
	Analogous     Harmony = "analogous"
	Complementary Harmony = "complementary"
	NoHarmony     Harmony = "none"
)

// Swatch is a single palette color with its derived representations.
type Swatch struct {
	Hex   string     `json:"hex"`
	Group string     `json:"group"`
	RGB   [3]int     `json:"rgb"`
	Lab   [3]float64 `json:"lab"`
}

// Color holds the two-color palette of a glyph.
type Color struct {
	Dominant        Swatch  `json:"dominant"`
	Secondary       Swatch  `json:"secondary"`
	PaletteContrast float64 `json:"palette_contrast"`
}

// Metrics are the quantitative visual features of a glyph.
type Metrics struct {
	EdgeDensity float64 `json:"edge_density"`
	Entropy     float64 `json:"entropy"`
	Texture     float64 `json:"texture"`
	Contrast    float64 `json:"contrast"`
	Circularity float64 `json:"circularity"`
	AspectRatio float64 `json:"aspect_ratio"`
	EdgeAngle   float64 `json:"edge_angle"`
}

// Timestamp is the UTC extraction time split into date and time of day.
type Timestamp struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Glyph is one catalog record. It is never modified once appended to a catalog.
type Glyph struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	URL          string    `json:"glyph_url"`
	Color        Color     `json:"color"`
	Metrics      Metrics   `json:"metrics"`
	ColorHarmony Harmony   `json:"color_harmony"`
	Mood         string    `json:"mood"`
	CreatedAt    Timestamp `json:"created_at"`
}
