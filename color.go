package glyphcat

import (
	"math"
	"math/rand"

	"github.com/esimov/glyphcat/catalog"
	"github.com/esimov/glyphcat/utils"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultClusters is the number of color clusters searched by DominantColors.
const DefaultClusters = 5

// fallbackColor is reported when a glyph has too few pixels to be clustered.
var fallbackColor = RGB{200, 200, 200}

// RGB is an 8-bit sRGB color.
type RGB [3]uint8

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

// Hex returns the lowercase six digit hex form of the color, without '#'.
func (c RGB) Hex() string {
	return c.colorful().Hex()[1:]
}

// Ints returns the channels as ints.
func (c RGB) Ints() [3]int {
	return [3]int{int(c[0]), int(c[1]), int(c[2])}
}

// hue returns the HSV hue in degrees, in the [0, 360) range.
func (c RGB) hue() float64 {
	h, _, _ := c.colorful().Hsv()
	return h
}

// saturation returns the HSV saturation on [0, 1] channels, stabilized for black.
func saturation(r, g, b float64) float64 {
	hi := utils.Max(r, utils.Max(g, b))
	lo := utils.Min(r, utils.Min(g, b))
	return (hi - lo) / (hi + 1e-6)
}

// DominantColors clusters the visible pixels of the glyph into k groups with
// weighted k-means, where a pixel weighs its saturation plus 0.5, and returns
// the centers of the most and second most populated clusters. Ties go to the
// lower cluster index. A single populated cluster yields the same color twice;
// fewer visible pixels than k yield the neutral fallback color for both.
func DominantColors(g *Glyph, k int, rng *rand.Rand) (dominant, secondary RGB) {
	samples := colorSamples(g)
	n := 0
	for _, s := range samples {
		n += s.count
	}
	if n < k {
		return fallbackColor, fallbackColor
	}

	clusters := kmeans(samples, k, rng)
	first, second := -1, -1
	for i, c := range clusters {
		if c.count == 0 {
			continue
		}
		switch {
		case first < 0 || c.count > clusters[first].count:
			first, second = i, first
		case second < 0 || c.count > clusters[second].count:
			second = i
		}
	}
	if second < 0 {
		second = first
	}
	return centerColor(clusters[first].center), centerColor(clusters[second].center)
}

// colorSamples collects the distinct colors of the visible pixels.
func colorSamples(g *Glyph) []sample {
	index := make(map[RGB]int)
	samples := make([]sample, 0)
	w := g.Width()

	for i, visible := range g.Mask {
		if !visible {
			continue
		}
		off := g.Img.PixOffset(i%w, i/w)
		c := RGB{g.Img.Pix[off], g.Img.Pix[off+1], g.Img.Pix[off+2]}
		weight := saturation(float64(c[0])/255, float64(c[1])/255, float64(c[2])/255) + 0.5
		if j, ok := index[c]; ok {
			samples[j].weight += weight
			samples[j].count++
			continue
		}
		index[c] = len(samples)
		samples = append(samples, sample{
			v:      [3]float64{float64(c[0]), float64(c[1]), float64(c[2])},
			weight: weight,
			count:  1,
		})
	}
	return samples
}

// centerColor truncates a cluster center to integer channels. The small bias
// absorbs the rounding error of the weighted mean of identical values.
func centerColor(c [3]float64) RGB {
	var rgb RGB
	for i, v := range c {
		rgb[i] = uint8(utils.Clamp(math.Floor(v+1e-9), 0, 255))
	}
	return rgb
}

// ToLab converts an sRGB color to CIE L*a*b* under the D65 white point.
func ToLab(c RGB) [3]float64 {
	l, a, b := c.colorful().Lab()
	return [3]float64{l * 100, a * 100, b * 100}
}

// PaletteContrast returns the Euclidean distance of the two colors in Lab
// space divided by 100, rounded to 4 decimals.
func PaletteContrast(a, b RGB) float64 {
	return utils.Round(a.colorful().DistanceLab(b.colorful()), 4)
}

// ColorGroup names the color family of c. The rules are checked in order and
// the first one matching wins.
func ColorGroup(c RGB) string {
	h, s, _ := c.colorful().Hsv()
	br := brightness(c)

	switch {
	case br < 40:
		return "black"
	case br > 230 && s < 0.20:
		return "white"
	case s < 0.12 && br >= 40 && br <= 230:
		return "gray"
	case h > 35 && h < 65 && br > 120 && br < 220 && s > 0.20 && s < 0.55:
		return "gold"
	case br > 180 && s < 0.18:
		return "silver"
	case br < 140 && s > 0.25 && h > 15 && h < 65:
		return "brown"
	case h <= 20 || h >= 345:
		return "red"
	case h <= 45:
		return "orange"
	case h <= 75:
		return "yellow"
	case h <= 165:
		return "green"
	case h <= 250:
		return "blue"
	case h <= 295:
		return "purple"
	case h < 345:
		return "pink"
	}
	return "gray"
}

// ColorHarmony classifies the hue relation of two colors.
func ColorHarmony(a, b RGB) catalog.Harmony {
	d := utils.Abs(a.hue() - b.hue())
	switch {
	case d < 30:
		return catalog.Analogous
	case utils.Abs(d-180) < 30:
		return catalog.Complementary
	}
	return catalog.NoHarmony
}

// swatch builds the catalog description of a color.
func swatch(c RGB) catalog.Swatch {
	lab := ToLab(c)
	for i := range lab {
		lab[i] = utils.Round(lab[i], 2)
	}
	return catalog.Swatch{
		Hex:   c.Hex(),
		Group: ColorGroup(c),
		RGB:   c.Ints(),
		Lab:   lab,
	}
}
