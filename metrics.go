package glyphcat

import (
	"image"
	"math"

	"github.com/esimov/glyphcat/catalog"
	"github.com/esimov/glyphcat/utils"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// EdgeDensity returns the fraction of visible pixels lying on a Canny edge.
func EdgeDensity(gray *image.Gray, mask []bool) float64 {
	edges := canny(gray, cannyLow, cannyHigh)
	n, hits := 0, 0
	for i, visible := range mask {
		if !visible {
			continue
		}
		n++
		if edges[i] {
			hits++
		}
	}
	if n == 0 {
		return 0
	}
	return utils.Round(float64(hits)/float64(n), 4)
}

// Entropy returns the Shannon entropy (base 2) of the luminance values of the
// visible pixels.
func Entropy(img *image.NRGBA, mask []bool) float64 {
	w := img.Bounds().Dx()
	counts := make(map[float64]int)
	n := 0
	for i, visible := range mask {
		if !visible {
			continue
		}
		off := img.PixOffset(img.Bounds().Min.X+i%w, img.Bounds().Min.Y+i/w)
		counts[luminance(img.Pix[off], img.Pix[off+1], img.Pix[off+2])]++
		n++
	}
	if n == 0 {
		return 0
	}

	ent := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		ent -= p * math.Log2(p)
	}
	return utils.Round(ent, 4)
}

// Contrast returns the Michelson contrast (max-min)/(max+min) of the
// relative luminance over the pixels with alpha above the threshold.
func Contrast(img *image.NRGBA) float64 {
	var lum []float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := img.PixOffset(x, y)
			if img.Pix[off+3] <= alphaThreshold {
				continue
			}
			lum = append(lum, brightness(RGB{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}))
		}
	}
	if len(lum) == 0 {
		return 0
	}
	hi, lo := floats.Max(lum), floats.Min(lum)
	if hi+lo == 0 {
		return 0
	}
	return utils.Round((hi-lo)/(hi+lo), 4)
}

// EdgeAngle returns the absolute median orientation, in degrees modulo 180,
// of the strongest gradients among the visible pixels: those whose Sobel
// magnitude is above the 75th percentile.
func EdgeAngle(gray *image.Gray, mask []bool) float64 {
	g := sobel(gray, borderReflect101)

	var mags, angles []float64
	for i, visible := range mask {
		if !visible {
			continue
		}
		dx, dy := float64(g.dx[i]), float64(g.dy[i])
		mags = append(mags, math.Hypot(dx, dy))
		angles = append(angles, math.Atan2(dy, dx)*180/math.Pi)
	}
	if len(mags) == 0 {
		return 0
	}

	sorted := append([]float64(nil), mags...)
	slices.Sort(sorted)
	threshold := percentile(sorted, 0.75)

	var strong []float64
	for i, m := range mags {
		if m > threshold {
			strong = append(strong, angles[i])
		}
	}
	if len(strong) == 0 {
		return 0
	}
	slices.Sort(strong)
	return utils.Round(math.Mod(math.Abs(percentile(strong, 0.5)), 180), 4)
}

// percentile returns the p-quantile of the sorted values, interpolating
// linearly between the closest ranks at p*(n-1).
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// measure computes every visual metric of the glyph.
func measure(g *Glyph) catalog.Metrics {
	gray := Grayscale(g.Img)
	circ, aspect := ShapeMetrics(g.Mask, g.Width(), g.Height())

	return catalog.Metrics{
		EdgeDensity: EdgeDensity(gray, g.Mask),
		Entropy:     Entropy(g.Img, g.Mask),
		Texture:     TextureComplexity(gray, g.Mask),
		Contrast:    Contrast(g.Source),
		Circularity: circ,
		AspectRatio: aspect,
		EdgeAngle:   EdgeAngle(gray, g.Mask),
	}
}
