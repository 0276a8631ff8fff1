package glyphcat

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func fillDisk(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if math.Hypot(float64(x-cx), float64(y-cy)) <= float64(radius) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// twoToneGlyph draws a red square with a blue band on a transparent canvas.
func twoToneGlyph(t testing.TB) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	fillRect(img, image.Rect(4, 4, 28, 28), color.NRGBA{R: 230, G: 20, B: 20, A: 255})
	fillRect(img, image.Rect(4, 20, 28, 28), color.NRGBA{R: 20, G: 40, B: 220, A: 255})
	return encodeTestPNG(t, img)
}

func maskAll(w, h int) []bool {
	m := make([]bool, w*h)
	for i := range m {
		m[i] = true
	}
	return m
}
