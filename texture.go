package glyphcat

import (
	"image"
	"math"

	"github.com/esimov/glyphcat/utils"
)

const (
	lbpPoints = 8
	lbpRadius = 1.0
	lbpBins   = lbpPoints + 2
)

// lbpOffsets holds the (row, col) offsets of the sampling points on the circle.
var lbpOffsets = func() [lbpPoints][2]float64 {
	var off [lbpPoints][2]float64
	for p := 0; p < lbpPoints; p++ {
		a := 2 * math.Pi * float64(p) / lbpPoints
		off[p] = [2]float64{
			utils.Round(-lbpRadius*math.Sin(a), 5),
			utils.Round(lbpRadius*math.Cos(a), 5),
		}
	}
	return off
}()

// lbp computes the rotation invariant uniform local binary pattern of every
// pixel. Neighbors are sampled on a circle with bilinear interpolation, and
// samples falling outside the image read as zero. Uniform patterns (at most two
// bit transitions) are coded by their number of set bits, every other pattern
// by lbpPoints+1.
func lbp(img *image.Gray) []uint8 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	codes := make([]uint8, w*h)

	var bits [lbpPoints]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := float64(img.Pix[y*img.Stride+x])
			for p, off := range lbpOffsets {
				v := bilinear(img, float64(y)+off[0], float64(x)+off[1])
				bits[p] = 0
				if v-center >= 0 {
					bits[p] = 1
				}
			}

			changes, sum := 0, 0
			for p := 0; p < lbpPoints-1; p++ {
				if bits[p] != bits[p+1] {
					changes++
				}
			}
			for _, b := range bits {
				sum += int(b)
			}
			if changes <= 2 {
				codes[y*w+x] = uint8(sum)
			} else {
				codes[y*w+x] = lbpPoints + 1
			}
		}
	}
	return codes
}

// bilinear samples the image at a fractional position, reading zero outside it.
func bilinear(img *image.Gray, r, c float64) float64 {
	minR, minC := math.Floor(r), math.Floor(c)
	maxR, maxC := math.Ceil(r), math.Ceil(c)
	dr, dc := r-minR, c-minC

	px := func(r, c float64) float64 {
		y, x := int(r), int(c)
		if y < 0 || x < 0 || y >= img.Bounds().Dy() || x >= img.Bounds().Dx() {
			return 0
		}
		return float64(img.Pix[y*img.Stride+x])
	}

	top := (1-dc)*px(minR, minC) + dc*px(minR, maxC)
	bottom := (1-dc)*px(maxR, minC) + dc*px(maxR, maxC)
	return (1-dr)*top + dr*bottom
}

// TextureComplexity is the Shannon entropy (base 2) of the normalized
// histogram of the uniform LBP codes of the visible pixels.
func TextureComplexity(gray *image.Gray, mask []bool) float64 {
	codes := lbp(gray)

	var hist [lbpBins]float64
	n := 0
	for i, visible := range mask {
		if visible {
			hist[codes[i]]++
			n++
		}
	}
	if n == 0 {
		return 0
	}

	ent := 0.0
	for _, c := range hist {
		d := c / float64(n)
		ent -= d * math.Log2(d+1e-10)
	}
	return utils.Round(ent, 4)
}
