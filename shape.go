package glyphcat

import (
	"image"
	"math"

	"github.com/esimov/glyphcat/utils"
)

// Chain code directions, counterclockwise from east. Image rows grow downwards.
var chainDirs = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

// binaryImage is a row-major foreground map.
type binaryImage struct {
	w, h int
	pix  []bool
}

func (b *binaryImage) at(p image.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= b.w || p.Y >= b.h {
		return false
	}
	return b.pix[p.Y*b.w+p.X]
}

// traceBorder follows the outer border of the 8-connected component whose
// topmost-leftmost pixel is start (Suzuki-Abe border following) and returns
// the visited pixels in order.
func traceBorder(b *binaryImage, start image.Point) []image.Point {
	contour := []image.Point{start}

	// Look clockwise around start, beginning right after west, for its first neighbor.
	s, found := 4, false
	for i := 0; i < 8; i++ {
		s = (s + 7) & 7
		if b.at(start.Add(chainDirs[s])) {
			found = true
			break
		}
	}
	if !found {
		return contour
	}
	first := start.Add(chainDirs[s])

	cur := start
	for {
		// Look counterclockwise around cur, starting after the direction back
		// to the previous pixel.
		var next image.Point
		for i := 1; i <= 8; i++ {
			d := (s + i) & 7
			if p := cur.Add(chainDirs[d]); b.at(p) {
				next, s = p, d
				break
			}
		}
		if next == start && cur == first {
			return contour
		}
		contour = append(contour, next)
		cur = next
		s = (s + 4) & 7
	}
}

// externalContours returns the outer border of every 8-connected component,
// in raster order of their first pixel.
func externalContours(b *binaryImage) [][]image.Point {
	seen := make([]bool, len(b.pix))
	var contours [][]image.Point
	stack := make([]image.Point, 0)

	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			i := y*b.w + x
			if !b.pix[i] || seen[i] {
				continue
			}
			start := image.Pt(x, y)
			contours = append(contours, traceBorder(b, start))

			// Mark the whole component so it is traced only once.
			seen[i] = true
			stack = append(stack[:0], start)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range chainDirs {
					q := p.Add(d)
					if b.at(q) && !seen[q.Y*b.w+q.X] {
						seen[q.Y*b.w+q.X] = true
						stack = append(stack, q)
					}
				}
			}
		}
	}
	return contours
}

// polygonArea returns the absolute area of the closed polygon (shoelace formula).
func polygonArea(pts []image.Point) float64 {
	sum := 0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// perimeter returns the length of the closed polygon.
func perimeter(pts []image.Point) float64 {
	length := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		length += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return length
}

// ShapeMetrics measures the largest outer contour of the visible pixels: its
// circularity 4πA/P² and the width to height ratio of its bounding box. A
// mask with no visible pixel yields (0.5, 1.0).
func ShapeMetrics(mask []bool, w, h int) (circularity, aspect float64) {
	contours := externalContours(&binaryImage{w: w, h: h, pix: mask})
	if len(contours) == 0 {
		return 0.5, 1.0
	}

	best, bestArea := contours[0], polygonArea(contours[0])
	for _, c := range contours[1:] {
		if a := polygonArea(c); a > bestArea {
			best, bestArea = c, a
		}
	}

	p := perimeter(best)
	circularity = 4 * math.Pi * bestArea / (p*p + 1e-6)

	r := image.Rectangle{Min: best[0], Max: best[0]}
	for _, pt := range best[1:] {
		r.Min.X, r.Max.X = utils.Min(r.Min.X, pt.X), utils.Max(r.Max.X, pt.X)
		r.Min.Y, r.Max.Y = utils.Min(r.Min.Y, pt.Y), utils.Max(r.Max.Y, pt.Y)
	}
	bw, bh := r.Dx()+1, r.Dy()+1
	aspect = float64(bw) / (float64(bh) + 1e-6)

	return utils.Round(circularity, 4), utils.Round(aspect, 4)
}
