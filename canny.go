package glyphcat

import (
	"image"

	"github.com/esimov/glyphcat/utils"
)

const (
	cannyLow  = 80
	cannyHigh = 160

	// tan(22.5°) in 15-bit fixed point.
	tg22 = 13573
)

// canny runs the Canny edge detector on a gray image and returns the edge map
// row by row. Gradients come from the 3x3 Sobel operator with a replicated
// border and their magnitude is the L1 norm. A pixel survives non-maximum
// suppression when it is a local maximum along its gradient direction
// (quantized to four sectors); survivors above high seed the edges which then
// grow through 8-connected survivors above low.
func canny(img *image.Gray, low, high int32) []bool {
	g := sobel(img, borderReplicate)
	w, h := g.w, g.h

	mag := make([]int32, w*h)
	for i := range mag {
		mag[i] = utils.Abs(g.dx[i]) + utils.Abs(g.dy[i])
	}
	at := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	stack := make([]int, 0, w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}
			dx, dy := g.dx[i], g.dy[i]
			xs := int64(utils.Abs(dx))
			ys := int64(utils.Abs(dy)) << 15
			tg22x := xs * tg22

			var peak bool
			switch {
			case ys < tg22x:
				peak = m > at(x-1, y) && m >= at(x+1, y)
			case ys > tg22x+(xs<<16):
				peak = m > at(x, y-1) && m >= at(x, y+1)
			default:
				s := 1
				if (dx ^ dy) < 0 {
					s = -1
				}
				peak = m > at(x-s, y-1) && m > at(x+s, y+1)
			}
			if !peak {
				continue
			}
			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Hysteresis: promote the weak pixels connected to a strong one.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]bool, w*h)
	for i, s := range state {
		edges[i] = s == strong
	}
	return edges
}
