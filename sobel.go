package glyphcat

import (
	"image"
)

type kernel [][]int32

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// border maps an out of range coordinate back inside [0, n).
type border func(i, n int) int

// borderReplicate repeats the outermost pixel: aaa|abcd|ddd.
func borderReplicate(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}

// borderReflect101 mirrors the image without repeating the edge pixel: cb|abcd|cb.
func borderReflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// gradient holds the horizontal and vertical derivatives of a gray image.
type gradient struct {
	w, h   int
	dx, dy []int32
}

// sobel convolves the image with the 3x3 Sobel kernels, resolving the pixels
// outside the image with the given border mode.
// See https://en.wikipedia.org/wiki/Sobel_operator
func sobel(img *image.Gray, bd border) *gradient {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	g := &gradient{w: w, h: h, dx: make([]int32, w*h), dy: make([]int32, w*h)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumX, sumY int32
			for ky := 0; ky < len(kernelY); ky++ {
				row := bd(y+ky-1, h) * img.Stride
				for kx := 0; kx < len(kernelX); kx++ {
					px := int32(img.Pix[row+bd(x+kx-1, w)])
					sumX += px * kernelX[ky][kx]
					sumY += px * kernelY[ky][kx]
				}
			}
			g.dx[y*w+x] = sumX
			g.dy[y*w+x] = sumY
		}
	}
	return g
}
