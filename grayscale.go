package glyphcat

import (
	"image"
	"math"
)

// Grayscale converts the image to an 8-bit luma image using the Rec. 601
// weights, rounding to the nearest level.
func Grayscale(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dx, dy := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, dx, dy))

	for y := 0; y < dy; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < dx; x++ {
			r, g, b := src.Pix[si], src.Pix[si+1], src.Pix[si+2]
			lum := float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114
			dst.Pix[di+x] = uint8(math.Round(lum))
			si += 4
		}
	}
	return dst
}

// luminance returns the Rec. 709 luminance of a pixel with its channels
// scaled to [0, 1].
func luminance(r, g, b uint8) float64 {
	return float64(r)/255*0.2125 + float64(g)/255*0.7154 + float64(b)/255*0.0721
}

// brightness returns the Rec. 709 relative luminance of a color on the 0-255 scale.
func brightness(c RGB) float64 {
	return 0.2126*float64(c[0]) + 0.7152*float64(c[1]) + 0.0722*float64(c[2])
}
