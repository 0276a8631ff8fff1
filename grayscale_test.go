package glyphcat

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

const ImgWidth = 10
const ImgHeight = 10

func TestGrayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, ImgWidth, ImgHeight))
	fillRect(img, img.Bounds(), color.NRGBA{177, 177, 177, 255})
	img.SetNRGBA(3, 4, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(5, 6, color.NRGBA{0, 0, 255, 0})

	gray := Grayscale(img)
	for y := 0; y < ImgHeight; y++ {
		for x := 0; x < ImgWidth; x++ {
			switch {
			case x == 3 && y == 4:
				// 0.299 * 255 = 76.245
				assert.Equal(t, uint8(76), gray.GrayAt(x, y).Y)
			case x == 5 && y == 6:
				// 0.114 * 255 = 29.07, alpha is ignored
				assert.Equal(t, uint8(29), gray.GrayAt(x, y).Y)
			default:
				if v := gray.GrayAt(x, y).Y; v != 177 {
					t.Errorf("gray value expected to be 177. Got %v", v)
				}
			}
		}
	}
}

func TestGrayscale_RoundsToNearest(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	// 0.587 * 255 = 149.685
	img.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 255})
	assert.Equal(t, uint8(150), Grayscale(img).GrayAt(0, 0).Y)
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 1.0, luminance(255, 255, 255), 1e-12)
	assert.Zero(t, luminance(0, 0, 0))
	assert.InDelta(t, 0.2125, luminance(255, 0, 0), 1e-12)
	assert.InDelta(t, 255.0, brightness(RGB{255, 255, 255}), 1e-9)
}
