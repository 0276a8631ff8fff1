package glyphcat

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"testing"

	"github.com/esimov/glyphcat/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_PreprocessCropsToVisiblePixels(t *testing.T) {
	assert := assert.New(t)

	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	fillRect(src, image.Rect(4, 2, 9, 7), color.NRGBA{R: 255, A: 255})
	// Nearly transparent pixels do not count as visible.
	src.SetNRGBA(18, 9, color.NRGBA{B: 255, A: 10})

	g, err := Preprocess(encodeTestPNG(t, src))
	require.NoError(t, err)

	assert.Equal(image.Rect(4, 2, 9, 7), g.Crop)
	assert.Equal(5, g.Width())
	assert.Equal(5, g.Height())
	assert.Equal(25, g.MaskCount())
	assert.Equal(src.Bounds(), g.Source.Bounds())
	assert.Equal(color.NRGBA{R: 255, A: 255}, g.Img.NRGBAAt(0, 0))
}

func TestImage_PreprocessEmptyMaskPassesThrough(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	g, err := Preprocess(encodeTestPNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, src.Bounds(), g.Crop)
	assert.Equal(t, 6, g.Width())
	assert.Equal(t, 4, g.Height())
	assert.Zero(t, g.MaskCount())
}

func TestImage_PreprocessRejectsInvalidData(t *testing.T) {
	_, err := Preprocess([]byte("definitely not a png"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	// A truncated png is sniffed correctly but fails to decode.
	data := encodeTestPNG(t, image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	_, err = Preprocess(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrInvalidImage)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	_, err = Preprocess(buf.Bytes())
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestImage_PreprocessPalettedImage(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Transparent, color.White})
	src.SetColorIndex(1, 1, 1)

	g, err := Preprocess(encodeTestPNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1, 1, 2, 2), g.Crop)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, g.Img.NRGBAAt(0, 0))
}

func TestImage_ImgToNRGBA(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)
	colors := palette.Plan9
	testCases := []struct {
		name string
		img  image.Image
	}{
		{
			name: "NRGBA",
			img:  makeNRGBAImage(rect, colors),
		},
		{
			name: "YCbCr-444",
			img:  makeYCbCrImage(rect, colors, image.YCbCrSubsampleRatio444),
		},
		{
			name: "YCbCr-420",
			img:  makeYCbCrImage(rect, colors, image.YCbCrSubsampleRatio420),
		},
		{
			name: "Gray",
			img:  makeGrayImage(rect),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.img.Bounds()
			dst := imgToNRGBA(tc.img)
			if dst.Bounds() != r.Sub(r.Min) {
				t.Fatalf("expected bounds %v. Got %v", r.Sub(r.Min), dst.Bounds())
			}
			for y := r.Min.Y; y < r.Max.Y; y++ {
				off := dst.PixOffset(0, y-r.Min.Y)
				got := dst.Pix[off : off+r.Dx()*4]
				want := readRow(tc.img, y)
				if !compareBytes(got, want, 1) {
					t.Errorf("horizontal line (y=%d): got %v want %v", y, got, want)
				}
			}
		})
	}
}

func makeYCbCrImage(rect image.Rectangle, colors []color.Color, sr image.YCbCrSubsampleRatio) *image.YCbCr {
	img := image.NewYCbCr(rect, sr)
	j := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			iy := img.YOffset(x, y)
			ic := img.COffset(x, y)
			c := color.NRGBAModel.Convert(colors[j]).(color.NRGBA)
			img.Y[iy], img.Cb[ic], img.Cr[ic] = color.RGBToYCbCr(c.R, c.G, c.B)
			j++
		}
	}
	return img
}

func makeNRGBAImage(rect image.Rectangle, colors []color.Color) *image.NRGBA {
	img := image.NewNRGBA(rect)
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := color.NRGBAModel.Convert(colors[i]).(color.NRGBA)
			c.A = uint8(i % 256)
			img.SetNRGBA(x, y, c)
			i++
		}
	}
	return img
}

func makeGrayImage(rect image.Rectangle) *image.Gray {
	img := image.NewGray(rect)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return img
}

func readRow(img image.Image, y int) []uint8 {
	row := make([]byte, img.Bounds().Dx()*4)
	i := 0
	for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
		i += 4
	}
	return row
}

func compareBytes(a, b []uint8, delta int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if utils.Abs(int(a[i])-int(b[i])) > delta {
			return false
		}
	}
	return true
}
