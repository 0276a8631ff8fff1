package glyphcat

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/esimov/glyphcat/utils"
	xdraw "golang.org/x/image/draw"
)

// alphaThreshold is the alpha value a pixel has to exceed to be part of the glyph.
const alphaThreshold = 10

// Glyph is a decoded image cropped to its visible pixels.
type Glyph struct {
	// Source is the full decoded image.
	Source *image.NRGBA
	// Img is Source cropped to the bounding box of the mask, with origin (0, 0).
	Img *image.NRGBA
	// Mask marks the pixels of Img whose alpha exceeds alphaThreshold, row by row.
	Mask []bool
	// Crop is the bounding box of Img inside Source.
	Crop image.Rectangle
}

// Width returns the width of the cropped image.
func (g *Glyph) Width() int { return g.Img.Bounds().Dx() }

// Height returns the height of the cropped image.
func (g *Glyph) Height() int { return g.Img.Bounds().Dy() }

// MaskCount returns the number of visible pixels.
func (g *Glyph) MaskCount() int {
	n := 0
	for _, v := range g.Mask {
		if v {
			n++
		}
	}
	return n
}

// Decode decodes PNG bytes to an NRGBA image with its min-point at (0, 0).
func Decode(data []byte) (*image.NRGBA, error) {
	if ctype := utils.DetectContentType(data); ctype != "image/png" {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, ctype)
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return imgToNRGBA(src), nil
}

// Validate reports whether data decodes as a PNG image.
func Validate(data []byte) error {
	_, err := Decode(data)
	return err
}

// Preprocess decodes the PNG bytes and crops the result to the minimal
// bounding box of its visible pixels. An image without any visible pixel is
// passed through uncropped.
func Preprocess(data []byte) (*Glyph, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return NewGlyph(src), nil
}

// NewGlyph crops an already decoded image to its visible pixels.
func NewGlyph(src *image.NRGBA) *Glyph {
	box, ok := visibleBounds(src)
	g := &Glyph{Source: src, Img: src, Crop: src.Bounds()}
	if ok {
		g.Img = imaging.Crop(src, box)
		g.Crop = box
	}
	g.Mask = alphaMask(g.Img)
	return g
}

// visibleBounds returns the bounding box of the pixels with alpha above the threshold.
func visibleBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] <= alphaThreshold {
				continue
			}
			minX, maxX = utils.Min(minX, x), utils.Max(maxX, x)
			minY, maxY = utils.Min(minY, y), utils.Max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func alphaMask(img *image.NRGBA) []bool {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		for x := 0; x < w; x++ {
			mask[y*w+x] = img.Pix[off+x*4+3] > alphaThreshold
		}
	}
	return mask
}

// encodePNG encodes the image as PNG.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("could not encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := srcBounds.Dx() * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		// Paletted, gray and premultiplied images are converted by the generic drawer.
		xdraw.Draw(dst, dstBounds, img, srcBounds.Min, xdraw.Src)
	}

	return dst
}
