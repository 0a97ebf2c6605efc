package mask

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnknownFormat = errors.New("unknown mask format")

// ContentType returns the mime type for a mask format.
func ContentType(format string) string {
	if format == constants.FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Encode writes buf as PNG or lossless WebP.
func Encode(w io.Writer, buf *image.NRGBA, format string) error {
	switch format {
	case "", constants.FormatPNG:
		return png.Encode(w, buf)
	case constants.FormatWebP:
		return webp.Encode(w, buf, &webp.Options{Lossless: true})
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Decode reads any registered image format into a normalized mask of the given
// natural size. Bitmaps of another size are resampled with nearest neighbour.
// A fully opaque bitmap carries no alpha information; its luminance is used
// as the selection bit instead.
func Decode(r io.Reader, size coord.ImageSize) (*image.NRGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return FromImage(src, size), nil
}

// FromImage converts src into a normalized mask of the given size.
func FromImage(src image.Image, size coord.ImageSize) *image.NRGBA {
	buf := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(buf, buf.Rect, src, src.Bounds().Min, draw.Src)
	if opaque(buf) {
		luminanceToAlpha(buf)
	}
	if buf.Rect.Dx() != size.NaturalW || buf.Rect.Dy() != size.NaturalH {
		buf = imaging.Resize(buf, size.NaturalW, size.NaturalH, imaging.NearestNeighbor)
	}
	Normalize(buf)
	return buf
}

// Preview scales a mask to display size for an overlay.
func Preview(buf *image.NRGBA, display coord.Size) *image.NRGBA {
	w, h := int(coord.Round(display.W)), int(coord.Round(display.H))
	if buf == nil || w <= 0 || h <= 0 {
		return nil
	}
	return imaging.Resize(buf, w, h, imaging.NearestNeighbor)
}

func opaque(buf *image.NRGBA) bool {
	for i := 3; i < len(buf.Pix); i += 4 {
		if buf.Pix[i] != 255 {
			return false
		}
	}
	return true
}

func luminanceToAlpha(buf *image.NRGBA) {
	for i := 0; i+3 < len(buf.Pix); i += 4 {
		y := (299*int(buf.Pix[i]) + 587*int(buf.Pix[i+1]) + 114*int(buf.Pix[i+2])) / 1000
		if y > 127 {
			buf.Pix[i+3] = 255
		} else {
			buf.Pix[i+3] = 0
		}
	}
}
