// Package mask keeps the per-image segmentation bitmap. A mask is a 4-channel
// buffer where only alpha carries the selection bit: 255 selected, 0 not.
// Selected pixels are always opaque white so the bitmap round-trips through any
// image format unchanged.
package mask

import (
	"image"

	"yolo-lab-api/coord"
)

type Mode int

const (
	ModePaint Mode = iota
	ModeErase
)

func (m Mode) String() string {
	if m == ModeErase {
		return "erase"
	}
	return "paint"
}

// NewBitmap allocates an empty mask of the natural image size.
func NewBitmap(size coord.ImageSize) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, size.NaturalW, size.NaturalH))
}

// StampCircle fills every pixel whose center lies within r of (cx, cy).
// Painting only raises coverage; erasing clears the pixel entirely.
func StampCircle(buf *image.NRGBA, cx, cy, r float64, mode Mode) {
	if buf == nil || r <= 0 {
		return
	}
	b := buf.Bounds()
	x0, x1 := clampInt(int(cx-r)-1, b.Min.X, b.Max.X), clampInt(int(cx+r)+1, b.Min.X, b.Max.X)
	y0, y1 := clampInt(int(cy-r)-1, b.Min.Y, b.Max.Y), clampInt(int(cy+r)+1, b.Min.Y, b.Max.Y)
	rr := r * r
	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > rr {
				continue
			}
			i := buf.PixOffset(x, y)
			px := buf.Pix[i : i+4 : i+4]
			if mode == ModeErase {
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			} else {
				px[0], px[1], px[2], px[3] = 255, 255, 255, 255
			}
		}
	}
}

// Normalize forces every pixel to either opaque white or transparent black.
func Normalize(buf *image.NRGBA) {
	if buf == nil {
		return
	}
	for i := 0; i+3 < len(buf.Pix); i += 4 {
		if buf.Pix[i+3] > 0 {
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = 255, 255, 255, 255
		} else {
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = 0, 0, 0
		}
	}
}

// IsEmpty reports whether no pixel has alpha > 0.
func IsEmpty(buf *image.NRGBA) bool {
	return Coverage(buf) == 0
}

// Coverage counts the selected pixels.
func Coverage(buf *image.NRGBA) int {
	if buf == nil {
		return 0
	}
	n := 0
	for i := 3; i < len(buf.Pix); i += 4 {
		if buf.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func Clone(buf *image.NRGBA) *image.NRGBA {
	if buf == nil {
		return nil
	}
	out := image.NewNRGBA(buf.Rect)
	copy(out.Pix, buf.Pix)
	return out
}

// Selected reports the bit at (x, y).
func Selected(buf *image.NRGBA, x, y int) bool {
	if buf == nil || !(image.Point{X: x, Y: y}).In(buf.Rect) {
		return false
	}
	return buf.Pix[buf.PixOffset(x, y)+3] > 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
