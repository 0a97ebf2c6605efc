// Package coord converts between display pixels (what the viewport shows) and
// natural pixels (the image's own resolution).
package coord

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ImageSize is the intrinsic size of a decoded image.
type ImageSize struct {
	NaturalW int `json:"natural_w"`
	NaturalH int `json:"natural_h"`
}

// Rect is the viewport in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Size() Size {
	return Size{W: r.Width, H: r.Height}
}

// Ready reports whether the image has been measured. Sizes of 1 or less are the
// placeholder used before an image finishes loading.
func (s ImageSize) Ready() bool {
	return s.NaturalW > 1 && s.NaturalH > 1
}

func (s Size) Ready() bool {
	return s.W > 0 && s.H > 0
}

// Ready reports whether conversions between the two spaces are defined.
func Ready(img ImageSize, display Size) bool {
	return img.Ready() && display.Ready()
}

// Scale returns the natural/display ratio per axis.
func Scale(img ImageSize, display Size) (float64, float64) {
	return float64(img.NaturalW) / display.W, float64(img.NaturalH) / display.H
}

// ToNatural maps a display point into natural space, rounding to whole pixels.
func ToNatural(p Point, img ImageSize, display Size) Point {
	sx, sy := Scale(img, display)
	return Point{X: Round(p.X * sx), Y: Round(p.Y * sy)}
}

// ToDisplay maps a natural point into display space.
func ToDisplay(p Point, img ImageSize, display Size) Point {
	sx, sy := Scale(img, display)
	return Point{X: Round(p.X / sx), Y: Round(p.Y / sy)}
}

// ClampToViewport makes a client point relative to the viewport and clamps it
// into [0,width]x[0,height].
func ClampToViewport(client Point, viewport Rect) Point {
	return Point{
		X: math.Max(0, math.Min(viewport.Width, client.X-viewport.Left)),
		Y: math.Max(0, math.Min(viewport.Height, client.Y-viewport.Top)),
	}
}

// Round rounds halves toward positive infinity, like Math.round in a browser.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}
