package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var img = ImageSize{NaturalW: 640, NaturalH: 480}
var display = Size{W: 320, H: 240}

func TestToNatural(t *testing.T) {
	{
		p := ToNatural(Point{X: 50, Y: 60}, img, display)
		assert.Equal(t, Point{X: 100, Y: 120}, p)
	}
	{
		p := ToNatural(Point{X: 0.3, Y: 0.2}, img, display)
		assert.Equal(t, Point{X: 1, Y: 0}, p)
	}
}

func TestToNaturalIndependentAxes(t *testing.T) {
	p := ToNatural(Point{X: 10, Y: 10}, ImageSize{NaturalW: 1000, NaturalH: 300}, Size{W: 500, H: 300})
	assert.Equal(t, Point{X: 20, Y: 10}, p)
}

func TestToDisplay(t *testing.T) {
	p := ToDisplay(Point{X: 100, Y: 121}, img, display)
	assert.Equal(t, Point{X: 50, Y: 61}, p)
}

func TestClampToViewport(t *testing.T) {
	viewport := Rect{Left: 10, Top: 20, Width: 100, Height: 50}
	{
		assert.Equal(t, Point{X: 5, Y: 5}, ClampToViewport(Point{X: 15, Y: 25}, viewport))
	}
	{
		assert.Equal(t, Point{X: 0, Y: 0}, ClampToViewport(Point{X: -100, Y: 0}, viewport))
	}
	{
		assert.Equal(t, Point{X: 100, Y: 50}, ClampToViewport(Point{X: 500, Y: 500}, viewport))
	}
}

func TestReady(t *testing.T) {
	assert.Equal(t, true, Ready(img, display))
	assert.Equal(t, false, Ready(ImageSize{NaturalW: 1, NaturalH: 1}, display))
	assert.Equal(t, false, Ready(img, Size{W: 0, H: 240}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.0, Round(2.5))
	assert.Equal(t, -2.0, Round(-2.5))
	assert.Equal(t, 2.0, Round(2.4999))
}
