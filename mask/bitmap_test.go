package mask

import (
	"image"
	"testing"

	"yolo-lab-api/coord"

	"github.com/stretchr/testify/assert"
)

func TestStampCircle(t *testing.T) {
	{
		buf := NewBitmap(coord.ImageSize{NaturalW: 10, NaturalH: 10})
		StampCircle(buf, 5, 5, 2, ModePaint)
		assert.Equal(t, 12, Coverage(buf))
		assert.Equal(t, true, Selected(buf, 5, 5))
		assert.Equal(t, false, Selected(buf, 2, 5))
		assert.Equal(t, []uint8{255, 255, 255, 255}, buf.Pix[buf.PixOffset(5, 5):buf.PixOffset(5, 5)+4])
	}
	{
		buf := NewBitmap(coord.ImageSize{NaturalW: 10, NaturalH: 10})
		StampCircle(buf, 5, 5, 2, ModePaint)
		StampCircle(buf, 5, 5, 2, ModePaint)
		assert.Equal(t, 12, Coverage(buf))
		StampCircle(buf, 5, 5, 2, ModeErase)
		assert.Equal(t, true, IsEmpty(buf))
	}
}

func TestStampCircleClipped(t *testing.T) {
	buf := NewBitmap(coord.ImageSize{NaturalW: 4, NaturalH: 4})
	StampCircle(buf, 0, 0, 100, ModePaint)
	assert.Equal(t, 16, Coverage(buf))
	StampCircle(buf, -50, -50, 3, ModeErase)
	assert.Equal(t, 16, Coverage(buf))
}

func TestNormalize(t *testing.T) {
	buf := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(buf.Pix, []uint8{0, 0, 0, 10, 50, 60, 70, 0})
	Normalize(buf)
	assert.Equal(t, []uint8{255, 255, 255, 255, 0, 0, 0, 0}, buf.Pix)
}

func TestIsEmpty(t *testing.T) {
	assert.Equal(t, true, IsEmpty(nil))
	buf := NewBitmap(coord.ImageSize{NaturalW: 3, NaturalH: 3})
	assert.Equal(t, true, IsEmpty(buf))
	buf.Pix[7] = 1
	assert.Equal(t, false, IsEmpty(buf))
}

func TestClone(t *testing.T) {
	buf := NewBitmap(coord.ImageSize{NaturalW: 3, NaturalH: 3})
	clone := Clone(buf)
	clone.Pix[3] = 255
	assert.Equal(t, true, IsEmpty(buf))
	assert.Nil(t, Clone(nil))
}
