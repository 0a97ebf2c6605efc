package mask

import (
	"errors"
	"image"

	"yolo-lab-api/coord"
)

var (
	ErrNotReady   = errors.New("mask is not bound to a measured image")
	ErrEmptyMask  = errors.New("mask is empty")
	ErrNoBaseMask = errors.New("no base mask saved")
)

// Target is where committed masks are published, normally the annotation store
// bound to one image.
type Target interface {
	Key() string
	Mask() *image.NRGBA
	ReplaceMask(*image.NRGBA)
	BaseMask() *image.NRGBA
	SetBaseMask(*image.NRGBA)
	ClearBaseMask()
}

// Brush is the cursor preview in display space.
type Brush struct {
	Center coord.Point `json:"center"`
	Radius float64     `json:"radius"`
}

// Engine paints into a private working buffer and publishes only on commit, so
// nothing outside ever sees half a stroke.
type Engine struct {
	target   Target
	key      string
	size     coord.ImageSize
	buf      *image.NRGBA
	viewport coord.Rect
	radius   float64

	active bool
	mode   Mode
	stamps int
}

func NewEngine(radius float64) *Engine {
	if radius <= 0 {
		radius = 1
	}
	return &Engine{radius: radius}
}

// Bind attaches the engine to an image. The working buffer is reallocated and
// reloaded only when the image identity or natural size changes; it reports
// whether that happened. A stroke in progress is discarded.
func (e *Engine) Bind(target Target, size coord.ImageSize) bool {
	abandoned := e.active
	e.active = false
	e.stamps = 0
	key := ""
	if target != nil {
		key = target.Key()
	}
	same := e.buf != nil && e.target != nil && key == e.key && size == e.size
	e.target = target
	if same {
		if abandoned {
			e.Reload()
		}
		return false
	}
	e.key = key
	e.size = size
	e.buf = nil
	if target != nil && size.Ready() {
		e.buf = NewBitmap(size)
		e.load()
	}
	return true
}

// Reload copies the published mask into the working buffer, e.g. after the mask
// was replaced from outside.
func (e *Engine) Reload() {
	if e.buf == nil {
		return
	}
	e.active = false
	e.stamps = 0
	for i := range e.buf.Pix {
		e.buf.Pix[i] = 0
	}
	e.load()
}

func (e *Engine) load() {
	published := e.target.Mask()
	if published == nil {
		return
	}
	if published.Rect.Dx() != e.size.NaturalW || published.Rect.Dy() != e.size.NaturalH {
		published = FromImage(published, e.size)
	}
	copy(e.buf.Pix, published.Pix)
}

func (e *Engine) SetViewport(viewport coord.Rect) {
	e.viewport = viewport
}

func (e *Engine) SetRadius(radius float64) {
	if radius > 0 {
		e.radius = radius
	}
}

func (e *Engine) Radius() float64 {
	return e.radius
}

func (e *Engine) Active() bool {
	return e.active
}

// Stamps is the number of stamps in the current stroke.
func (e *Engine) Stamps() int {
	return e.stamps
}

func (e *Engine) ready() bool {
	return e.buf != nil && coord.Ready(e.size, e.viewport.Size())
}

func (e *Engine) stamp(client coord.Point) {
	p := coord.ToNatural(coord.ClampToViewport(client, e.viewport), e.size, e.viewport.Size())
	StampCircle(e.buf, p.X, p.Y, e.radius, e.mode)
	e.stamps++
}

// StrokeStart begins a paint (mode ModePaint) or erase stroke and stamps once.
func (e *Engine) StrokeStart(client coord.Point, mode Mode) error {
	if !e.ready() {
		return ErrNotReady
	}
	e.active = true
	e.mode = mode
	e.stamps = 0
	e.stamp(client)
	return nil
}

// StrokeMove stamps once per pointer sample; samples are not interpolated.
func (e *Engine) StrokeMove(client coord.Point) {
	if !e.active {
		return
	}
	e.stamp(client)
}

// StrokeEnd normalizes the working buffer and publishes a copy. It reports
// whether anything was published.
func (e *Engine) StrokeEnd() bool {
	if !e.active {
		return false
	}
	e.active = false
	Normalize(e.buf)
	e.target.ReplaceMask(Clone(e.buf))
	return true
}

// PointerLeave commits like a button release.
func (e *Engine) PointerLeave() bool {
	return e.StrokeEnd()
}

// Published returns the committed mask, never the working buffer.
func (e *Engine) Published() *image.NRGBA {
	if e.target == nil {
		return nil
	}
	return e.target.Mask()
}

// Clear publishes an empty mask.
func (e *Engine) Clear() error {
	if e.buf == nil {
		return ErrNotReady
	}
	e.active = false
	for i := range e.buf.Pix {
		e.buf.Pix[i] = 0
	}
	e.target.ReplaceMask(Clone(e.buf))
	return nil
}

// SaveBaseMask snapshots the published mask. An empty mask is refused.
func (e *Engine) SaveBaseMask() error {
	if e.target == nil {
		return ErrNotReady
	}
	published := e.target.Mask()
	if IsEmpty(published) {
		return ErrEmptyMask
	}
	e.target.SetBaseMask(Clone(published))
	return nil
}

func (e *Engine) ClearBaseMask() error {
	if e.target == nil {
		return ErrNotReady
	}
	e.target.ClearBaseMask()
	return nil
}

// RestoreBaseMask publishes the saved snapshot as the live mask.
func (e *Engine) RestoreBaseMask() error {
	if e.buf == nil {
		return ErrNotReady
	}
	base := e.target.BaseMask()
	if base == nil {
		return ErrNoBaseMask
	}
	e.target.ReplaceMask(Clone(base))
	e.Reload()
	return nil
}

// BrushPreview places the brush outline under the pointer in display space.
func (e *Engine) BrushPreview(client coord.Point) (Brush, bool) {
	if !e.ready() {
		return Brush{}, false
	}
	sx, _ := coord.Scale(e.size, e.viewport.Size())
	return Brush{
		Center: coord.ClampToViewport(client, e.viewport),
		Radius: e.radius / sx,
	}, true
}
