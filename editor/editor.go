// Package editor turns pointer and keyboard events into box and keypoint
// annotations. It is a plain state machine with no rendering dependency.
//
// States: Idle, DrawingBox, AwaitingKeypoint(id, index). At most one annotation
// waits for keypoints at a time; a new box can only be started from Idle.
package editor

import (
	"errors"
	"math"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
)

type State int

const (
	StateIdle State = iota
	StateDrawingBox
	StateAwaitingKeypoint
)

func (s State) String() string {
	switch s {
	case StateDrawingBox:
		return "drawing_box"
	case StateAwaitingKeypoint:
		return "awaiting_keypoint"
	default:
		return "idle"
	}
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Modifiers are the modifier keys held during a key press.
type Modifiers struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Meta  bool `json:"meta"`
}

func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// Event names what a call did, so callers can give feedback.
type Event string

const (
	EventNone           Event = "none"
	EventBoxStarted     Event = "box_started"
	EventBoxResized     Event = "box_resized"
	EventBoxDiscarded   Event = "box_discarded"
	EventBoxCommitted   Event = "box_committed"
	EventKeypointSet    Event = "keypoint_set"
	EventKeypointSkip   Event = "keypoint_skipped"
	EventRejected       Event = "keypoint_rejected"
	EventPendingDropped Event = "pending_dropped"
)

var (
	ErrNotReady           = errors.New("image is not measured yet")
	ErrNoClass            = errors.New("no class selected")
	ErrKeypointOutsideBox = errors.New("keypoint must be inside the bounding box")
)

// AnnotationList is the editor's view of one image's annotations. Every mutation
// goes through ReplaceAnnotations with the complete new list.
type AnnotationList interface {
	Annotations() []annotation.Annotation
	Revision() uint64
	ReplaceAnnotations([]annotation.Annotation)
}

// Rect is a display-space rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DrawingBox is the box under the pointer while dragging.
type DrawingBox struct {
	Display Rect           `json:"display"`
	Natural annotation.Box `json:"natural"`
}

// Result describes the outcome of one input event.
type Result struct {
	Event         Event  `json:"event"`
	State         string `json:"state"`
	SubMode       string `json:"sub_mode"`
	AnnotationID  string `json:"annotation_id,omitempty"`
	KeypointIndex int    `json:"keypoint_index"`
}

type Editor struct {
	list          AnnotationList
	image         coord.ImageSize
	viewport      coord.Rect
	class         *annotation.ClassInfo
	keypointCount int
	minSize       float64

	state         State
	start         coord.Point
	drawing       *DrawingBox
	pendingID     string
	keypointIndex int

	onSubMode func(string)

	projection    []DisplayAnnotation
	projectionKey projectionKey
	projected     bool
}

func New(keypointCount int, minSize float64) *Editor {
	if keypointCount < 0 {
		keypointCount = 0
	}
	if minSize <= 0 {
		minSize = constants.DefaultMinBoxSize
	}
	return &Editor{keypointCount: keypointCount, minSize: minSize}
}

// OnSubModeChange registers fn to hear "draw_box" / "add_keypoints" switches.
func (e *Editor) OnSubModeChange(fn func(string)) {
	e.onSubMode = fn
}

// Bind points the editor at another image. Any gesture in progress is dropped.
func (e *Editor) Bind(list AnnotationList, size coord.ImageSize) {
	e.list = list
	e.image = size
	e.projected = false
	e.Reset()
}

// SetViewport updates the on-screen placement of the image. A box being drawn
// keeps its natural extent and is re-projected.
func (e *Editor) SetViewport(viewport coord.Rect) {
	old := e.viewport
	e.viewport = viewport
	if e.state != StateDrawingBox || !old.Size().Ready() || !viewport.Size().Ready() {
		return
	}
	rx, ry := viewport.Width/old.Width, viewport.Height/old.Height
	e.start = coord.Point{X: e.start.X * rx, Y: e.start.Y * ry}
	d := e.drawing.Display
	e.drawing.Display = Rect{X: d.X * rx, Y: d.Y * ry, W: d.W * rx, H: d.H * ry}
}

func (e *Editor) Viewport() coord.Rect {
	return e.viewport
}

func (e *Editor) SelectClass(class annotation.ClassInfo) {
	e.class = &class
}

func (e *Editor) SelectedClass() (annotation.ClassInfo, bool) {
	if e.class == nil {
		return annotation.ClassInfo{}, false
	}
	return *e.class, true
}

func (e *Editor) SetKeypointCount(n int) {
	if n < 0 {
		n = 0
	}
	e.keypointCount = n
}

func (e *Editor) KeypointCount() int {
	return e.keypointCount
}

func (e *Editor) State() State {
	return e.state
}

func (e *Editor) PendingID() string {
	return e.pendingID
}

func (e *Editor) KeypointIndex() int {
	return e.keypointIndex
}

// SubMode is "add_keypoints" while a keypoint sequence is pending, else "draw_box".
func (e *Editor) SubMode() string {
	if e.state == StateAwaitingKeypoint {
		return constants.SubModeAddKeypoints
	}
	return constants.SubModeDrawBox
}

// Drawing returns a copy of the box being dragged, or nil.
func (e *Editor) Drawing() *DrawingBox {
	if e.drawing == nil {
		return nil
	}
	d := *e.drawing
	return &d
}

func (e *Editor) ready() bool {
	return e.list != nil && coord.Ready(e.image, e.viewport.Size())
}

func (e *Editor) result(event Event) Result {
	return Result{
		Event:         event,
		State:         e.state.String(),
		SubMode:       e.SubMode(),
		AnnotationID:  e.pendingID,
		KeypointIndex: e.keypointIndex,
	}
}

func (e *Editor) setState(state State) {
	before := e.SubMode()
	e.state = state
	if after := e.SubMode(); after != before && e.onSubMode != nil {
		e.onSubMode(after)
	}
}

// Reset returns to Idle and forgets any gesture or pending keypoint sequence.
func (e *Editor) Reset() {
	e.drawing = nil
	e.pendingID = ""
	e.keypointIndex = 0
	e.setState(StateIdle)
}

// Sync drops a pending keypoint sequence whose annotation is gone from the list.
// Call it whenever the list changed outside the editor.
func (e *Editor) Sync() bool {
	if e.state != StateAwaitingKeypoint {
		return false
	}
	if e.list != nil && annotation.IndexOf(e.list.Annotations(), e.pendingID) >= 0 {
		return false
	}
	e.Reset()
	return true
}

func inside(p coord.Point, viewport coord.Rect) bool {
	return p.X >= viewport.Left && p.X <= viewport.Left+viewport.Width &&
		p.Y >= viewport.Top && p.Y <= viewport.Top+viewport.Height
}

// PointerDown handles a button press at a client coordinate. Primary starts a
// box from Idle; secondary places the pending keypoint.
func (e *Editor) PointerDown(client coord.Point, button Button) (Result, error) {
	e.Sync()
	switch button {
	case ButtonPrimary:
		if e.state != StateIdle {
			return e.result(EventNone), nil
		}
		if !e.ready() {
			return e.result(EventNone), ErrNotReady
		}
		if e.class == nil {
			return e.result(EventNone), ErrNoClass
		}
		if !inside(client, e.viewport) {
			return e.result(EventNone), nil
		}
		e.start = coord.ClampToViewport(client, e.viewport)
		e.drawing = &DrawingBox{Display: Rect{X: e.start.X, Y: e.start.Y}}
		e.setState(StateDrawingBox)
		return e.result(EventBoxStarted), nil
	case ButtonSecondary:
		if e.state != StateAwaitingKeypoint {
			return e.result(EventNone), nil
		}
		return e.placeKeypoint(client)
	}
	return e.result(EventNone), nil
}

// PointerMove resizes the box being drawn.
func (e *Editor) PointerMove(client coord.Point) Result {
	if e.state != StateDrawingBox {
		return e.result(EventNone)
	}
	display := spanRect(e.start, coord.ClampToViewport(client, e.viewport))
	sx, sy := coord.Scale(e.image, e.viewport.Size())
	e.drawing = &DrawingBox{
		Display: display,
		Natural: annotation.Box{
			X: int(coord.Round(display.X * sx)),
			Y: int(coord.Round(display.Y * sy)),
			W: int(coord.Round(display.W * sx)),
			H: int(coord.Round(display.H * sy)),
		},
	}
	return e.result(EventBoxResized)
}

// PointerUp finishes the box being drawn.
func (e *Editor) PointerUp() Result {
	if e.state != StateDrawingBox {
		return e.result(EventNone)
	}
	drawing := e.drawing
	e.drawing = nil
	if drawing == nil || drawing.Display.W < e.minSize || drawing.Display.H < e.minSize {
		e.setState(StateIdle)
		return e.result(EventBoxDiscarded)
	}

	antn := annotation.NewAnnotation(*e.class, drawing.Natural, e.keypointCount)
	list := e.list.Annotations()
	e.list.ReplaceAnnotations(append(list, antn))

	if e.keypointCount > 0 {
		e.pendingID = antn.ID
		e.keypointIndex = 0
		e.setState(StateAwaitingKeypoint)
	} else {
		e.setState(StateIdle)
	}
	res := e.result(EventBoxCommitted)
	res.AnnotationID = antn.ID
	return res
}

// PointerLeave behaves exactly like releasing the button.
func (e *Editor) PointerLeave() Result {
	return e.PointerUp()
}

// Skip leaves the pending keypoint slot empty and moves on. Presses with a
// modifier held are ignored.
func (e *Editor) Skip(mods Modifiers) Result {
	if mods.Any() || e.state != StateAwaitingKeypoint {
		return e.result(EventNone)
	}
	if e.Sync() {
		return e.result(EventPendingDropped)
	}
	return e.advance(nil, EventKeypointSkip)
}

func (e *Editor) placeKeypoint(client coord.Point) (Result, error) {
	if !e.ready() {
		return e.result(EventNone), ErrNotReady
	}
	list := e.list.Annotations()
	idx := annotation.IndexOf(list, e.pendingID)
	if idx < 0 {
		e.Reset()
		return e.result(EventPendingDropped), nil
	}
	p := coord.ToNatural(coord.ClampToViewport(client, e.viewport), e.image, e.viewport.Size())
	kp := &annotation.Keypoint{X: int(p.X), Y: int(p.Y)}
	if !list[idx].Box.Contains(kp.X, kp.Y) {
		return e.result(EventRejected), ErrKeypointOutsideBox
	}
	return e.advance(kp, EventKeypointSet), nil
}

// advance is the single transition out of AwaitingKeypoint(id, i): slot i takes
// kp (nil for a skip), then the sequence moves to i+1 or ends.
func (e *Editor) advance(kp *annotation.Keypoint, event Event) Result {
	list := e.list.Annotations()
	idx := annotation.IndexOf(list, e.pendingID)
	if idx < 0 {
		e.Reset()
		return e.result(EventPendingDropped)
	}

	antn := list[idx]
	antn.Keypoints = resizeSlots(antn.Keypoints, e.keypointCount)
	if e.keypointIndex < len(antn.Keypoints) {
		antn.Keypoints[e.keypointIndex] = kp
	}
	list[idx] = antn
	e.list.ReplaceAnnotations(list)

	res := e.result(event)
	if e.keypointIndex+1 >= e.keypointCount {
		e.Reset()
	} else {
		e.keypointIndex++
	}
	res.State = e.state.String()
	res.SubMode = e.SubMode()
	return res
}

func resizeSlots(slots []*annotation.Keypoint, n int) []*annotation.Keypoint {
	if len(slots) == n {
		return slots
	}
	out := make([]*annotation.Keypoint, n)
	copy(out, slots)
	return out
}

// spanRect is the rectangle spanned by two corners dragged in any direction.
func spanRect(a, b coord.Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}
