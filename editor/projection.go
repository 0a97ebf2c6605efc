package editor

import (
	"yolo-lab-api/annotation"
	"yolo-lab-api/coord"
)

// DisplayAnnotation is an annotation projected into display space for drawing.
// It is never written back to the store.
type DisplayAnnotation struct {
	annotation.Annotation
	DisplayBox       annotation.Box         `json:"display_box"`
	DisplayKeypoints []*annotation.Keypoint `json:"display_keypoints"`
	Pending          bool                   `json:"pending"`
}

type projectionKey struct {
	revision uint64
	image    coord.ImageSize
	display  coord.Size
	pending  string
}

// DisplayAnnotations projects the current list into display space. The result
// is cached until the list, the image size or the display size changes.
func (e *Editor) DisplayAnnotations() []DisplayAnnotation {
	if e.list == nil || !coord.Ready(e.image, e.viewport.Size()) {
		return []DisplayAnnotation{}
	}
	key := projectionKey{
		revision: e.list.Revision(),
		image:    e.image,
		display:  e.viewport.Size(),
		pending:  e.pendingID,
	}
	if e.projected && key == e.projectionKey {
		return e.projection
	}
	e.projection = Project(e.list.Annotations(), e.image, key.display, e.pendingID)
	e.projectionKey = key
	e.projected = true
	return e.projection
}

// Project maps antns from natural to display space.
func Project(antns []annotation.Annotation, img coord.ImageSize, display coord.Size, pendingID string) []DisplayAnnotation {
	out := make([]DisplayAnnotation, 0, len(antns))
	if !coord.Ready(img, display) {
		return out
	}
	sx, sy := display.W/float64(img.NaturalW), display.H/float64(img.NaturalH)
	scale := func(v int, s float64) int {
		return int(coord.Round(float64(v) * s))
	}
	for _, antn := range antns {
		item := DisplayAnnotation{
			Annotation: antn,
			DisplayBox: annotation.Box{
				X: scale(antn.Box.X, sx),
				Y: scale(antn.Box.Y, sy),
				W: scale(antn.Box.W, sx),
				H: scale(antn.Box.H, sy),
			},
			DisplayKeypoints: make([]*annotation.Keypoint, len(antn.Keypoints)),
			Pending:          antn.ID == pendingID && pendingID != "",
		}
		for i, kp := range antn.Keypoints {
			if kp != nil {
				item.DisplayKeypoints[i] = &annotation.Keypoint{X: scale(kp.X, sx), Y: scale(kp.Y, sy)}
			}
		}
		out = append(out, item)
	}
	return out
}
