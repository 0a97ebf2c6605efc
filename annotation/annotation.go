package annotation

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Box is an axis aligned rectangle in natural pixels, top-left origin.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Keypoint is a labeled point in natural pixels. A nil *Keypoint is an unset slot.
type Keypoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Annotation struct {
	ID        string      `json:"id"`
	ClassID   int         `json:"class_id"`
	ClassName string      `json:"class_name"`
	Box       Box         `json:"box"`
	Keypoints []*Keypoint `json:"keypoints"`
}

// NewAnnotation freezes the class at creation time and pre-fills keypointCount
// empty slots.
func NewAnnotation(class ClassInfo, box Box, keypointCount int) Annotation {
	if keypointCount < 0 {
		keypointCount = 0
	}
	return Annotation{
		ID:        uuid.New().String(),
		ClassID:   class.ID,
		ClassName: class.Name,
		Box:       box,
		Keypoints: make([]*Keypoint, keypointCount),
	}
}

// Contains is inclusive on every edge.
func (box Box) Contains(x, y int) bool {
	return x >= box.X && x <= box.X+box.W && y >= box.Y && y <= box.Y+box.H
}

func (box Box) IsValid() bool {
	return box.W >= 0 && box.H >= 0
}

// Clone deep-copies the keypoint slots.
func (antn Annotation) Clone() Annotation {
	out := antn
	if antn.Keypoints != nil {
		out.Keypoints = make([]*Keypoint, len(antn.Keypoints))
		for i, kp := range antn.Keypoints {
			if kp != nil {
				cp := *kp
				out.Keypoints[i] = &cp
			}
		}
	}
	return out
}

func (antn *Annotation) IsValidAnnotation() bool {
	return antn.ID != "" && antn.ClassID >= 0 && antn.Box.IsValid()
}

func (antn *Annotation) String() string {
	b, _ := json.Marshal(antn)
	return string(b)
}

// CloneList deep-copies a list so callers never share keypoint pointers.
func CloneList(antns []Annotation) []Annotation {
	if antns == nil {
		return nil
	}
	out := make([]Annotation, len(antns))
	for i := range antns {
		out[i] = antns[i].Clone()
	}
	return out
}

// IndexOf returns the position of id in antns, or -1.
func IndexOf(antns []Annotation, id string) int {
	for i := range antns {
		if antns[i].ID == id {
			return i
		}
	}
	return -1
}
