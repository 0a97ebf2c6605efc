// Package yolo reads and writes YOLO pose label files:
//
//	classId x_center y_center w h [kpt_x kpt_y kpt_vis]...
//
// Box and keypoint fields are normalized by the natural image size and written
// with six decimals. kpt_vis is 2 for a labeled keypoint and 0 for an empty slot.
package yolo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"yolo-lab-api/annotation"
	"yolo-lab-api/coord"
	"yolo-lab-api/utils"
)

const (
	boxFields      = 5
	keypointFields = 3

	VisibilityNone    = 0
	VisibilityLabeled = 2
)

var (
	ErrTooFewFields = errors.New("too few fields")
	ErrInvalidField = errors.New("field is not a number")
	ErrUnknownClass = errors.New("unknown class id")
	ErrNotReady     = errors.New("image size unavailable")
)

// ClassLookup resolves class ids while parsing.
type ClassLookup interface {
	Find(id int) (annotation.ClassInfo, bool)
}

// Codec is parameterized by the keypoint count and the class table.
type Codec struct {
	KeypointCount int
	Classes       ClassLookup
}

func NewCodec(keypointCount int, classes ClassLookup) *Codec {
	if keypointCount < 0 {
		keypointCount = 0
	}
	return &Codec{KeypointCount: keypointCount, Classes: classes}
}

// MinFields is the smallest field count a line must carry.
func (codec *Codec) MinFields() int {
	return boxFields + keypointFields*codec.KeypointCount
}

// Export writes one line per annotation, joined by newlines. Every line carries
// exactly KeypointCount keypoint triples. An unmeasured image exports nothing.
func (codec *Codec) Export(antns []annotation.Annotation, size coord.ImageSize) string {
	if !size.Ready() {
		return ""
	}
	w, h := float64(size.NaturalW), float64(size.NaturalH)
	lines := make([]string, 0, len(antns))
	for _, antn := range antns {
		box := antn.Box
		fields := make([]string, 0, codec.MinFields())
		fields = append(fields,
			strconv.Itoa(antn.ClassID),
			toFixed((float64(box.X)+float64(box.W)/2)/w),
			toFixed((float64(box.Y)+float64(box.H)/2)/h),
			toFixed(float64(box.W)/w),
			toFixed(float64(box.H)/h),
		)
		for i := 0; i < codec.KeypointCount; i++ {
			var kp *annotation.Keypoint
			if i < len(antn.Keypoints) {
				kp = antn.Keypoints[i]
			}
			if kp == nil {
				fields = append(fields, toFixed(0), toFixed(0), strconv.Itoa(VisibilityNone))
				continue
			}
			fields = append(fields,
				toFixed(float64(kp.X)/w),
				toFixed(float64(kp.Y)/h),
				strconv.Itoa(VisibilityLabeled),
			)
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}

// LineError explains why one line was skipped.
type LineError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseLine rebuilds one annotation in natural pixels. The id is always fresh.
func (codec *Codec) ParseLine(line string, size coord.ImageSize) (annotation.Annotation, error) {
	if !size.Ready() {
		return annotation.Annotation{}, ErrNotReady
	}
	fields := strings.Fields(line)
	if len(fields) < codec.MinFields() {
		return annotation.Annotation{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(fields), codec.MinFields())
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return annotation.Annotation{}, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		values[i] = v
	}

	classID := int(values[0])
	if float64(classID) != values[0] {
		return annotation.Annotation{}, fmt.Errorf("%w: %q", ErrInvalidField, fields[0])
	}
	class, found := codec.Classes.Find(classID)
	if !found {
		return annotation.Annotation{}, fmt.Errorf("%w: %d", ErrUnknownClass, classID)
	}

	if values[3] < 0 || values[4] < 0 {
		return annotation.Annotation{}, fmt.Errorf("%w: negative box size %q %q", ErrInvalidField, fields[3], fields[4])
	}

	w, h := float64(size.NaturalW), float64(size.NaturalH)
	bw := values[3] * w
	bh := values[4] * h
	box := annotation.Box{
		X: round(values[1]*w - bw/2),
		Y: round(values[2]*h - bh/2),
		W: round(bw),
		H: round(bh),
	}

	antn := annotation.NewAnnotation(class, box, codec.KeypointCount)
	for i := 0; i < codec.KeypointCount; i++ {
		offset := boxFields + keypointFields*i
		if values[offset+2] == VisibilityNone {
			continue
		}
		antn.Keypoints[i] = &annotation.Keypoint{
			X: round(values[offset] * w),
			Y: round(values[offset+1] * h),
		}
	}
	return antn, nil
}

// Parse reads every non-blank line. Bad lines are skipped and reported; they
// never stop the rest of the file.
func (codec *Codec) Parse(content string, size coord.ImageSize) ([]annotation.Annotation, []LineError) {
	antns := make([]annotation.Annotation, 0)
	skipped := make([]LineError, 0)
	for i, line := range utils.SplitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		antn, err := codec.ParseLine(line, size)
		if err != nil {
			skipped = append(skipped, LineError{Line: i + 1, Text: line, Reason: err.Error(), Err: err})
			continue
		}
		antns = append(antns, antn)
	}
	return antns, skipped
}

func round(v float64) int {
	return int(coord.Round(v))
}

// toFixed formats v with six decimals, rounding exact ties upward like
// Number.prototype.toFixed. strconv alone would round ties to even.
func toFixed(v float64) string {
	const digits = 6
	neg := v < 0
	exact := strconv.FormatFloat(math.Abs(v), 'f', 1100, 64)
	dot := strings.IndexByte(exact, '.')
	intPart, frac := exact[:dot], exact[dot+1:]

	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0; i-- {
			if kept[i] == '9' {
				kept[i] = '0'
				continue
			}
			kept[i]++
			break
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		}
	}
	split := len(kept) - digits
	out := string(kept[:split]) + "." + string(kept[split:])
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}
