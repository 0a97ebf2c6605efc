package yolo

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"yolo-lab-api/annotation"
	"yolo-lab-api/coord"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var size = coord.ImageSize{NaturalW: 640, NaturalH: 480}

var classes = annotation.NewClassTable(annotation.DefaultClasses()...)

var example = annotation.Annotation{
	ID:        "a",
	ClassID:   0,
	ClassName: "car",
	Box:       annotation.Box{X: 100, Y: 100, W: 50, H: 40},
	Keypoints: []*annotation.Keypoint{{X: 120, Y: 110}, nil},
}

const exampleLine = "0 0.195313 0.250000 0.078125 0.083333 0.187500 0.229167 2 0.000000 0.000000 0"

func TestExportExample(t *testing.T) {
	codec := NewCodec(2, classes)
	assert.Equal(t, exampleLine, codec.Export([]annotation.Annotation{example}, size))
}

func TestExportPadsKeypoints(t *testing.T) {
	codec := NewCodec(3, classes)
	out := codec.Export([]annotation.Annotation{example}, size)
	assert.Equal(t, exampleLine+" 0.000000 0.000000 0", out)

	antn := example.Clone()
	antn.Keypoints = nil
	fields := strings.Fields(codec.Export([]annotation.Annotation{antn}, size))
	assert.Len(t, fields, 14)
}

func TestExportNoKeypoints(t *testing.T) {
	codec := NewCodec(0, classes)
	assert.Equal(t, "0 0.195313 0.250000 0.078125 0.083333", codec.Export([]annotation.Annotation{example}, size))
}

func TestExportMultipleLines(t *testing.T) {
	codec := NewCodec(2, classes)
	out := codec.Export([]annotation.Annotation{example, example}, size)
	assert.Equal(t, exampleLine+"\n"+exampleLine, out)
	assert.Equal(t, "", codec.Export(nil, size))
}

func TestExportUnmeasured(t *testing.T) {
	codec := NewCodec(2, classes)
	assert.Equal(t, "", codec.Export([]annotation.Annotation{example}, coord.ImageSize{NaturalW: 1, NaturalH: 480}))
}

func TestParseExample(t *testing.T) {
	codec := NewCodec(2, classes)
	antn, err := codec.ParseLine(exampleLine, size)
	require.NoError(t, err)
	assert.Equal(t, annotation.Box{X: 100, Y: 100, W: 50, H: 40}, antn.Box)
	require.Len(t, antn.Keypoints, 2)
	assert.Equal(t, &annotation.Keypoint{X: 120, Y: 110}, antn.Keypoints[0])
	assert.Nil(t, antn.Keypoints[1])
	assert.Equal(t, "car", antn.ClassName)
	assert.NotEmpty(t, antn.ID)
	assert.NotEqual(t, "a", antn.ID)
}

func TestParseLineErrors(t *testing.T) {
	codec := NewCodec(2, classes)
	{
		_, err := codec.ParseLine("0 0.5 0.5 0.1 0.1", size)
		assert.ErrorIs(t, err, ErrTooFewFields)
	}
	{
		_, err := codec.ParseLine(strings.Replace(exampleLine, "0 ", "9 ", 1), size)
		assert.ErrorIs(t, err, ErrUnknownClass)
	}
	{
		_, err := codec.ParseLine(strings.Replace(exampleLine, "0.250000", "abc", 1), size)
		assert.ErrorIs(t, err, ErrInvalidField)
	}
	{
		_, err := codec.ParseLine(strings.Replace(exampleLine, "0 ", "0.5 ", 1), size)
		assert.ErrorIs(t, err, ErrInvalidField)
	}
	{
		_, err := codec.ParseLine(exampleLine, coord.ImageSize{NaturalW: 1, NaturalH: 1})
		assert.ErrorIs(t, err, ErrNotReady)
	}
	{
		_, err := codec.ParseLine("0 0.5 0.5 -0.1 -0.2 0 0 0 0 0 0", size)
		assert.ErrorIs(t, err, ErrInvalidField)
	}
	{
		_, err := codec.ParseLine("0 0.5 0.5 0.1 -0.000001 0 0 0 0 0 0", size)
		assert.ErrorIs(t, err, ErrInvalidField)
	}
	{
		antn, err := codec.ParseLine("0 0.5 0.5 0 0 0 0 0 0 0 0", size)
		require.NoError(t, err)
		assert.Equal(t, true, antn.Box.IsValid())
	}
}

func TestParseExtraFieldsAccepted(t *testing.T) {
	codec := NewCodec(1, classes)
	antn, err := codec.ParseLine(exampleLine, size)
	require.NoError(t, err)
	assert.Len(t, antn.Keypoints, 1)
}

func TestParseSkipsBadLines(t *testing.T) {
	codec := NewCodec(2, classes)
	content := strings.Join([]string{exampleLine, "", "   ", "1 0.5", "7 0.5 0.5 0.1 0.1 0 0 0 0 0 0", exampleLine + "\r"}, "\n")
	antns, skipped := codec.Parse(content, size)
	assert.Len(t, antns, 2)
	require.Len(t, skipped, 2)
	assert.Equal(t, 4, skipped[0].Line)
	assert.ErrorIs(t, &skipped[0], ErrTooFewFields)
	assert.Equal(t, 5, skipped[1].Line)
	assert.ErrorIs(t, &skipped[1], ErrUnknownClass)
	assert.NotEmpty(t, skipped[1].Reason)
}

func TestToFixed(t *testing.T) {
	assert.Equal(t, "0.195313", toFixed(0.1953125))
	assert.Equal(t, "0.000000", toFixed(0))
	assert.Equal(t, "0.083333", toFixed(40.0/480))
	assert.Equal(t, "12.500000", toFixed(12.5))
	assert.Equal(t, "-0.250000", toFixed(-0.25))
	assert.Equal(t, "0.000000", toFixed(-0.0000001))
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for _, kpCount := range []int{0, 1, 3, 17} {
		for _, sz := range []coord.ImageSize{{NaturalW: 2, NaturalH: 2}, {NaturalW: 640, NaturalH: 480}, {NaturalW: 1919, NaturalH: 1081}} {
			codec := NewCodec(kpCount, classes)
			antns := make([]annotation.Annotation, 0)
			for i := 0; i < 20; i++ {
				box := annotation.Box{X: rnd.Intn(sz.NaturalW + 1), Y: rnd.Intn(sz.NaturalH + 1)}
				box.W = rnd.Intn(sz.NaturalW - box.X + 1)
				box.H = rnd.Intn(sz.NaturalH - box.Y + 1)
				class, _ := classes.Find(rnd.Intn(4))
				antn := annotation.NewAnnotation(class, box, kpCount)
				for k := range antn.Keypoints {
					if rnd.Intn(3) > 0 {
						antn.Keypoints[k] = &annotation.Keypoint{X: box.X + rnd.Intn(box.W+1), Y: box.Y + rnd.Intn(box.H+1)}
					}
				}
				antns = append(antns, antn)
			}

			parsed, skipped := codec.Parse(codec.Export(antns, sz), sz)
			require.Len(t, skipped, 0)
			require.Len(t, parsed, len(antns))
			for i := range antns {
				msg := fmt.Sprintf("kp=%d size=%v #%d", kpCount, sz, i)
				want, got := antns[i], parsed[i]
				assert.Equal(t, want.ClassID, got.ClassID, msg)
				assert.InDelta(t, want.Box.X, got.Box.X, 1, msg)
				assert.InDelta(t, want.Box.Y, got.Box.Y, 1, msg)
				assert.InDelta(t, want.Box.W, got.Box.W, 1, msg)
				assert.InDelta(t, want.Box.H, got.Box.H, 1, msg)
				require.Len(t, got.Keypoints, kpCount, msg)
				for k := range want.Keypoints {
					if want.Keypoints[k] == nil {
						assert.Nil(t, got.Keypoints[k], msg)
						continue
					}
					require.NotNil(t, got.Keypoints[k], msg)
					assert.InDelta(t, want.Keypoints[k].X, got.Keypoints[k].X, 1, msg)
					assert.InDelta(t, want.Keypoints[k].Y, got.Keypoints[k].Y, 1, msg)
				}
			}
		}
	}
}
