package yolo

import (
	"context"
	"errors"
	"testing"

	"yolo-lab-api/coord"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCorrupt = errors.New("corrupt image")

type fakeResolver map[string]coord.ImageSize

func (r fakeResolver) ResolveImage(ctx context.Context, baseName string) (string, coord.ImageSize, error) {
	switch baseName {
	case "broken":
		return "", coord.ImageSize{}, errCorrupt
	case "tiny":
		return "tiny.png", coord.ImageSize{NaturalW: 1, NaturalH: 1}, nil
	}
	size, found := r[baseName]
	if !found {
		return "", coord.ImageSize{}, ErrNoMatchingImage
	}
	return baseName + ".jpg", size, nil
}

func newTestImporter() *Importer {
	resolver := fakeResolver{
		"street": {NaturalW: 640, NaturalH: 480},
		"road":   {NaturalW: 1280, NaturalH: 960},
	}
	return NewImporter(NewCodec(2, classes), resolver, 3, nil)
}

func TestImportBatch(t *testing.T) {
	imp := newTestImporter()
	files := []LabelFile{
		{Name: "street.txt", Content: []byte(exampleLine + "\n" + exampleLine)},
		{Name: "road.TXT", Content: []byte(exampleLine + "\nbad line\n")},
		{Name: "missing.txt", Content: []byte(exampleLine)},
		{Name: "broken.txt", Content: []byte(exampleLine)},
		{Name: "tiny.txt", Content: []byte(exampleLine)},
		{Name: "street.json", Content: []byte("{}")},
	}
	lists, summary := imp.Import(context.Background(), files)

	assert.Equal(t, 6, summary.Files)
	assert.Equal(t, 2, summary.AppliedFiles)
	assert.Equal(t, 4, summary.SkippedFiles)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 1, summary.SkippedLines)

	require.Len(t, lists, 2)
	assert.Len(t, lists["street.jpg"], 2)
	require.Len(t, lists["road.jpg"], 1)
	assert.Equal(t, 200, lists["road.jpg"][0].Box.X)
	assert.Equal(t, 100, lists["road.jpg"][0].Box.W)

	require.Len(t, summary.Results, 6)
	assert.Equal(t, "street.txt", summary.Results[0].File)
	assert.Equal(t, "street.jpg", summary.Results[0].Image)
	assert.Nil(t, summary.Results[0].Err())
	require.Len(t, summary.Results[1].Skipped, 1)
	assert.Equal(t, 2, summary.Results[1].Skipped[0].Line)
	assert.ErrorIs(t, summary.Results[2].Err(), ErrNoMatchingImage)
	assert.ErrorIs(t, summary.Results[3].Err(), errCorrupt)
	assert.ErrorIs(t, summary.Results[4].Err(), ErrNotReady)
	assert.ErrorIs(t, summary.Results[5].Err(), ErrNotLabelFile)
	assert.NotEmpty(t, summary.Results[5].Error)
}

func TestImportConcatenatesFilesForOneImage(t *testing.T) {
	imp := newTestImporter()
	files := []LabelFile{
		{Name: "street.txt", Content: []byte(exampleLine)},
		{Name: "dir/street.txt", Content: []byte(exampleLine + "\n" + exampleLine)},
	}
	lists, summary := imp.Import(context.Background(), files)
	assert.Equal(t, 2, summary.AppliedFiles)
	assert.Len(t, lists["street.jpg"], 3)
}

func TestImportEmptyFile(t *testing.T) {
	imp := newTestImporter()
	lists, summary := imp.Import(context.Background(), []LabelFile{{Name: "street.txt"}})
	assert.Equal(t, 1, summary.AppliedFiles)
	list, found := lists["street.jpg"]
	assert.True(t, found)
	assert.Len(t, list, 0)
}

func TestImportCanceled(t *testing.T) {
	imp := newTestImporter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lists, summary := imp.Import(ctx, []LabelFile{{Name: "street.txt", Content: []byte(exampleLine)}})
	assert.Len(t, lists, 0)
	assert.Equal(t, 1, summary.SkippedFiles)
	assert.ErrorIs(t, summary.Results[0].Err(), context.Canceled)
}

func TestImportNothing(t *testing.T) {
	lists, summary := newTestImporter().Import(context.Background(), nil)
	assert.Len(t, lists, 0)
	assert.Equal(t, 0, summary.Files)
}

func TestImportUnreadableFile(t *testing.T) {
	readErr := errors.New("unexpected EOF")
	lists, summary := newTestImporter().Import(context.Background(), []LabelFile{{Name: "street.txt", ReadErr: readErr}})
	assert.Len(t, lists, 0)
	assert.Equal(t, 1, summary.SkippedFiles)
	assert.ErrorIs(t, summary.Results[0].Err(), readErr)
}
