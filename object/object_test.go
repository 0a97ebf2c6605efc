package object

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"testing"

	"yolo-lab-api/yolo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestIsValidObject(t *testing.T) {
	{
		object := Object{Name: "a.png", NaturalW: 640, NaturalH: 480}
		assert.Equal(t, true, object.IsValidObject())
	}
	{
		object := Object{Name: "a.png", NaturalW: 1, NaturalH: 480}
		assert.Equal(t, false, object.IsValidObject())
	}
	{
		object := Object{NaturalW: 640, NaturalH: 480}
		assert.Equal(t, false, object.IsValidObject())
	}
}

func TestToString(t *testing.T) {
	object := Object{Name: "a.png"}
	assert.NotEqual(t, "{}", object.String())
}

func TestRegister(t *testing.T) {
	store := NewObjectStore(nil)
	object, err := store.Register("street.png", pngBytes(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, 64, object.NaturalW)
	assert.Equal(t, 48, object.NaturalH)
	assert.Equal(t, "png", object.Format)
	assert.NotEmpty(t, object.HumanSize)

	_, err = store.Register("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrNotImage)
	_, err = store.Register("fake.jpg", []byte("hello"))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Equal(t, 1, store.Len())
}

func TestRegisterReplacesInPlace(t *testing.T) {
	store := NewObjectStore(nil)
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := store.Register(name, pngBytes(t, 8, 8))
		require.NoError(t, err)
	}
	_, err := store.Register("b.png", pngBytes(t, 16, 4))
	require.NoError(t, err)

	objects := store.List()
	require.Len(t, objects, 3)
	assert.Equal(t, "b.png", objects[1].Name)
	assert.Equal(t, 16, objects[1].NaturalW)
	assert.Equal(t, 1, store.IndexOf("b.png"))
}

func TestDelete(t *testing.T) {
	store := NewObjectStore(nil)
	for _, name := range []string{"a.png", "b.png"} {
		_, err := store.Register(name, pngBytes(t, 8, 8))
		require.NoError(t, err)
	}
	idx, err := store.Delete("a.png")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	_, err = store.Delete("a.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get("a.png")
	assert.ErrorIs(t, err, ErrNotFound)
	object, found := store.At(0)
	assert.True(t, found)
	assert.Equal(t, "b.png", object.Name)
	_, found = store.At(1)
	assert.False(t, found)
}

func TestPage(t *testing.T) {
	store := NewObjectStore(nil)
	data := pngBytes(t, 4, 4)
	for i := 0; i < 120; i++ {
		_, err := store.Register(fmt.Sprintf("img_%03d.png", i), data)
		require.NoError(t, err)
	}
	{
		page := store.Page(1, 0)
		assert.Equal(t, 50, page.PerPage)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Objects, 50)
		assert.Equal(t, "img_000.png", page.Objects[0].Name)
	}
	{
		page := store.Page(3, 50)
		assert.Len(t, page.Objects, 20)
		assert.Equal(t, "img_100.png", page.Objects[0].Name)
	}
	{
		page := store.Page(4, 50)
		assert.Len(t, page.Objects, 0)
	}
	{
		page := NewObjectStore(nil).Page(1, 50)
		assert.Equal(t, 0, page.TotalPages)
		assert.Len(t, page.Objects, 0)
	}
}

func TestResolveImage(t *testing.T) {
	store := NewObjectStore(nil)
	_, err := store.Register("scene.v2.jpg.png", pngBytes(t, 640, 480))
	require.NoError(t, err)

	name, size, err := store.ResolveImage(context.Background(), "scene.v2.jpg")
	require.NoError(t, err)
	assert.Equal(t, "scene.v2.jpg.png", name)
	assert.Equal(t, 640, size.NaturalW)
	assert.Equal(t, 480, size.NaturalH)

	_, _, err = store.ResolveImage(context.Background(), "scene")
	assert.ErrorIs(t, err, yolo.ErrNoMatchingImage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = store.ResolveImage(ctx, "scene.v2.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
