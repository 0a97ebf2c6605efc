package annotation

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplace(t *testing.T) {
	store := NewAnnotationStore()
	assert.Len(t, store.Annotations("a.jpg"), 0)
	assert.Equal(t, uint64(0), store.Revision("a.jpg"))

	store.ReplaceAnnotations("a.jpg", []Annotation{annotation})
	assert.Equal(t, uint64(1), store.Revision("a.jpg"))

	list := store.Annotations("a.jpg")
	require.Len(t, list, 1)
	list[0].Keypoints[0].X = 1
	assert.Equal(t, 120, store.Annotations("a.jpg")[0].Keypoints[0].X)
}

func TestStoreBulkReplace(t *testing.T) {
	store := NewAnnotationStore()
	store.BulkReplace(map[string][]Annotation{
		"a.jpg": {annotation},
		"b.jpg": {annotation, annotation},
	})
	assert.Len(t, store.Annotations("a.jpg"), 1)
	assert.Len(t, store.Annotations("b.jpg"), 2)
}

func TestStoreDeleteAnnotation(t *testing.T) {
	store := NewAnnotationStore()
	other := annotation.Clone()
	other.ID = "other"
	store.ReplaceAnnotations("a.jpg", []Annotation{annotation, other})

	assert.Equal(t, true, store.DeleteAnnotation("a.jpg", "id"))
	assert.Equal(t, false, store.DeleteAnnotation("a.jpg", "id"))
	list := store.Annotations("a.jpg")
	require.Len(t, list, 1)
	assert.Equal(t, "other", list[0].ID)
	assert.Equal(t, uint64(2), store.Revision("a.jpg"))
}

func TestStoreMasks(t *testing.T) {
	store := NewAnnotationStore()
	binding := store.ImageMask("a.jpg")
	assert.Nil(t, binding.Mask())

	mask := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	binding.ReplaceMask(mask)
	assert.Equal(t, mask, store.Mask("a.jpg"))

	binding.SetBaseMask(mask)
	assert.Equal(t, mask, binding.BaseMask())
	binding.ClearBaseMask()
	assert.Nil(t, binding.BaseMask())

	store.Remove("a.jpg")
	assert.Nil(t, store.Mask("a.jpg"))
}

func TestImageAnnotationsBinding(t *testing.T) {
	store := NewAnnotationStore()
	binding := store.ImageAnnotations("a.jpg")
	binding.ReplaceAnnotations([]Annotation{annotation})
	assert.Equal(t, "a.jpg", binding.Key())
	assert.Len(t, binding.Annotations(), 1)
	assert.Equal(t, uint64(1), binding.Revision())
	assert.Len(t, store.Annotations("b.jpg"), 0)
}
