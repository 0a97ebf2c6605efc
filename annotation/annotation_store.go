package annotation

import (
	"image"
	"sync"
)

// Store owns every per-image collection, keyed by image name. Lists and masks are
// only ever replaced whole.
type Store struct {
	mu          sync.RWMutex
	annotations map[string][]Annotation
	revisions   map[string]uint64
	masks       map[string]*image.NRGBA
	baseMasks   map[string]*image.NRGBA
}

func NewAnnotationStore() *Store {
	return &Store{
		annotations: make(map[string][]Annotation),
		revisions:   make(map[string]uint64),
		masks:       make(map[string]*image.NRGBA),
		baseMasks:   make(map[string]*image.NRGBA),
	}
}

// Annotations returns a private copy of the list for key.
func (store *Store) Annotations(key string) []Annotation {
	store.mu.RLock()
	defer store.mu.RUnlock()
	list := CloneList(store.annotations[key])
	if list == nil {
		list = make([]Annotation, 0)
	}
	return list
}

// Revision increases every time the list for key is replaced.
func (store *Store) Revision(key string) uint64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.revisions[key]
}

func (store *Store) ReplaceAnnotations(key string, antns []Annotation) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.replaceLocked(key, antns)
}

// BulkReplace applies every list at once under one lock.
func (store *Store) BulkReplace(lists map[string][]Annotation) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for key, antns := range lists {
		store.replaceLocked(key, antns)
	}
}

func (store *Store) replaceLocked(key string, antns []Annotation) {
	store.annotations[key] = CloneList(antns)
	store.revisions[key]++
}

// DeleteAnnotation removes one annotation by id and reports whether it existed.
func (store *Store) DeleteAnnotation(key, id string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	list := store.annotations[key]
	idx := IndexOf(list, id)
	if idx < 0 {
		return false
	}
	next := make([]Annotation, 0, len(list)-1)
	next = append(next, list[:idx]...)
	next = append(next, list[idx+1:]...)
	store.annotations[key] = next
	store.revisions[key]++
	return true
}

// Mask returns the published mask for key. The bitmap is shared and must not be
// modified; publish a new one with ReplaceMask instead.
func (store *Store) Mask(key string) *image.NRGBA {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.masks[key]
}

func (store *Store) ReplaceMask(key string, mask *image.NRGBA) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if mask == nil {
		delete(store.masks, key)
		return
	}
	store.masks[key] = mask
}

func (store *Store) BaseMask(key string) *image.NRGBA {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.baseMasks[key]
}

func (store *Store) SetBaseMask(key string, mask *image.NRGBA) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.baseMasks[key] = mask
}

func (store *Store) ClearBaseMask(key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.baseMasks, key)
}

// Remove drops everything held for key.
func (store *Store) Remove(key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.annotations, key)
	delete(store.masks, key)
	delete(store.baseMasks, key)
	store.revisions[key]++
}

// ImageAnnotations binds the store to one image for the box editor.
type ImageAnnotations struct {
	store *Store
	key   string
}

func (store *Store) ImageAnnotations(key string) *ImageAnnotations {
	return &ImageAnnotations{store: store, key: key}
}

func (binding *ImageAnnotations) Key() string {
	return binding.key
}

func (binding *ImageAnnotations) Annotations() []Annotation {
	return binding.store.Annotations(binding.key)
}

func (binding *ImageAnnotations) Revision() uint64 {
	return binding.store.Revision(binding.key)
}

func (binding *ImageAnnotations) ReplaceAnnotations(antns []Annotation) {
	binding.store.ReplaceAnnotations(binding.key, antns)
}

// ImageMask binds the store to one image for the mask painter.
type ImageMask struct {
	store *Store
	key   string
}

func (store *Store) ImageMask(key string) *ImageMask {
	return &ImageMask{store: store, key: key}
}

func (binding *ImageMask) Key() string {
	return binding.key
}

func (binding *ImageMask) Mask() *image.NRGBA {
	return binding.store.Mask(binding.key)
}

func (binding *ImageMask) ReplaceMask(mask *image.NRGBA) {
	binding.store.ReplaceMask(binding.key, mask)
}

func (binding *ImageMask) BaseMask() *image.NRGBA {
	return binding.store.BaseMask(binding.key)
}

func (binding *ImageMask) SetBaseMask(mask *image.NRGBA) {
	binding.store.SetBaseMask(binding.key, mask)
}

func (binding *ImageMask) ClearBaseMask() {
	binding.store.ClearBaseMask(binding.key)
}
