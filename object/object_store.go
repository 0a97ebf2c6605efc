package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	// decoders for dimension discovery
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/utils"
	"yolo-lab-api/yolo"

	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("image not found")
	ErrNotImage = errors.New("not a decodable image")
)

type entry struct {
	object Object
	data   []byte
}

// ObjectStore keeps the uploaded images in upload order. Names are the
// identity: registering a name twice replaces the first upload in place.
type ObjectStore struct {
	mu      sync.RWMutex
	entries []*entry
	logger  *zap.Logger
}

func NewObjectStore(logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{entries: make([]*entry, 0), logger: logger}
}

// Register stores an image after checking its extension and decoding its header.
func (store *ObjectStore) Register(name string, data []byte) (Object, error) {
	if !utils.IsImageFile(name) {
		return Object{}, fmt.Errorf("%s: %w", name, ErrNotImage)
	}
	size, format, err := decodeConfig(data)
	if err != nil {
		return Object{}, fmt.Errorf("%s: %w: %v", name, ErrNotImage, err)
	}

	object := newObject(name, format, int64(len(data)), time.Now().UnixNano()/int64(time.Millisecond), size)
	store.mu.Lock()
	defer store.mu.Unlock()
	if idx := store.indexOf(name); idx >= 0 {
		store.entries[idx] = &entry{object: object, data: data}
		store.logger.Info("image replaced", zap.String("name", name), zap.String("size", object.HumanSize))
		return object, nil
	}
	store.entries = append(store.entries, &entry{object: object, data: data})
	store.logger.Info("image registered",
		zap.String("name", name),
		zap.String("size", object.HumanSize),
		zap.Int("natural_w", size.NaturalW),
		zap.Int("natural_h", size.NaturalH))
	return object, nil
}

func (store *ObjectStore) indexOf(name string) int {
	for i, e := range store.entries {
		if e.object.Name == name {
			return i
		}
	}
	return -1
}

func (store *ObjectStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}

func (store *ObjectStore) List() []Object {
	store.mu.RLock()
	defer store.mu.RUnlock()
	objects := make([]Object, 0, len(store.entries))
	for _, e := range store.entries {
		objects = append(objects, e.object)
	}
	return objects
}

// At returns the image at a list position.
func (store *ObjectStore) At(index int) (Object, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if index < 0 || index >= len(store.entries) {
		return Object{}, false
	}
	return store.entries[index].object, true
}

// IndexOf is the list position of name, or -1.
func (store *ObjectStore) IndexOf(name string) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.indexOf(name)
}

func (store *ObjectStore) Get(name string) (Object, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	idx := store.indexOf(name)
	if idx < 0 {
		return Object{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return store.entries[idx].object, nil
}

// Data returns the stored bytes of an image.
func (store *ObjectStore) Data(name string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	idx := store.indexOf(name)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return store.entries[idx].data, nil
}

// Delete removes an image and reports the position it had.
func (store *ObjectStore) Delete(name string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	idx := store.indexOf(name)
	if idx < 0 {
		return -1, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	store.entries = append(store.entries[:idx], store.entries[idx+1:]...)
	store.logger.Info("image deleted", zap.String("name", name))
	return idx, nil
}

// FindByBase returns the first image whose name without its final extension is base.
func (store *ObjectStore) FindByBase(base string) (Object, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, e := range store.entries {
		if utils.BaseName(e.object.Name) == base {
			return e.object, true
		}
	}
	return Object{}, false
}

// Page slices the ordered list. page starts at 1; out of range pages are empty.
func (store *ObjectStore) Page(page, perPage int) ObjectPage {
	if perPage <= 0 {
		perPage = constants.DefaultItemsPerPage
	}
	if page < 1 {
		page = 1
	}
	objects := store.List()
	total := len(objects)
	result := ObjectPage{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Objects:    make([]Object, 0),
	}
	from := (page - 1) * perPage
	if from >= total {
		return result
	}
	to := from + perPage
	if to > total {
		to = total
	}
	result.Objects = objects[from:to]
	return result
}

// DecodeSize measures the stored bytes again, independent of any display.
func (store *ObjectStore) DecodeSize(ctx context.Context, name string) (coord.ImageSize, error) {
	if err := ctx.Err(); err != nil {
		return coord.ImageSize{}, err
	}
	data, err := store.Data(name)
	if err != nil {
		return coord.ImageSize{}, err
	}
	size, _, err := decodeConfig(data)
	if err != nil {
		return coord.ImageSize{}, fmt.Errorf("%s: %w: %v", name, ErrNotImage, err)
	}
	return size, nil
}

// ResolveImage finds the image a label file named base.txt belongs to.
func (store *ObjectStore) ResolveImage(ctx context.Context, base string) (string, coord.ImageSize, error) {
	object, found := store.FindByBase(base)
	if !found {
		return "", coord.ImageSize{}, fmt.Errorf("%s: %w", base, yolo.ErrNoMatchingImage)
	}
	size, err := store.DecodeSize(ctx, object.Name)
	if err != nil {
		return object.Name, coord.ImageSize{}, err
	}
	return object.Name, size, nil
}

func decodeConfig(data []byte) (coord.ImageSize, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return coord.ImageSize{}, "", err
	}
	return coord.ImageSize{NaturalW: cfg.Width, NaturalH: cfg.Height}, format, nil
}
