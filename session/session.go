// Package session is one labeling workspace: the uploaded images, the active
// image, the class table and both editing engines, plus the HTTP handlers that
// drive them. Every operation on a Session is serialized behind its mutex.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/editor"
	"yolo-lab-api/mask"
	"yolo-lab-api/object"
	"yolo-lab-api/yolo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("session not found")
	ErrNoActiveImage      = errors.New("no image selected")
	ErrNavigationLocked   = errors.New("finish or skip the pending keypoints first")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrWrongMode          = errors.New("engine is not active in the current mode")
	ErrClassNotFound      = errors.New("class not found")
	ErrInvalidClass       = errors.New("invalid class")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrInvalidAnnotation  = errors.New("invalid annotation")
)

// Config holds the labeling settings a new workspace starts with.
type Config struct {
	KeypointCount int
	MinBoxSize    float64
	BrushRadius   float64
	ItemsPerPage  int
	ImportWorkers int
	Classes       []annotation.ClassInfo
}

func (cfg Config) withDefaults() Config {
	if cfg.KeypointCount < 0 {
		cfg.KeypointCount = 0
	}
	if cfg.MinBoxSize <= 0 {
		cfg.MinBoxSize = constants.DefaultMinBoxSize
	}
	if cfg.BrushRadius <= 0 {
		cfg.BrushRadius = constants.DefaultBrushRadius
	}
	if cfg.ItemsPerPage <= 0 {
		cfg.ItemsPerPage = constants.DefaultItemsPerPage
	}
	if cfg.ImportWorkers <= 0 {
		cfg.ImportWorkers = constants.DefaultImportWorkers
	}
	if len(cfg.Classes) == 0 {
		cfg.Classes = annotation.DefaultClasses()
	}
	return cfg
}

type Session struct {
	mu      sync.Mutex
	ID      string
	Created int64
	cfg     Config
	logger  *zap.Logger

	objects  *object.ObjectStore
	store    *annotation.Store
	classes  *annotation.ClassTable
	editor   *editor.Editor
	painter  *mask.Engine
	codec    *yolo.Codec
	importer *yolo.Importer

	mode     string
	active   int
	viewport coord.Rect
}

// State is what a client needs to render the workspace chrome.
type State struct {
	SessionID     string                `json:"session_id"`
	Created       int64                 `json:"created"`
	Mode          string                `json:"mode"`
	SubMode       string                `json:"sub_mode"`
	EditorState   string                `json:"editor_state"`
	PendingID     string                `json:"pending_id,omitempty"`
	KeypointIndex int                   `json:"keypoint_index"`
	KeypointCount int                   `json:"keypoint_count"`
	SelectedClass *annotation.ClassInfo `json:"selected_class,omitempty"`
	ActiveIndex   int                   `json:"active_index"`
	ActiveImage   *object.Object        `json:"active_image,omitempty"`
	Images        int                   `json:"images"`
	Viewport      coord.Rect            `json:"viewport"`
	Drawing       *editor.DrawingBox    `json:"drawing,omitempty"`
	BrushRadius   float64               `json:"brush_radius"`
	StrokeActive  bool                  `json:"stroke_active"`
}

func (state *State) String() string {
	b, _ := json.Marshal(state)
	return string(b)
}

func New(cfg Config, logger *zap.Logger) *Session {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	logger = logger.With(zap.String("session_id", id))

	classes := annotation.NewClassTable(cfg.Classes...)
	objects := object.NewObjectStore(logger)
	codec := yolo.NewCodec(cfg.KeypointCount, classes)
	s := &Session{
		ID:       id,
		Created:  time.Now().UnixNano() / int64(time.Millisecond),
		cfg:      cfg,
		logger:   logger,
		objects:  objects,
		store:    annotation.NewAnnotationStore(),
		classes:  classes,
		editor:   editor.New(cfg.KeypointCount, cfg.MinBoxSize),
		painter:  mask.NewEngine(cfg.BrushRadius),
		codec:    codec,
		importer: yolo.NewImporter(codec, objects, cfg.ImportWorkers, logger),
		mode:     constants.ModeDetection,
		active:   -1,
	}
	s.editor.OnSubModeChange(func(subMode string) {
		s.logger.Debug("sub mode changed", zap.String("sub_mode", subMode))
	})
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	s.editor.Sync()
	state := State{
		SessionID:     s.ID,
		Created:       s.Created,
		Mode:          s.mode,
		SubMode:       s.editor.SubMode(),
		EditorState:   s.editor.State().String(),
		PendingID:     s.editor.PendingID(),
		KeypointIndex: s.editor.KeypointIndex(),
		KeypointCount: s.editor.KeypointCount(),
		ActiveIndex:   s.active,
		Images:        s.objects.Len(),
		Viewport:      s.viewport,
		Drawing:       s.editor.Drawing(),
		BrushRadius:   s.painter.Radius(),
		StrokeActive:  s.painter.Active(),
	}
	if class, found := s.editor.SelectedClass(); found {
		state.SelectedClass = &class
	}
	if obj, found := s.objects.At(s.active); found {
		state.ActiveImage = &obj
	}
	return state
}

func (s *Session) activeObject() (object.Object, error) {
	obj, found := s.objects.At(s.active)
	if !found {
		return object.Object{}, ErrNoActiveImage
	}
	return obj, nil
}

// bind points both engines at the image at index (or at nothing). The editor
// always returns to Idle; the painter keeps its buffer when the image is the same.
func (s *Session) bind(index int) {
	obj, found := s.objects.At(index)
	if !found {
		s.active = -1
		s.editor.Bind(nil, coord.ImageSize{})
		s.painter.Bind(nil, coord.ImageSize{})
		return
	}
	s.active = index
	s.editor.Bind(s.store.ImageAnnotations(obj.Name), obj.ImageSize())
	s.painter.Bind(s.store.ImageMask(obj.Name), obj.ImageSize())
	s.logger.Debug("image selected", zap.String("image", obj.Name), zap.Int("index", index))
}

// AddImage registers an uploaded image. The first image becomes active; a
// re-upload of the active image rebinds it.
func (s *Session) AddImage(name string, data []byte) (object.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.objects.Register(name, data)
	if err != nil {
		return object.Object{}, err
	}
	idx := s.objects.IndexOf(name)
	if s.active < 0 || idx == s.active {
		s.bind(idx)
	}
	return obj, nil
}

// Images returns one page of the ordered image list.
func (s *Session) Images(page, perPage int) object.ObjectPage {
	if perPage <= 0 {
		perPage = s.cfg.ItemsPerPage
	}
	return s.objects.Page(page, perPage)
}

// ImageData returns the stored bytes of an image.
func (s *Session) ImageData(name string) (object.Object, []byte, error) {
	obj, err := s.objects.Get(name)
	if err != nil {
		return object.Object{}, nil, err
	}
	data, err := s.objects.Data(name)
	return obj, data, err
}

func (s *Session) SelectImage(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.objects.IndexOf(name)
	if idx < 0 {
		return fmt.Errorf("%s: %w", name, object.ErrNotFound)
	}
	s.bind(idx)
	return nil
}

func (s *Session) SelectIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.objects.At(index); !found {
		return fmt.Errorf("index %d: %w", index, object.ErrNotFound)
	}
	s.bind(index)
	return nil
}

// Next moves to the following image. It reports whether the selection moved and
// refuses while a keypoint sequence is pending.
func (s *Session) Next() (bool, error) {
	return s.step(1)
}

func (s *Session) Prev() (bool, error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Sync()
	if s.editor.SubMode() == constants.SubModeAddKeypoints {
		return false, ErrNavigationLocked
	}
	if s.active < 0 {
		return false, ErrNoActiveImage
	}
	target := s.active + delta
	if target < 0 || target >= s.objects.Len() {
		return false, nil
	}
	s.bind(target)
	return true, nil
}

// DeleteImage removes an image with its annotations and masks. Deleting the
// active image selects the one now at the same position, else the last one.
func (s *Session) DeleteImage(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.objects.Delete(name)
	if err != nil {
		return err
	}
	s.store.Remove(name)

	switch {
	case idx == s.active:
		next := idx
		if next >= s.objects.Len() {
			next = s.objects.Len() - 1
		}
		s.bind(next)
	case idx < s.active:
		s.active--
	}
	return nil
}

func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches between detection and segmentation. Gestures of the engine
// being left are dropped.
func (s *Session) SetMode(mode string) error {
	if mode != constants.ModeDetection && mode != constants.ModeSegmentation {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return nil
	}
	s.mode = mode
	s.editor.Reset()
	if obj, found := s.objects.At(s.active); found {
		s.painter.Bind(s.store.ImageMask(obj.Name), obj.ImageSize())
	}
	return nil
}

// SetViewport records where the active image is shown, for both engines.
func (s *Session) SetViewport(viewport coord.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = viewport
	s.editor.SetViewport(viewport)
	s.painter.SetViewport(viewport)
}

func (s *Session) Classes() []annotation.ClassInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.List()
}

func (s *Session) AddClass(name, style string) (annotation.ClassInfo, error) {
	candidate := annotation.ClassInfo{Name: name, Style: style}
	if !candidate.IsValidClass() {
		return annotation.ClassInfo{}, fmt.Errorf("%w: %q", ErrInvalidClass, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.Add(name, style), nil
}

// RenameClass changes a class name for boxes drawn from now on. Existing
// annotations keep the name they were created with.
func (s *Session) RenameClass(id int, name string) (annotation.ClassInfo, error) {
	candidate := annotation.ClassInfo{ID: id, Name: name}
	if !candidate.IsValidClass() {
		return annotation.ClassInfo{}, fmt.Errorf("%w: %q", ErrInvalidClass, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.classes.Rename(id, name) {
		return annotation.ClassInfo{}, fmt.Errorf("%d: %w", id, ErrClassNotFound)
	}
	class, _ := s.classes.Find(id)
	if selected, ok := s.editor.SelectedClass(); ok && selected.ID == id {
		s.editor.SelectClass(class)
	}
	return class, nil
}

// DeleteClass removes a class. Existing annotations keep their frozen class
// name and id.
func (s *Session) DeleteClass(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.classes.Delete(id) {
		return fmt.Errorf("%d: %w", id, ErrClassNotFound)
	}
	return nil
}

// SelectClass picks the class stamped onto the next box.
func (s *Session) SelectClass(id int) (annotation.ClassInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	class, found := s.classes.Find(id)
	if !found {
		return annotation.ClassInfo{}, fmt.Errorf("%d: %w", id, ErrClassNotFound)
	}
	s.editor.SelectClass(class)
	return class, nil
}
