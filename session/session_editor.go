package session

import (
	"fmt"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/editor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Session) detectionLocked() error {
	if s.mode != constants.ModeDetection {
		return ErrWrongMode
	}
	return nil
}

func (s *Session) PointerDown(client coord.Point, button editor.Button) (editor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.detectionLocked(); err != nil {
		return editor.Result{}, err
	}
	res, err := s.editor.PointerDown(client, button)
	if res.Event == editor.EventRejected {
		s.logger.Info("keypoint rejected", zap.String("annotation_id", res.AnnotationID), zap.Error(err))
	}
	return res, err
}

func (s *Session) PointerMove(client coord.Point) (editor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.detectionLocked(); err != nil {
		return editor.Result{}, err
	}
	return s.editor.PointerMove(client), nil
}

func (s *Session) PointerUp() (editor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.detectionLocked(); err != nil {
		return editor.Result{}, err
	}
	return s.editor.PointerUp(), nil
}

func (s *Session) PointerLeave() (editor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.detectionLocked(); err != nil {
		return editor.Result{}, err
	}
	return s.editor.PointerLeave(), nil
}

// Skip handles the skip key while keypoints are pending.
func (s *Session) Skip(mods editor.Modifiers) (editor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.detectionLocked(); err != nil {
		return editor.Result{}, err
	}
	return s.editor.Skip(mods), nil
}

// Annotations returns the active image's list in natural pixels.
func (s *Session) Annotations() ([]annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return nil, err
	}
	return s.store.Annotations(obj.Name), nil
}

// DisplayAnnotations projects the active list for drawing. A zero display size
// uses the current viewport and the editor's cached projection.
func (s *Session) DisplayAnnotations(display coord.Size) ([]editor.DisplayAnnotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return nil, err
	}
	s.editor.Sync()
	if !display.Ready() {
		return s.editor.DisplayAnnotations(), nil
	}
	return editor.Project(s.store.Annotations(obj.Name), obj.ImageSize(), display, s.editor.PendingID()), nil
}

// ReplaceAnnotations swaps the active image's whole list. Missing ids are
// generated; a pending keypoint sequence whose annotation disappears is dropped.
func (s *Session) ReplaceAnnotations(antns []annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return err
	}
	list := make([]annotation.Annotation, 0, len(antns))
	for i, antn := range antns {
		class, found := s.classes.Find(antn.ClassID)
		if !found {
			return fmt.Errorf("%w: #%d class %d", ErrClassNotFound, i, antn.ClassID)
		}
		if antn.ID == "" {
			antn.ID = uuid.New().String()
		}
		if antn.ClassName == "" {
			antn.ClassName = class.Name
		}
		if !antn.IsValidAnnotation() {
			return fmt.Errorf("%w: #%d", ErrInvalidAnnotation, i)
		}
		list = append(list, antn.Clone())
	}
	s.store.ReplaceAnnotations(obj.Name, list)
	s.editor.Sync()
	return nil
}

func (s *Session) DeleteAnnotation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return err
	}
	if !s.store.DeleteAnnotation(obj.Name, id) {
		return fmt.Errorf("%s: %w", id, ErrAnnotationNotFound)
	}
	if s.editor.Sync() {
		s.logger.Info("pending annotation deleted", zap.String("annotation_id", id))
	}
	return nil
}
