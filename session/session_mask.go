package session

import (
	"bytes"
	"image"
	"io"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/mask"

	"go.uber.org/zap"
)

func (s *Session) segmentationLocked() error {
	if s.mode != constants.ModeSegmentation {
		return ErrWrongMode
	}
	return nil
}

// MaskStatus reports the painter after a mask event.
type MaskStatus struct {
	Active    bool `json:"active"`
	Stamps    int  `json:"stamps"`
	Published bool `json:"published"`
	Coverage  int  `json:"coverage"`
}

func (s *Session) maskStatusLocked(published bool) MaskStatus {
	return MaskStatus{
		Active:    s.painter.Active(),
		Stamps:    s.painter.Stamps(),
		Published: published,
		Coverage:  mask.Coverage(s.painter.Published()),
	}
}

func (s *Session) StrokeStart(client coord.Point, mode mask.Mode) (MaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return MaskStatus{}, err
	}
	if err := s.painter.StrokeStart(client, mode); err != nil {
		return MaskStatus{}, err
	}
	return s.maskStatusLocked(false), nil
}

func (s *Session) StrokeMove(client coord.Point) (MaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return MaskStatus{}, err
	}
	s.painter.StrokeMove(client)
	return s.maskStatusLocked(false), nil
}

func (s *Session) StrokeEnd() (MaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return MaskStatus{}, err
	}
	return s.maskStatusLocked(s.painter.StrokeEnd()), nil
}

func (s *Session) StrokeLeave() (MaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return MaskStatus{}, err
	}
	return s.maskStatusLocked(s.painter.PointerLeave()), nil
}

func (s *Session) BrushPreview(client coord.Point) (mask.Brush, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return mask.Brush{}, false, err
	}
	brush, ok := s.painter.BrushPreview(client)
	return brush, ok, nil
}

func (s *Session) SetBrushRadius(radius float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.painter.SetRadius(radius)
	return s.painter.Radius()
}

func (s *Session) ClearMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return err
	}
	return s.painter.Clear()
}

func (s *Session) SaveBaseMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painter.SaveBaseMask()
}

func (s *Session) ClearBaseMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painter.ClearBaseMask()
}

func (s *Session) RestoreBaseMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.segmentationLocked(); err != nil {
		return err
	}
	return s.painter.RestoreBaseMask()
}

// EncodeMask writes the active image's committed mask, or its base mask.
func (s *Session) EncodeMask(w io.Writer, format string, base bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return err
	}
	var buf *image.NRGBA
	if base {
		buf = s.store.BaseMask(obj.Name)
		if buf == nil {
			return mask.ErrNoBaseMask
		}
	} else {
		buf = s.store.Mask(obj.Name)
		if buf == nil {
			buf = mask.NewBitmap(obj.ImageSize())
		}
	}
	return mask.Encode(w, buf, format)
}

// EncodeMaskPreview writes the committed mask scaled to the viewport size.
func (s *Session) EncodeMaskPreview(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.activeObject(); err != nil {
		return err
	}
	preview := mask.Preview(s.painter.Published(), s.viewport.Size())
	if preview == nil {
		return mask.ErrNotReady
	}
	return mask.Encode(w, preview, constants.FormatPNG)
}

// UploadMask replaces the active image's mask with a decoded bitmap, resampled
// to the natural size.
func (s *Session) UploadMask(data []byte) (MaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return MaskStatus{}, err
	}
	if !obj.ImageSize().Ready() {
		return MaskStatus{}, mask.ErrNotReady
	}
	buf, err := mask.Decode(bytes.NewReader(data), obj.ImageSize())
	if err != nil {
		return MaskStatus{}, err
	}
	s.store.ReplaceMask(obj.Name, buf)
	s.painter.Reload()
	s.logger.Info("mask uploaded", zap.String("image", obj.Name), zap.Int("coverage", mask.Coverage(buf)))
	return s.maskStatusLocked(true), nil
}
