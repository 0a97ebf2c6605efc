package session

import (
	"context"

	"yolo-lab-api/utils"
	"yolo-lab-api/yolo"

	"go.uber.org/zap"
)

// ExportLabels renders the active image's label file and its download name.
func (s *Session) ExportLabels() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.activeObject()
	if err != nil {
		return "", "", err
	}
	if !obj.ImageSize().Ready() {
		return "", "", yolo.ErrNotReady
	}
	content := s.codec.Export(s.store.Annotations(obj.Name), obj.ImageSize())
	return utils.LabelFileName(obj.Name), content, nil
}

// ExportAll renders one label file per measured image, keyed by file name.
// Images sharing a base name share a file name; the later image wins.
func (s *Session) ExportAll() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make(map[string][]byte)
	owners := make(map[string]string)
	for _, obj := range s.objects.List() {
		if !obj.ImageSize().Ready() {
			continue
		}
		fileName := utils.LabelFileName(obj.Name)
		if owner, found := owners[fileName]; found {
			s.logger.Warn("label file overwritten by image with the same base name",
				zap.String("file", fileName),
				zap.String("dropped", owner),
				zap.String("image", obj.Name))
		}
		owners[fileName] = obj.Name
		files[fileName] = []byte(s.codec.Export(s.store.Annotations(obj.Name), obj.ImageSize()))
	}
	return files
}

// ImportLabels parses a batch of label files and applies every matched image's
// new list in one step once the whole batch is parsed.
func (s *Session) ImportLabels(ctx context.Context, files []yolo.LabelFile) yolo.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	lists, summary := s.importer.Import(ctx, files)
	s.store.BulkReplace(lists)
	if s.editor.Sync() {
		s.logger.Info("pending keypoints dropped by import")
	}
	s.logger.Info("labels imported",
		zap.Int("images", len(lists)),
		zap.Int("annotations", summary.Imported))
	return summary
}
