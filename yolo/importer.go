package yolo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/utils"

	"github.com/enriquebris/goconcurrentqueue"
	"go.uber.org/zap"
)

var (
	ErrNoMatchingImage = errors.New("no image with a matching name")
	ErrNotLabelFile    = errors.New("not a .txt label file")
)

// LabelFile is one uploaded label file. ReadErr marks an upload that could
// not be read; the file is reported and skipped.
type LabelFile struct {
	Name    string
	Content []byte
	ReadErr error
}

// ImageResolver finds the image a label file belongs to (same name without the
// final extension) and measures it by decoding, independent of what is shown.
type ImageResolver interface {
	ResolveImage(ctx context.Context, baseName string) (string, coord.ImageSize, error)
}

type FileResult struct {
	File     string      `json:"file"`
	Image    string      `json:"image,omitempty"`
	Imported int         `json:"imported"`
	Skipped  []LineError `json:"skipped_lines,omitempty"`
	Error    string      `json:"error,omitempty"`

	err   error
	antns []annotation.Annotation
}

// Err is the reason the whole file was skipped, or nil.
func (res *FileResult) Err() error {
	return res.err
}

// Summary counts what a batch did.
type Summary struct {
	Files        int          `json:"files"`
	AppliedFiles int          `json:"applied_files"`
	SkippedFiles int          `json:"skipped_files"`
	Imported     int          `json:"imported"`
	SkippedLines int          `json:"skipped_lines"`
	Results      []FileResult `json:"results"`
}

type Importer struct {
	codec    *Codec
	resolver ImageResolver
	workers  int
	logger   *zap.Logger
}

func NewImporter(codec *Codec, resolver ImageResolver, workers int, logger *zap.Logger) *Importer {
	if workers <= 0 {
		workers = constants.DefaultImportWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{codec: codec, resolver: resolver, workers: workers, logger: logger}
}

type importJob struct {
	index int
	file  LabelFile
}

// Import parses a batch. Files are measured and parsed by a small worker pool;
// a failure in one file never affects another. Nothing is applied here: the
// caller gets every image's new list at once, grouped by image name.
func (imp *Importer) Import(ctx context.Context, files []LabelFile) (map[string][]annotation.Annotation, Summary) {
	results := make([]FileResult, len(files))
	queue := goconcurrentqueue.NewFIFO()
	for i, file := range files {
		queue.Enqueue(importJob{index: i, file: file})
	}

	var wg sync.WaitGroup
	for w := 0; w < imp.workers && w < len(files); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, err := queue.Dequeue()
				if err != nil {
					return
				}
				job := item.(importJob)
				results[job.index] = imp.importFile(ctx, job.file)
			}
		}()
	}
	wg.Wait()

	lists := make(map[string][]annotation.Annotation)
	summary := Summary{Files: len(files), Results: results}
	for i := range results {
		res := &results[i]
		summary.SkippedLines += len(res.Skipped)
		if res.err != nil {
			summary.SkippedFiles++
			imp.logger.Warn("label file skipped", zap.String("file", res.File), zap.Error(res.err))
			continue
		}
		summary.AppliedFiles++
		summary.Imported += res.Imported
		lists[res.Image] = append(lists[res.Image], res.antns...)
	}
	imp.logger.Info("label import parsed",
		zap.Int("files", summary.Files),
		zap.Int("applied", summary.AppliedFiles),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped_lines", summary.SkippedLines))
	return lists, summary
}

func (imp *Importer) importFile(ctx context.Context, file LabelFile) (res FileResult) {
	res.File = file.Name
	defer func() {
		if res.err != nil {
			res.Error = res.err.Error()
		}
	}()

	if err := ctx.Err(); err != nil {
		res.err = err
		return
	}
	if file.ReadErr != nil {
		res.err = file.ReadErr
		return
	}
	if !utils.IsLabelFile(file.Name) {
		res.err = ErrNotLabelFile
		return
	}
	name, size, err := imp.resolver.ResolveImage(ctx, utils.BaseName(file.Name))
	if err != nil {
		res.err = err
		return
	}
	if !size.Ready() {
		res.err = fmt.Errorf("%s: %w", name, ErrNotReady)
		return
	}
	res.Image = name

	antns, skipped := imp.codec.Parse(string(file.Content), size)
	for _, lineErr := range skipped {
		imp.logger.Warn("label line skipped",
			zap.String("file", file.Name), zap.Int("line", lineErr.Line), zap.Error(lineErr.Err))
	}
	res.antns = antns
	res.Imported = len(antns)
	if len(skipped) > 0 {
		res.Skipped = skipped
	}
	return
}
