package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"yolo-lab-api/constants"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	ErrExportNotFound = errors.New("label export not found")
	ErrTagExists      = errors.New("export tag already exists")
)

// FileStorage is the object storage exports are uploaded to.
type FileStorage interface {
	StoreFile(ctx context.Context, objectName string, fileData []byte, contentType string) error
	DownloadFile(ctx context.Context, objectName string) ([]byte, error)
}

type exportEntry struct {
	export LabelExport
	bundle []byte
}

// LabelExportStore records label bundles. With a FileStorage every file of a
// bundle is uploaded and the zip is fetched back on download; without one the
// zip is kept in memory.
type LabelExportStore struct {
	mu      sync.RWMutex
	exports map[string]*exportEntry
	order   []string
	tags    map[string]bool
	storage FileStorage
	logger  *zap.Logger
}

func NewLabelExportStore(storage FileStorage, logger *zap.Logger) *LabelExportStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelExportStore{
		exports: make(map[string]*exportEntry),
		order:   make([]string, 0),
		tags:    make(map[string]bool),
		storage: storage,
		logger:  logger,
	}
}

// Create bundles files (label file name -> content) into a new export.
func (store *LabelExportStore) Create(ctx context.Context, sessionID, tag string, files map[string][]byte) (LabelExport, error) {
	store.mu.Lock()
	if tag != "" && store.tags[tag] {
		store.mu.Unlock()
		return LabelExport{}, fmt.Errorf("%s: %w", tag, ErrTagExists)
	}
	if tag != "" {
		store.tags[tag] = true
	}
	store.mu.Unlock()

	labelExport := LabelExport{SessionID: sessionID, Tag: tag}
	labelExport.New()
	bundle, names, err := BuildBundle(files, time.Now())
	if err != nil {
		store.releaseTag(tag)
		return LabelExport{}, err
	}
	labelExport.Files = names
	labelExport.Size = int64(len(bundle))
	labelExport.HumanSize = humanize.Bytes(uint64(len(bundle)))

	entry := &exportEntry{export: labelExport, bundle: bundle}
	if store.storage != nil {
		if err := store.upload(ctx, &labelExport, files, bundle); err != nil {
			store.releaseTag(tag)
			return LabelExport{}, err
		}
		labelExport.Stored = true
		entry.bundle = nil
	}
	labelExport.Status = constants.ExportStatusDone
	entry.export = labelExport

	store.mu.Lock()
	store.exports[labelExport.ID] = entry
	store.order = append(store.order, labelExport.ID)
	store.mu.Unlock()

	store.logger.Info("labels exported",
		zap.String("export_id", labelExport.ID),
		zap.String("session_id", sessionID),
		zap.Int("files", len(names)),
		zap.String("size", labelExport.HumanSize),
		zap.Bool("stored", labelExport.Stored))
	return labelExport, nil
}

func (store *LabelExportStore) upload(ctx context.Context, labelExport *LabelExport, files map[string][]byte, bundle []byte) error {
	for _, name := range labelExport.Files {
		if err := store.storage.StoreFile(ctx, labelExport.ObjectName(name), files[name], "text/plain"); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}
	if err := store.storage.StoreFile(ctx, labelExport.FilePath, bundle, "application/zip"); err != nil {
		return fmt.Errorf("store %s: %w", labelExport.FilePath, err)
	}
	return nil
}

func (store *LabelExportStore) releaseTag(tag string) {
	if tag == "" {
		return
	}
	store.mu.Lock()
	delete(store.tags, tag)
	store.mu.Unlock()
}

func (store *LabelExportStore) Get(id string) (LabelExport, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	entry, found := store.exports[id]
	if !found {
		return LabelExport{}, fmt.Errorf("%s: %w", id, ErrExportNotFound)
	}
	return entry.export, nil
}

// List returns exports oldest first, optionally only those of one session.
func (store *LabelExportStore) List(sessionID string) []LabelExport {
	store.mu.RLock()
	defer store.mu.RUnlock()
	exports := make([]LabelExport, 0, len(store.order))
	for _, id := range store.order {
		entry := store.exports[id]
		if sessionID != "" && entry.export.SessionID != sessionID {
			continue
		}
		exports = append(exports, entry.export)
	}
	return exports
}

// Bundle returns the zip of an export.
func (store *LabelExportStore) Bundle(ctx context.Context, id string) (LabelExport, []byte, error) {
	store.mu.RLock()
	entry, found := store.exports[id]
	store.mu.RUnlock()
	if !found {
		return LabelExport{}, nil, fmt.Errorf("%s: %w", id, ErrExportNotFound)
	}
	if entry.bundle != nil {
		return entry.export, entry.bundle, nil
	}
	data, err := store.storage.DownloadFile(ctx, entry.export.FilePath)
	if err != nil {
		return entry.export, nil, err
	}
	return entry.export, data, nil
}
