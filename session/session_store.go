package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// SessionStore keeps the open workspaces in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	logger   *zap.Logger
}

func NewSessionStore(cfg Config, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
	}
}

func (store *SessionStore) Create() *Session {
	s := New(store.cfg, store.logger)
	store.mu.Lock()
	store.sessions[s.ID] = s
	store.mu.Unlock()
	store.logger.Info("session created", zap.String("session_id", s.ID))
	return s
}

func (store *SessionStore) Get(id string) (*Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	s, found := store.sessions[id]
	if !found {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (store *SessionStore) Delete(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, found := store.sessions[id]; !found {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(store.sessions, id)
	store.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// IDs lists open sessions, oldest first.
func (store *SessionStore) IDs() []string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sessions := make([]*Session, 0, len(store.sessions))
	for _, s := range store.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Created == sessions[j].Created {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].Created < sessions[j].Created
	})
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

// LabelFiles renders every measured image's label file of one workspace.
func (store *SessionStore) LabelFiles(sessionID string) (map[string][]byte, error) {
	s, err := store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.ExportAll(), nil
}
