// Package session persists the portal client's authentication session.
//
// The token and the user snapshot are stored as one record, so a backend
// either holds a complete session or none at all.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/uniportal/pkg/model"
)

// ErrCorrupt is returned by Get when the stored record cannot be decoded.
var ErrCorrupt = errors.New("stored session is corrupt")

// Store holds at most one session record.
type Store interface {
	// Get returns the stored session, or (nil, nil) when there is none.
	Get(ctx context.Context) (*model.Session, error)
	// Set replaces the stored session.
	Set(ctx context.Context, sess *model.Session) error
	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for the named backend. path is ignored by the
// memory backend.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		st, err := NewSQLiteStore(path, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(context.Background()); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *model.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemoryStore) Set(_ context.Context, sess *model.Session) error {
	if sess == nil {
		return errors.New("set session: nil record")
	}
	cp := *sess
	m.mu.Lock()
	m.sess = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.sess = nil
	m.mu.Unlock()
	return nil
}
