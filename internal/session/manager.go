package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/classroom/internal/logging"
)

// Manager is the session context shared by every screen. It loads the
// persisted record once and keeps the in-memory copy in step with storage.
type Manager struct {
	mu      sync.RWMutex
	store   *Store
	logger  logging.Logger
	current *Record
	ready   bool
}

func NewManager(store *Store, logger logging.Logger) *Manager {
	return &Manager{store: store, logger: logger.With("module", "session")}
}

// Init loads the persisted record. It is safe to call more than once; only
// the first successful call reads storage. A malformed record is wiped and
// the manager starts signed out.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return nil
	}

	rec, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrMalformedSession) {
			return err
		}
		m.logger.Warn(ctx, "discarded stored session", "error", err)
		rec = nil
	}

	m.current = rec
	m.ready = true
	return nil
}

// Ready reports whether Init has completed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Current returns a copy of the signed-in record, or nil.
func (m *Manager) Current() *Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

// Begin persists rec and makes it current.
func (m *Manager) Begin(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, rec); err != nil {
		return err
	}
	c := *rec
	m.current = &c
	m.ready = true
	m.logger.Info(ctx, "session started", "user_id", rec.ID, "role", rec.Role)
	return nil
}

// End removes the persisted record and signs out.
func (m *Manager) End(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.current = nil
	m.ready = true
	return nil
}
