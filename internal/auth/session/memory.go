package session

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
)

// MemoryTable is a process-lifetime session table.
type MemoryTable struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{sessions: make(map[string]domain.Session)}
}

func (t *MemoryTable) Put(_ context.Context, fingerprint string, s domain.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[fingerprint] = s
	return nil
}

func (t *MemoryTable) Get(_ context.Context, fingerprint string) (domain.Session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[fingerprint]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (t *MemoryTable) Delete(_ context.Context, fingerprint string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[fingerprint]; !ok {
		return ErrSessionNotFound
	}
	delete(t.sessions, fingerprint)
	return nil
}

// Len returns the number of live sessions.
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

var _ Table = (*MemoryTable)(nil)
