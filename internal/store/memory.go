package store

import (
	"sync"

	"github.com/campuseats/campuseats/internal/errs"
)

// Memory is an in-process Store for tests and embedding.
type Memory struct {
	mu   sync.Mutex
	snap Snapshot
	set  bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return Snapshot{}, errs.ErrNoSession
	}
	return m.snap, nil
}

func (m *Memory) Save(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s
	m.set = true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	m.set = false
	return nil
}
