package school

import (
	"context"
	"sync"
)

// Memory is a settable in-process provider for tests and local development.
type Memory struct {
	mu   sync.RWMutex
	info *Info
}

func NewMemory(info *Info) *Memory {
	return &Memory{info: info}
}

func (m *Memory) Get(context.Context) (*Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return nil, nil
	}
	cp := *m.info
	return &cp, nil
}

// Set replaces the metadata returned by subsequent Get calls.
func (m *Memory) Set(info *Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info = info
}
