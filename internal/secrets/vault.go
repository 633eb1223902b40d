// Package secrets stores JSON credentials in a secret vault.
package secrets

import (
	"context"
	"sync"
)

// Vault reads and writes JSON-object secrets. A missing or unreadable secret
// is reported as nil rather than an error; failures are logged by the
// implementation.
type Vault interface {
	Get(ctx context.Context, name string) map[string]any
	Put(ctx context.Context, name string, value map[string]any) bool
}

type MemoryVault struct {
	mu      sync.RWMutex
	secrets map[string]map[string]any
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{secrets: make(map[string]map[string]any)}
}

func (m *MemoryVault) Get(_ context.Context, name string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.secrets[name]
	if !ok {
		return nil
	}
	return clone(v)
}

func (m *MemoryVault) Put(_ context.Context, name string, value map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = clone(value)
	return true
}

func clone(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
