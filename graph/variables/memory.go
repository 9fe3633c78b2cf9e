package variables

import (
	"context"
	"sort"
	"sync"

	"github.com/cayleygraph/quad"
)

var _ Variables = (*Memory)(nil)

// Memory is an in-memory variables store. It is safe for concurrent use.
type Memory struct {
	features Features

	mu   sync.RWMutex
	vals map[string]quad.Value
}

// NewMemory creates an empty in-memory store with DefaultFeatures.
func NewMemory() *Memory {
	return &Memory{
		features: DefaultFeatures,
		vals:     make(map[string]quad.Value),
	}
}

func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.vals))
	for k := range m.vals {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	keys = visibleKeys(keys)
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Get(ctx context.Context, key string) (quad.Value, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}) error {
	qv, err := m.features.Validate(key, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.vals[key] = qv
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.vals, key)
	m.mu.Unlock()
	return nil
}
