package kvstore

import (
	"context"
	"sync"
)

// Memory — потокобезопасное in-memory хранилище.
// Используется в тестах и как деградированный режим, когда ни Redis,
// ни Postgres не сконфигурированы (кэш не переживет рестарт).
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создает пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Len возвращает количество записей. Полезно для тестов.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
