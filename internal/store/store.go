// Package store provides the key-value stores used to persist local state
// such as the deployed-collection registry.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a minimal byte key-value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON    = "json"
	BackendLevelDB = "leveldb"
	BackendPebble  = "pebble"
	BackendMemory  = "memory"
)

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONFile(filepath.Join(dir, "store.json")), nil
	case BackendLevelDB:
		return OpenLevelDB(filepath.Join(dir, "leveldb"))
	case BackendPebble:
		return OpenPebble(filepath.Join(dir, "pebble"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (json, leveldb, pebble, memory)", backend)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }
