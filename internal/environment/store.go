package environment

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StoreKey is the key under which the selected environment name is persisted.
const StoreKey = "environment"

// Store is a string key-value store that outlives the process.
// Every Manager reads through to the store, so managers sharing a store
// always agree on the current selection.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is an in-process store. Use Suite to share one by name.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

var (
	suitesMu sync.Mutex
	suites   = map[string]*MemoryStore{}
)

// Suite returns the process-wide memory store registered under name,
// creating it on first use.
func Suite(name string) *MemoryStore {
	suitesMu.Lock()
	defer suitesMu.Unlock()
	s, ok := suites[name]
	if !ok {
		s = NewMemoryStore()
		suites[name] = s
	}
	return s
}

// Store backends accepted by OpenStore.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// StoreOptions selects and locates a store backend.
type StoreOptions struct {
	Backend string
	Path    string
	Suite   string
}

// OpenStore opens the configured backend. Callers should close the result
// when it implements io.Closer.
func OpenStore(opts StoreOptions) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return Suite(opts.Suite), nil
	case BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return OpenFileStore(opts.Path)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return OpenSQLiteStore(opts.Path, opts.Suite)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", opts.Backend)
	}
}
