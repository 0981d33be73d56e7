package registry

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authguard/internal/common"
)

// MemoryStore is an in-process Store used by tests and by deployments that
// run without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string][]byte)
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, identifier string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identifier]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := make([]byte, len(record))
	copy(out, record)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, identifier string, record []byte) error {
	stored := make([]byte, len(record))
	copy(stored, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identifier] = stored
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, identifier string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[identifier]
	return ok, nil
}
