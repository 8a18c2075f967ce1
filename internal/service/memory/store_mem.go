package memory

import (
	"context"
	"sync"

	"github.com/sandevgo/rolecast/internal/core"
)

// MapStore is the volatile backend: a mutex-guarded map. Records disappear
// on process restart.
type MapStore struct {
	mu      sync.RWMutex
	records map[string]core.MemoryRecord
	persona string
}

func NewMapStore(persona string) *MapStore {
	return &MapStore{
		records: make(map[string]core.MemoryRecord),
		persona: persona,
	}
}

func (s *MapStore) Get(ctx context.Context, id string) (core.MemoryRecord, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	rec = NewRecord(s.persona)
	s.mu.Lock()
	// Another request may have created the record in between; keep theirs.
	if existing, ok := s.records[id]; ok {
		rec = existing
	} else {
		s.records[id] = rec
	}
	s.mu.Unlock()
	return rec, nil
}

func (s *MapStore) Update(ctx context.Context, id string, rec core.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		existing = NewRecord(s.persona)
	}
	s.records[id] = merge(existing, rec)
	return nil
}

func (s *MapStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MapStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]core.MemoryRecord)
	return nil
}
