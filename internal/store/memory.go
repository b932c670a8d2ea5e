package store

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of table storage
type MemoryStore struct {
	tables map[string]Table
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]Table),
	}
}

// SaveTable saves a table to the store
func (s *MemoryStore) SaveTable(t Table) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.tables[t.ID] = t
	return t, nil
}

// GetTable retrieves a table by ID
func (s *MemoryStore) GetTable(id string) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tables[id]
	if !exists {
		return Table{}, ErrTableNotFound
	}
	return t, nil
}

// UpdateTable applies fn to a copy of the table and stores it when fn succeeds.
// The write lock is held for the whole call.
func (s *MemoryStore) UpdateTable(id string, fn func(t *Table) error) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tables[id]
	if !exists {
		return Table{}, ErrTableNotFound
	}

	if err := fn(&t); err != nil {
		return t, err
	}
	t.UpdatedAt = time.Now()
	s.tables[id] = t
	return t, nil
}

// DeleteTable removes a table from the store
func (s *MemoryStore) DeleteTable(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[id]; !exists {
		return ErrTableNotFound
	}
	delete(s.tables, id)
	return nil
}

// ListTables returns all tables in the store
func (s *MemoryStore) ListTables() ([]Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].CreatedAt.Before(tables[j].CreatedAt)
	})
	return tables, nil
}
