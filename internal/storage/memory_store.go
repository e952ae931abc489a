package storage

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	return rec, nil
}

func (m *MemoryStore) Put(rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = m.now().UTC()
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryStore) List() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (m *MemoryStore) SaveAll(recs []Record) []SaveResult {
	results := make([]SaveResult, len(recs))
	for i, rec := range recs {
		results[i] = SaveResult{ID: rec.ID, Err: m.Put(rec)}
	}
	return results
}
