package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/model"
)

// FaultFunc lets tests fail a memory store operation. op is one of
// "find", "create", "update" or "delete"; key is the title, id or category.
type FaultFunc func(op, key string) error

// MemoryStore is an in-process LocationStore used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.RemoteRecord
	order   []string
	fault   FaultFunc
	calls   map[string]int
}

// NewMemory returns an empty MemoryStore seeded with recs.
func NewMemory(recs ...model.RemoteRecord) *MemoryStore {
	m := &MemoryStore{
		records: make(map[string]model.RemoteRecord),
		calls:   make(map[string]int),
	}
	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		m.records[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

// WithFault installs f and returns m.
func (m *MemoryStore) WithFault(f FaultFunc) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
	return m
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MemoryStore) check(op, key string) error {
	m.calls[op]++
	if m.fault == nil {
		return nil
	}
	return m.fault(op, key)
}

func (m *MemoryStore) FindByTitle(_ context.Context, title string) (*model.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("find", title); err != nil {
		return nil, err
	}

	var matches []model.RemoteRecord
	for _, id := range m.order {
		if r := m.records[id]; r.Title == title {
			matches = append(matches, r)
		}
	}
	return pickOne(matches, title)
}

func (m *MemoryStore) Create(_ context.Context, rec model.RemoteRecord) (model.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("create", rec.Title); err != nil {
		return model.RemoteRecord{}, err
	}

	rec.ID = uuid.NewString()
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

// CreateBatch inserts recs all-or-nothing.
func (m *MemoryStore) CreateBatch(_ context.Context, recs []model.RemoteRecord) ([]model.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		if err := m.check("create", rec.Title); err != nil {
			return nil, eris.Wrapf(err, "memory: batch create %q", rec.Title)
		}
	}

	out := make([]model.RemoteRecord, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.NewString()
		m.records[rec.ID] = rec
		m.order = append(m.order, rec.ID)
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, patch model.RecordPatch) (model.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("update", id); err != nil {
		return model.RemoteRecord{}, err
	}

	rec, ok := m.records[id]
	if !ok {
		return model.RemoteRecord{}, eris.Wrapf(ErrNotFound, "memory: update %s", id)
	}
	patch.Apply(&rec)
	m.records[id] = rec
	return rec, nil
}

func (m *MemoryStore) DeleteWhere(_ context.Context, category string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("delete", category); err != nil {
		return 0, err
	}

	kept := m.order[:0]
	n := 0
	for _, id := range m.order {
		if m.records[id].Category == category {
			delete(m.records, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return n, nil
}

// List returns the records of category ordered by title.
func (m *MemoryStore) List(_ context.Context, category string) ([]model.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.RemoteRecord
	for _, id := range m.order {
		if r := m.records[id]; category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
