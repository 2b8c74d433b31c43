package sink

import (
	"context"
	"strconv"
	"sync"

	"github.com/bara-directory/seeder/internal/entity"
)

type memoryLookup struct {
	id  string
	row entity.LookupRow
}

// Memory is a dry-run destination. It keeps lookups and written rows in
// process memory and mirrors the insert/upsert semantics of the real stores:
// plain inserts always append, upserts replace the row with the same
// conflict key.
type Memory struct {
	mode Mode

	mu         sync.Mutex
	seq        int
	lookups    map[entity.LookupKind][]memoryLookup
	businesses []entity.BusinessRow
	events     []entity.EventRow
}

// NewMemory returns an empty in-memory destination.
func NewMemory(mode Mode) *Memory {
	return &Memory{mode: mode, lookups: make(map[entity.LookupKind][]memoryLookup)}
}

func (m *Memory) Name() string { return "memory" }

// FindLookup matches by exact name, and by parent for cities.
func (m *Memory) FindLookup(_ context.Context, kind entity.LookupKind, name, parentID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lookups[kind] {
		if l.row.Name == name && (kind != entity.KindCity || l.row.ParentID == parentID) {
			return l.id, true, nil
		}
	}
	return "", false, nil
}

// CreateLookup stores row under a sequential identifier.
func (m *Memory) CreateLookup(_ context.Context, kind entity.LookupKind, row entity.LookupRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := strconv.Itoa(m.seq)
	m.lookups[kind] = append(m.lookups[kind], memoryLookup{id: id, row: row})
	return id, nil
}

// WriteBusiness appends row, or replaces a row with the same name and
// category in upsert mode.
func (m *Memory) WriteBusiness(_ context.Context, row entity.BusinessRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeUpsert {
		for i, existing := range m.businesses {
			if existing.Name == row.Name && existing.CategoryID == row.CategoryID {
				m.businesses[i] = row
				return nil
			}
		}
	}
	m.businesses = append(m.businesses, row)
	return nil
}

// WriteEvent appends row, or replaces a row with the same title, start and
// city in upsert mode.
func (m *Memory) WriteEvent(_ context.Context, row entity.EventRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeUpsert {
		for i, existing := range m.events {
			if existing.Title == row.Title && existing.StartDate.Equal(row.StartDate) && existing.CityID == row.CityID {
				m.events[i] = row
				return nil
			}
		}
	}
	m.events = append(m.events, row)
	return nil
}

// Businesses returns a copy of the written business rows.
func (m *Memory) Businesses() []entity.BusinessRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.BusinessRow(nil), m.businesses...)
}

// Events returns a copy of the written event rows.
func (m *Memory) Events() []entity.EventRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.EventRow(nil), m.events...)
}

// Lookups returns the rows created for kind, in creation order.
func (m *Memory) Lookups(kind entity.LookupKind) []entity.LookupRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]entity.LookupRow, 0, len(m.lookups[kind]))
	for _, l := range m.lookups[kind] {
		rows = append(rows, l.row)
	}
	return rows
}
