package store

import (
	"context"
	"sync"
	"time"

	"github.com/worklens/worklens/internal/analysis"
)

// MemoryLedger is an in-process Ledger for tests and local runs.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]map[string]time.Time // employeeID -> fileName -> processedAt
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]map[string]time.Time)}
}

func (m *MemoryLedger) IsProcessed(ctx context.Context, employeeID, fileName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[employeeID][fileName]
	return ok, nil
}

func (m *MemoryLedger) MarkProcessed(ctx context.Context, employeeID, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[employeeID] == nil {
		m.entries[employeeID] = make(map[string]time.Time)
	}
	m.entries[employeeID][fileName] = time.Now().UTC()
	return nil
}

func (m *MemoryLedger) UnmarkProcessed(ctx context.Context, employeeID, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[employeeID], fileName)
	return nil
}

func (m *MemoryLedger) ProcessedFiles(ctx context.Context, employeeID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := make(map[string]bool, len(m.entries[employeeID]))
	for name := range m.entries[employeeID] {
		files[name] = true
	}
	return files, nil
}

// Count returns the total number of ledger entries for the employee.
func (m *MemoryLedger) Count(employeeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[employeeID])
}

// MemoryEventStore is an in-process EventStore for tests and local runs.
type MemoryEventStore struct {
	mu   sync.Mutex
	docs []analysis.EventLog
}

var _ EventStore = (*MemoryEventStore)(nil)

// NewMemoryEventStore creates an empty in-memory event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (m *MemoryEventStore) SaveEventLog(ctx context.Context, doc *analysis.EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ProcessedAt = time.Now().UTC()
	m.docs = append(m.docs, *doc)
	return nil
}

// Documents returns a copy of all persisted documents in save order.
func (m *MemoryEventStore) Documents() []analysis.EventLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]analysis.EventLog, len(m.docs))
	copy(out, m.docs)
	return out
}
