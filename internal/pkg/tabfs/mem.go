package tabfs

import (
	"fmt"
	"sync"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

// MemStore serves tables registered in memory. It is used by tests and
// by runs over small, programmatically built tables.
type MemStore struct {
	mu     sync.Mutex
	tables map[string]*bigtab.Table
}

func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]*bigtab.Table)}
}

// Register makes a table available under the given name.
func (m *MemStore) Register(name string, table *bigtab.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = table
}

func (m *MemStore) Open(name string) (*bigtab.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("memory table %s: %w", name, bigtab.ErrNotFound)
	}
	return table, nil
}
