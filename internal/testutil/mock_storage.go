// mock_storage.go - In-memory record store for testing
package testutil

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrInjected is returned by MockRecordStore when a failure has been armed.
var ErrInjected = errors.New("injected storage failure")

// MockRecordStore implements storage.RecordStore in memory. Values are round
// tripped through msgpack so tests exercise the same encoding as production.
type MockRecordStore struct {
	mu       sync.RWMutex
	records  map[string][]byte
	failSave map[string]bool
	saves    map[string]int
}

// NewMockRecordStore creates an empty store.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		records:  make(map[string][]byte),
		failSave: make(map[string]bool),
		saves:    make(map[string]int),
	}
}

func (m *MockRecordStore) Load(name string, v any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[name]
	if !ok {
		return false, nil
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding record %s: %w", name, err)
	}
	return true, nil
}

func (m *MockRecordStore) Save(name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSave[name] {
		return ErrInjected
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	m.records[name] = data
	m.saves[name]++
	return nil
}

func (m *MockRecordStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, name)
	return nil
}

func (m *MockRecordStore) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.records))
	for name := range m.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockRecordStore) Close() error { return nil }

// FailSaves makes every Save of the named record fail until cleared.
func (m *MockRecordStore) FailSaves(name string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave[name] = fail
}

// SaveCount returns how many successful saves the named record received.
func (m *MockRecordStore) SaveCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[name]
}

// Put stores v directly, bypassing failure injection. Used to seed state.
func (m *MockRecordStore) Put(name string, v any) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = data
}
