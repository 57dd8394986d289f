package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendDuckDB = "duckdb"
)

const recordExt = ".msgpack"

var recordName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ErrInvalidName is returned for record names that are not simple identifiers.
var ErrInvalidName = errors.New("invalid record name")

// RecordStore persists independent named records.
type RecordStore interface {
	// Load decodes the named record into v. It reports false when the record does not exist.
	Load(name string, v any) (bool, error)
	Save(name string, v any) error
	Delete(name string) error
	Names() ([]string, error)
	Close() error
}

// Open creates the record store for the given backend rooted at dataDir.
func Open(backend, dataDir string) (RecordStore, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		return NewLocalStore(filepath.Join(dataDir, "records"))
	case BackendDuckDB:
		return NewDuckStore(filepath.Join(dataDir, "planunsch.duckdb"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

func validateName(name string) error {
	if !recordName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// LocalStore implements RecordStore with one msgpack file per record.
type LocalStore struct {
	mu  sync.RWMutex
	dir string
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}

	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

// Load reads and decodes a record.
func (s *LocalStore) Load(name string, v any) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading record %s: %w", name, err)
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding record %s: %w", name, err)
	}
	return true, nil
}

// Save encodes a record and replaces the previous file atomically.
func (s *LocalStore) Save(name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing record %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing record %s: %w", name, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *LocalStore) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

// Names lists stored record names in sorted order.
func (s *LocalStore) Names() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), recordExt))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the file backend.
func (s *LocalStore) Close() error { return nil }
