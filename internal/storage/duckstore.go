package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"
)

// DuckStore implements RecordStore on a single DuckDB file.
type DuckStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) the DuckDB file at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	log.Debugf("[DuckStore] Opening database at: %s", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				log.Warnf("[DuckStore] Pragma warning: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			name       VARCHAR PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at BIGINT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Load reads and decodes a record.
func (s *DuckStore) Load(name string, v any) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM records WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying record %s: %w", name, err)
	}

	if err := msgpack.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("decoding record %s: %w", name, err)
	}
	return true, nil
}

// Save encodes a record and upserts it.
func (s *DuckStore) Save(name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO records (name, payload, updated_at) VALUES (?, ?, ?)`,
		name, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *DuckStore) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM records WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

// Names lists stored record names in sorted order.
func (s *DuckStore) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name FROM records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *DuckStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
