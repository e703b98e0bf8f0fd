package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// KV is a flat namespace → document store.
type KV interface {
	// Get returns the stored value; ok is false when the namespace is empty.
	Get(namespace string) (value []byte, ok bool, err error)
	Put(namespace string, value []byte) error
	Delete(namespace string) error
	// Namespaces lists the populated namespaces in name order.
	Namespaces() ([]string, error)
}

// SQLiteKV stores namespaces as rows of the kv table.
type SQLiteKV struct {
	db *DB
}

// NewSQLiteKV creates a KV over an opened database.
func NewSQLiteKV(db *DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func (s *SQLiteKV) Get(namespace string) ([]byte, bool, error) {
	var value string
	err := s.db.sql.QueryRow("SELECT value FROM kv WHERE namespace = ?", namespace).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", namespace, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteKV) Put(namespace string, value []byte) error {
	_, err := s.db.sql.Exec(`
		INSERT INTO kv (namespace, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, namespace, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(namespace string) error {
	if _, err := s.db.sql.Exec("DELETE FROM kv WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("deleting %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteKV) Namespaces() ([]string, error) {
	rows, err := s.db.sql.Query("SELECT namespace FROM kv ORDER BY namespace")
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

// MemoryKV keeps namespaces in process memory. Safe for concurrent use.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(namespace string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(namespace string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[namespace] = v
	return nil
}

func (m *MemoryKV) Delete(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

func (m *MemoryKV) Namespaces() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for ns := range m.data {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}
