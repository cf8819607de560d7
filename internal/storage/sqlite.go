// Package storage persists per-owner key/value entries in SQLite. It is the
// durable side of the bookmark set: each client owner keeps its own
// namespace of keys such as "savedNews".
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DBFileName is created inside the configured data directory.
const DBFileName = "contentdesk.db"

type SQLiteStorage struct {
	db     *sql.DB
	logger *zap.Logger
	mutex  sync.RWMutex
}

// Open creates or reuses the database under dataDir. A database whose schema
// does not match is recreated, as is any database when FORCE_DB_RECREATE=true.
func Open(dataDir string, logger *zap.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	log := logger.With(zap.String("path", dbPath))

	needsRecreation := false
	if os.Getenv("FORCE_DB_RECREATE") == "true" {
		log.Info("forced database recreation")
		needsRecreation = true
	} else if _, err := os.Stat(dbPath); err == nil {
		if !validateSchema(dbPath, log) {
			log.Warn("schema validation failed, recreating database")
			needsRecreation = true
		}
	}
	if needsRecreation {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale database: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	log.Info("storage ready")
	return &SQLiteStorage{db: db, logger: logger}, nil
}

// NewFromDB wraps an already prepared connection.
func NewFromDB(db *sql.DB, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{db: db, logger: logger}
}

func createTables(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS local_storage (
		owner TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner, key)
	);
	CREATE INDEX IF NOT EXISTS idx_local_storage_updated ON local_storage(updated_at);`

	_, err := db.Exec(schema)
	return err
}

func validateSchema(dbPath string, log *zap.Logger) bool {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Warn("open for schema validation", zap.Error(err))
		return false
	}
	defer db.Close()

	for _, column := range []string{"owner", "key", "value", "updated_at"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('local_storage') WHERE name=?", column).Scan(&count)
		if err != nil || count == 0 {
			log.Warn("missing column", zap.String("table", "local_storage"), zap.String("column", column))
			return false
		}
	}
	return true
}

// Get returns the stored value; found is false when the key was never set.
func (s *SQLiteStorage) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM local_storage WHERE owner = ? AND key = ?", owner, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", owner, key, err)
	}
	return []byte(value), true, nil
}

// Set inserts or replaces the value.
func (s *SQLiteStorage) Set(ctx context.Context, owner, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (owner, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		owner, key, string(value))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", owner, key, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, owner, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM local_storage WHERE owner = ? AND key = ?", owner, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", owner, key, err)
	}
	return nil
}

// Keys lists the keys an owner has stored, sorted.
func (s *SQLiteStorage) Keys(ctx context.Context, owner string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM local_storage WHERE owner = ? ORDER BY key", owner)
	if err != nil {
		return nil, fmt.Errorf("list keys for %s: %w", owner, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats reports entry and owner counts for the status endpoint.
func (s *SQLiteStorage) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var entries, owners int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM local_storage").Scan(&entries); err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT owner) FROM local_storage").Scan(&owners); err != nil {
		return nil, fmt.Errorf("count owners: %w", err)
	}
	return map[string]interface{}{
		"entries": entries,
		"owners":  owners,
	}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
