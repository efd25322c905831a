package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLite implements Store on a single key/value table in a SQLite file.
// It is safe for concurrent use because the underlying *sql.DB is
// concurrency-safe. Caller should Close() it when finished.
type SQLite struct {
	conn   *sql.DB
	logger *logrus.Logger

	// Prepared statements for the hot paths
	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	keysStmt   *sql.Stmt
}

// NewSQLite opens (or creates) a SQLite database at the provided path and
// ensures the kv table exists. It applies lightweight performance-oriented
// pragmas (WAL, cache sizing).
func NewSQLite(dbPath string, logger *logrus.Logger) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works better with fewer connections
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=memory;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	s := &SQLite{
		conn:   conn,
		logger: logger,
	}
	if err := s.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Storage initialized")
	return s, nil
}

func (s *SQLite) prepareStatements() error {
	var err error
	if s.getStmt, err = s.conn.Prepare("SELECT value FROM kv WHERE key = ?"); err != nil {
		return err
	}
	if s.setStmt, err = s.conn.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`); err != nil {
		return err
	}
	if s.deleteStmt, err = s.conn.Prepare("DELETE FROM kv WHERE key = ?"); err != nil {
		return err
	}
	if s.keysStmt, err = s.conn.Prepare(`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`); err != nil {
		return err
	}
	return nil
}

// Get returns the value for key and whether it exists
func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.getStmt.QueryRow(key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value for key, replacing any existing value
func (s *SQLite) Set(key string, value []byte) error {
	if _, err := s.setStmt.Exec(key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *SQLite) Delete(key string) error {
	if _, err := s.deleteStmt.Exec(key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys returns all keys with the given prefix
func (s *SQLite) Keys(prefix string) ([]string, error) {
	rows, err := s.keysStmt.Query(likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying database connection
func (s *SQLite) Close() error {
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.deleteStmt, s.keysStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.conn.Close()
}

// likePrefix escapes LIKE metacharacters so a prefix match stays a prefix
// match even when keys contain '_' (comments keys do).
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+2)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}
