package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	tbl   TEXT NOT NULL,
	key   TEXT NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (tbl, key)
)`

// SQLite stores tables as rows of a single kv table.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (and creates) a SQLite database file.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func (s *SQLite) Get(ctx context.Context, table, key string) ([]byte, bool, error) {
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE tbl = ? AND key = ?`, table, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s/%s: %w", table, key, err)
	}
	return value, true, nil
}

func (s *SQLite) Put(ctx context.Context, table, key string, value []byte) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv (tbl, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (tbl, key) DO UPDATE SET value = excluded.value`,
		table, key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, table, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM kv WHERE tbl = ? AND key = ?`, table, key); err != nil {
		return fmt.Errorf("sqlite remove %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQLite) Scan(ctx context.Context, table string) (map[string][]byte, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, value FROM kv WHERE tbl = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite scan %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("sqlite scan %s: %w", table, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite scan %s: %w", table, err)
	}
	return out, nil
}

// Close closes the SQLite handle.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
