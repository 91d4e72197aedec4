package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/novaspeak/internal/errs"
)

type sqliteKV struct {
	conn *sql.DB
}

// NewSQLite opens or creates an SQLite database at path.
func NewSQLite(path string) (*sqliteKV, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer keeps ON CONFLICT upserts serialised.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqliteKV{conn: conn}, nil
}

func (s *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := s.conn.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.NewDatabaseError("read", "failed to read setting", err)
	}
	return val, true, nil
}

func (s *sqliteKV) Put(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value)
	if err != nil {
		return errs.NewDatabaseError("write", "failed to save setting", err)
	}
	return nil
}

func (s *sqliteKV) Close() error {
	return s.conn.Close()
}
