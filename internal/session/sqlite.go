package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/me/uniportal/internal/logging"
	"github.com/me/uniportal/pkg/model"

	_ "modernc.org/sqlite"
)

// schema holds the DDL for the session table. The CHECK constraint pins the
// table to a single row.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS client_session (
		slot       INTEGER PRIMARY KEY CHECK (slot = 1),
		token      TEXT NOT NULL,
		user_json  TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
}

// SQLiteStore keeps the session in a one-row SQLite table. Token and user
// are written by a single statement.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.OrDiscard(logger).With("component", "session-store"),
	}, nil
}

// Migrate creates the session table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context) (*model.Session, error) {
	s.logger.Debug("sql", "op", "select", "table", "client_session")

	var sess model.Session
	var userJSON string
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json, created_at FROM client_session WHERE slot = 1`,
	).Scan(&sess.Token, &userJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	return &sess, nil
}

func (s *SQLiteStore) Set(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return fmt.Errorf("set session: nil record")
	}
	s.logger.Debug("sql", "op", "upsert", "table", "client_session", "username", sess.User.Username)

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO client_session (slot, token, user_json, created_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, created_at = excluded.created_at`,
		sess.Token, string(userJSON), sess.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.logger.Debug("sql", "op", "delete", "table", "client_session")
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_session`); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
