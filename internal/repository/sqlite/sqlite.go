// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. The schema lives in migrations/*.sql, embedded in the
// binary and applied with goose on start-up.
//
// Open(":memory:") gives each test its own throwaway database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// pragmas run on every pooled connection. Foreign keys are off by default in
// SQLite; busy_timeout makes writers wait for the lock instead of failing.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB owns the connection pool. The per-entity stores share it.
type DB struct {
	conn *sql.DB
}

// Open connects to the database at path, applies pending migrations and
// returns the ready DB.
//
// path examples:
//   - "data/flexfolio.db" → file-backed, survives restarts
//   - ":memory:"          → in-memory, gone when closed
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate empty database, so the
	// pool must never open a second one.
	if isMemory(path) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, conn, "migrations")
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Users() *UserStore       { return &UserStore{conn: db.conn} }
func (db *DB) Content() *ContentStore  { return &ContentStore{conn: db.conn} }
func (db *DB) Projects() *ProjectStore { return &ProjectStore{conn: db.conn} }
func (db *DB) Skills() *SkillStore     { return &SkillStore{conn: db.conn} }
func (db *DB) Messages() *MessageStore { return &MessageStore{conn: db.conn} }

// uniqueViolation reports the column of a UNIQUE constraint failure, e.g.
// "users.email", or "" when err is something else.
func uniqueViolation(err error) string {
	var se *msqlite.Error
	if !errors.As(err, &se) || se.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ""
	}
	msg := se.Error()
	const marker = "UNIQUE constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	col := msg[i+len(marker):]
	if j := strings.IndexAny(col, " ,("); j >= 0 {
		col = col[:j]
	}
	return col
}

// now is the timestamp written on every insert and update. UTC keeps stored
// values comparable regardless of the server's zone.
func now() time.Time {
	return time.Now().UTC()
}

// touched is the updated_at for a row created at created. It is always
// strictly after created, even when the clock has not advanced.
func touched(created time.Time) time.Time {
	t := now()
	if !t.After(created) {
		t = created.Add(time.Nanosecond)
	}
	return t
}
