// Package db is the relational store behind the folders and notes services.
//
// A Store wraps a *sql.DB together with the SQL dialect of the backend
// (SQLCipher/SQLite or Postgres through pgx). The generic helpers in query.go
// build one parameterized statement per call, so every operation is atomic at
// the store level and no transactions are used.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Dialect selects placeholder syntax and how inserted ids are returned.
type Dialect int

const (
	// SQLite uses ? placeholders and LastInsertId.
	SQLite Dialect = iota
	// Postgres uses $n placeholders and INSERT ... RETURNING id.
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Placeholder returns the bind parameter for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// ErrNoRows is returned by GetByID when no row matches.
var ErrNoRows = sql.ErrNoRows

// Store is the shared handle to the relational store. It is safe for
// concurrent use; the underlying *sql.DB owns the connection pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
	onClose func()
}

// New wraps an existing sql.DB.
func New(sqlDB *sql.DB, dialect Dialect) *Store {
	return &Store{db: sqlDB, dialect: dialect}
}

// DB returns the underlying sql.DB for direct access when needed.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the backend.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplySchema creates the folders and notes tables when they are missing.
func (s *Store) ApplySchema(ctx context.Context) error {
	statements := SQLiteSchema
	if s.dialect == Postgres {
		statements = PostgresSchema
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s schema: %w", s.dialect, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

// IsNoRows reports whether err means the requested row does not exist.
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}
