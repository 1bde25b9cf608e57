package store

import (
	"context"
	"fmt"

	"github.com/oriys/vega/internal/turso"
)

// Executor is the minimal remote-statement surface the store needs.
// *turso.Client satisfies it; tests substitute local fakes.
type Executor interface {
	Execute(ctx context.Context, sql string, args ...turso.Value) (*turso.Result, error)
}

// Store exposes typed operations over the users and apps records and
// the four file category tables held in the remote database.
type Store struct {
	db Executor
}

// New wraps a remote executor.
func New(db Executor) *Store {
	return &Store{db: db}
}

// pingStatement is the health probe issued by Ping and the keep-alive
// ticker.
const pingStatement = "SELECT 1 as test"

// Ping checks that the remote database answers queries.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.db.Execute(ctx, pingStatement); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables this service owns. The statements
// are idempotent by construction; the startup gate is simply that this
// call returns before the server accepts traffic. The apps catalog and
// the file category tables are written by the external ingest pipeline
// and are not created here.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			steam_id TEXT UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
