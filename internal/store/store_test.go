package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oriys/vega/internal/turso"
)

type execCall struct {
	sql  string
	args []turso.Value
}

// fakeExecutor returns one canned result (or error) for every call and
// records what was asked of it.
type fakeExecutor struct {
	res   *turso.Result
	err   error
	calls []execCall
}

func (f *fakeExecutor) Execute(ctx context.Context, sql string, args ...turso.Value) (*turso.Result, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.res != nil {
		return f.res, nil
	}
	return &turso.Result{}, nil
}

func TestPingIssuesProbeStatement(t *testing.T) {
	fake := &fakeExecutor{}
	s := New(fake)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	if fake.calls[0].sql != "SELECT 1 as test" {
		t.Fatalf("probe sql = %q", fake.calls[0].sql)
	}
}

func TestPingPropagatesFailure(t *testing.T) {
	fake := &fakeExecutor{err: &turso.QueryError{StatusCode: 503, Body: "down"}}
	s := New(fake)

	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var qe *turso.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error %T does not unwrap to *turso.QueryError", err)
	}
}

func TestEnsureSchemaCreatesUsersTable(t *testing.T) {
	fake := &fakeExecutor{}
	s := New(fake)

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(fake.calls) == 0 {
		t.Fatal("no statements issued")
	}
	first := fake.calls[0].sql
	if !strings.Contains(first, "CREATE TABLE IF NOT EXISTS users") {
		t.Fatalf("first statement = %q", first)
	}
	if !strings.Contains(first, "steam_id TEXT UNIQUE") {
		t.Fatalf("users schema missing steam_id: %q", first)
	}
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	fake := &fakeExecutor{}
	s := New(fake)

	for i := 0; i < 3; i++ {
		if err := s.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i, err)
		}
	}
}

func TestEnsureSchemaSurfacesFailure(t *testing.T) {
	fake := &fakeExecutor{err: &turso.QueryError{Message: "not authorized"}}
	s := New(fake)

	if err := s.EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
