package turso

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{URL: srv.URL, AuthToken: "test-token"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientSendsPipelineRequest(t *testing.T) {
	var captured struct {
		path   string
		auth   string
		body   []byte
		method string
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.method = r.Method
		captured.body, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"results":[{"type":"ok","response":{"result":{
			"columns":["id","username"],
			"rows":[[{"type":"integer","value":"1"},{"type":"text","value":"gamer123"}]]
		}}},{"type":"ok"}]}`)
	})

	res, err := c.Execute(context.Background(), "SELECT id, username FROM users WHERE id = ?", Integer(1))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if captured.method != http.MethodPost {
		t.Errorf("method = %s, want POST", captured.method)
	}
	if captured.path != "/v2/pipeline" {
		t.Errorf("path = %s, want /v2/pipeline", captured.path)
	}
	if captured.auth != "Bearer test-token" {
		t.Errorf("auth header = %q", captured.auth)
	}

	var req struct {
		Requests []struct {
			Type string `json:"type"`
			Stmt *struct {
				SQL  string `json:"sql"`
				Args []struct {
					Type  string  `json:"type"`
					Value *string `json:"value"`
				} `json:"args"`
			} `json:"stmt"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(captured.body, &req); err != nil {
		t.Fatalf("decode captured body: %v", err)
	}
	if len(req.Requests) != 2 {
		t.Fatalf("expected [execute, close], got %d ops", len(req.Requests))
	}
	if req.Requests[0].Type != "execute" || req.Requests[1].Type != "close" {
		t.Fatalf("op types = %s, %s", req.Requests[0].Type, req.Requests[1].Type)
	}
	if req.Requests[0].Stmt == nil || len(req.Requests[0].Stmt.Args) != 1 {
		t.Fatal("execute op missing statement or args")
	}
	arg := req.Requests[0].Stmt.Args[0]
	if arg.Type != "integer" || arg.Value == nil || *arg.Value != "1" {
		t.Fatalf("arg = %+v, want integer \"1\"", arg)
	}

	if len(res.Columns) != 2 || res.Columns[0] != "id" || res.Columns[1] != "username" {
		t.Fatalf("columns = %v", res.Columns)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	if res.Rows[0][0] != "1" || res.Rows[0][1] != "gamer123" {
		t.Fatalf("row = %#v", res.Rows[0])
	}
}

func TestClientDecodesUnwrappedRows(t *testing.T) {
	// Older protocol generations return bare scalars and bare column
	// names.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"type":"ok","response":{"result":{
			"columns":["n","s"],
			"rows":[[7,"raw"]]
		}}}]}`)
	})

	res, err := c.Execute(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n, ok := res.Rows[0][0].(float64); !ok || n != 7 {
		t.Fatalf("cell 0 = %#v, want 7", res.Rows[0][0])
	}
	if s, ok := res.Rows[0][1].(string); !ok || s != "raw" {
		t.Fatalf("cell 1 = %#v, want raw", res.Rows[0][1])
	}
}

func TestClientDecodesObjectColumns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"type":"ok","response":{"result":{
			"cols":[{"name":"id","decltype":"INTEGER"}],
			"rows":[[{"type":"integer","value":"5"}]],
			"affected_row_count":0,
			"last_insert_rowid":"5"
		}}}]}`)
	})

	res, err := c.Execute(context.Background(), "SELECT id FROM users")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Columns) != 1 || res.Columns[0] != "id" {
		t.Fatalf("columns = %v", res.Columns)
	}
	if res.LastInsertRowID != 5 {
		t.Fatalf("last insert rowid = %d, want 5", res.LastInsertRowID)
	}
}

func TestClientRemoteErrorTag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"type":"error","error":{"message":"no such table: missing"}}]}`)
	})

	_, err := c.Execute(context.Background(), "SELECT * FROM missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error %T is not *QueryError", err)
	}
	if qe.Message != "no such table: missing" {
		t.Fatalf("message = %q", qe.Message)
	}
	if qe.StatusCode != 0 {
		t.Fatalf("status = %d, want 0 for statement errors", qe.StatusCode)
	}
}

func TestClientNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "invalid token")
	})

	_, err := c.Execute(context.Background(), "SELECT 1")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error %T is not *QueryError", err)
	}
	if qe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", qe.StatusCode)
	}
	if qe.Body != "invalid token" {
		t.Fatalf("body = %q", qe.Body)
	}
}

func TestClientUnrecognizedEnvelope(t *testing.T) {
	for _, body := range []string{`{"outcome":"fine"}`, `[1,2,3]`, `"just a string"`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
		res, err := c.Execute(context.Background(), "SELECT 1")
		if err != nil {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
		if string(res.Raw) != body {
			t.Fatalf("body %s: raw = %s", body, res.Raw)
		}
	}
}

func TestClientInvalidJSONResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":`)
	})
	if _, err := c.Execute(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClientOkWithoutResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"type":"ok"},{"type":"ok"}]}`)
	})
	res, err := c.Execute(context.Background(), "CREATE TABLE IF NOT EXISTS t (id INTEGER)")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Columns) != 0 || len(res.Rows) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestClientContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{"results":[{"type":"ok"}]}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if _, err := c.Execute(ctx, "SELECT 1"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClientURLNormalization(t *testing.T) {
	c, err := NewClient(Config{URL: "libsql://db-example.turso.io/", AuthToken: "tok"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.baseURL != "https://db-example.turso.io" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
}

func TestClientRequiresConfig(t *testing.T) {
	if _, err := NewClient(Config{AuthToken: "tok"}); err == nil {
		t.Fatal("expected error for missing URL")
	}
	if _, err := NewClient(Config{URL: "https://db.example.com"}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestIsConstraintViolation(t *testing.T) {
	direct := &QueryError{Message: "SQLite error: UNIQUE constraint failed: users.username"}
	if !IsConstraintViolation(direct) {
		t.Fatal("direct constraint error not recognized")
	}
	wrapped := fmt.Errorf("create user: %w", direct)
	if !IsConstraintViolation(wrapped) {
		t.Fatal("wrapped constraint error not recognized")
	}
	if IsConstraintViolation(errors.New("UNIQUE constraint failed")) {
		t.Fatal("plain error should not be recognized")
	}
	if IsConstraintViolation(&QueryError{Message: "no such table: users"}) {
		t.Fatal("unrelated query error should not be recognized")
	}
}

func TestResultColumnIndex(t *testing.T) {
	r := &Result{Columns: []string{"id", "username", "email"}}
	if i := r.ColumnIndex("username"); i != 1 {
		t.Fatalf("ColumnIndex(username) = %d", i)
	}
	if i := r.ColumnIndex("missing"); i != -1 {
		t.Fatalf("ColumnIndex(missing) = %d", i)
	}
}
