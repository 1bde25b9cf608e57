package turso

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oriys/vega/internal/logging"
	"github.com/oriys/vega/internal/metrics"
	"github.com/oriys/vega/internal/observability"
)

// requestTimeout bounds every pipeline call. The remote session is
// opened and closed within a single request, so a timed-out call
// leaves nothing behind.
const requestTimeout = 30 * time.Second

const pipelinePath = "/v2/pipeline"

// Config holds the remote database endpoint and credentials. Read once
// at startup, immutable for the process lifetime.
type Config struct {
	URL       string
	AuthToken string
}

// Client executes parameterized statements against a remote libSQL
// database over its HTTP pipeline protocol. Every statement travels as
// an [execute, close] batch: one session per call, nothing held open
// between calls, no retries.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient validates the endpoint configuration and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("database auth token is required")
	}

	base := strings.TrimSuffix(cfg.URL, "/")
	// libsql:// URLs address the same host over HTTPS.
	if rest, ok := strings.CutPrefix(base, "libsql://"); ok {
		base = "https://" + rest
	}

	return &Client{
		baseURL: base,
		token:   cfg.AuthToken,
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// QueryError reports a failed remote statement: a non-2xx transport
// response or a statement-level error inside the envelope.
type QueryError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote query: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote query: %s", e.Message)
}

// IsConstraintViolation reports whether err is a remote uniqueness or
// other constraint failure. User creation maps these to a client error
// instead of a server error.
func IsConstraintViolation(err error) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	msg := qe.Message + " " + qe.Body
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT")
}

// Result is the decoded outcome of one statement.
type Result struct {
	Columns          []string
	Rows             [][]any
	AffectedRowCount int64
	LastInsertRowID  int64

	// Raw holds the response body verbatim when the envelope shape was
	// not recognized. Best-effort fallback, never an error.
	Raw json.RawMessage
}

// ColumnIndex returns the position of the named column, or -1 if the
// result does not carry it. Mapping rows through names keeps a
// reordered SELECT from silently shuffling fields.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Execute sends one parameterized statement and returns its decoded
// result. A single attempt: failures surface to the caller unretried.
func (c *Client) Execute(ctx context.Context, sql string, args ...Value) (*Result, error) {
	op := sqlOperation(sql)
	ctx, span := observability.StartClientSpan(ctx, "vega.db.execute",
		observability.AttrDBOperation.String(op),
	)
	defer span.End()

	start := time.Now()
	res, err := c.execute(ctx, sql, args)
	metrics.Global().RecordRemoteQuery(op, time.Since(start).Milliseconds(), err == nil)

	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(observability.AttrRowCount.Int(len(res.Rows)))
	observability.SetSpanOK(span)
	return res, nil
}

func (c *Client) execute(ctx context.Context, sql string, args []Value) (*Result, error) {
	body, err := json.Marshal(pipelineRequest{
		Requests: []pipelineOp{
			{Type: "execute", Stmt: &statement{SQL: sql, Args: args}},
			{Type: "close"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pipelinePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	observability.InjectHTTPHeaders(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &QueryError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody)
}

// Pipeline wire envelope. Request side is fixed: [execute, close].
type pipelineRequest struct {
	Requests []pipelineOp `json:"requests"`
}

type pipelineOp struct {
	Type string     `json:"type"`
	Stmt *statement `json:"stmt,omitempty"`
}

type statement struct {
	SQL  string  `json:"sql"`
	Args []Value `json:"args,omitempty"`
}

type pipelineResponse struct {
	Results []pipelineResult `json:"results"`
}

type pipelineResult struct {
	Type     string          `json:"type"`
	Error    *pipelineError  `json:"error"`
	Response *executeWrapper `json:"response"`
}

type pipelineError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type executeWrapper struct {
	Result *wireResult `json:"result"`
}

// wireResult tolerates both column spellings and both cell shapes seen
// across protocol generations.
type wireResult struct {
	Columns          []wireColumn        `json:"columns"`
	Cols             []wireColumn        `json:"cols"`
	Rows             [][]json.RawMessage `json:"rows"`
	AffectedRowCount int64               `json:"affected_row_count"`
	LastInsertRowID  flexInt64           `json:"last_insert_rowid"`
}

// wireColumn accepts a bare name string or a {"name": ...} object.
type wireColumn struct {
	name string
}

func (c *wireColumn) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode column: %w", err)
	}
	c.name = obj.Name
	return nil
}

// flexInt64 decodes integers that arrive as JSON numbers, decimal
// strings, or null.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("decode integer %q: %w", s, err)
	}
	*f = flexInt64(n)
	return nil
}

// parseResponse extracts the first statement's result. Only the first
// entry is consumed; the close result is discarded.
func parseResponse(body []byte) (*Result, error) {
	var envelope pipelineResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		var generic any
		if jsonErr := json.Unmarshal(body, &generic); jsonErr == nil {
			// Valid JSON in a shape this client does not know. Hand the
			// body back rather than failing the call.
			logging.Op().Warn("unrecognized pipeline envelope", "bytes", len(body))
			return &Result{Raw: json.RawMessage(bytes.Clone(body))}, nil
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Results) == 0 {
		logging.Op().Warn("pipeline envelope carried no results", "bytes", len(body))
		return &Result{Raw: json.RawMessage(bytes.Clone(body))}, nil
	}

	first := envelope.Results[0]
	switch first.Type {
	case "error":
		msg := "unknown remote error"
		if first.Error != nil && first.Error.Message != "" {
			msg = first.Error.Message
		}
		return nil, &QueryError{Message: msg}
	case "ok":
		if first.Response == nil || first.Response.Result == nil {
			return &Result{}, nil
		}
		return decodeResult(first.Response.Result)
	default:
		logging.Op().Warn("unrecognized pipeline result type", "type", first.Type)
		return &Result{Raw: json.RawMessage(bytes.Clone(body))}, nil
	}
}

func decodeResult(w *wireResult) (*Result, error) {
	cols := w.Columns
	if len(cols) == 0 {
		cols = w.Cols
	}

	out := &Result{
		Columns:          make([]string, len(cols)),
		Rows:             make([][]any, len(w.Rows)),
		AffectedRowCount: w.AffectedRowCount,
		LastInsertRowID:  int64(w.LastInsertRowID),
	}
	for i, c := range cols {
		out.Columns[i] = c.name
	}
	for i, row := range w.Rows {
		cells := make([]any, len(row))
		for j, raw := range row {
			cell, err := DecodeCell(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			cells[j] = cell
		}
		out.Rows[i] = cells
	}
	return out, nil
}

// sqlOperation extracts the leading keyword for metric and span labels.
func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
