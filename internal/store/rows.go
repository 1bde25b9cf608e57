package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/oriys/vega/internal/turso"
)

// rowReader resolves cells by column name through the result's columns
// array, so a reordered SELECT cannot silently shuffle entity fields.
type rowReader struct {
	idx map[string]int
	row []any
}

func newRowIndex(res *turso.Result) map[string]int {
	idx := make(map[string]int, len(res.Columns))
	for i, c := range res.Columns {
		idx[c] = i
	}
	return idx
}

func (r *rowReader) cell(name string) (any, error) {
	i, ok := r.idx[name]
	if !ok {
		return nil, fmt.Errorf("column %q not in result", name)
	}
	if i >= len(r.row) {
		return nil, fmt.Errorf("column %q index %d beyond row width %d", name, i, len(r.row))
	}
	return r.row[i], nil
}

// text coerces a cell to a string. Numeric cells are rendered as
// decimal strings; older protocol generations return numbers where the
// newer one returns tagged strings.
func (r *rowReader) text(name string) (string, error) {
	v, err := r.cell(name)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("column %q is null", name)
	default:
		return "", fmt.Errorf("column %q has unsupported type %T", name, v)
	}
}

// nullText is text for nullable columns: a SQL NULL yields nil.
func (r *rowReader) nullText(name string) (*string, error) {
	v, err := r.cell(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s, err := r.text(name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// integer coerces a cell to int64, accepting the decimal-string form
// used by the newer protocol generation and the bare number form used
// by the older one.
func (r *rowReader) integer(name string) (int64, error) {
	v, err := r.cell(name)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: parse integer %q: %w", name, t, err)
		}
		return n, nil
	case float64:
		return int64(t), nil
	case nil:
		return 0, fmt.Errorf("column %q is null", name)
	default:
		return 0, fmt.Errorf("column %q has unsupported type %T", name, v)
	}
}

// bytes converts a text cell to its UTF-8 byte sequence. This is the
// single point where stored text becomes file content; nothing
// downstream re-encodes it.
func (r *rowReader) bytes(name string) ([]byte, error) {
	v, err := r.cell(name)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("column %q has unsupported content type %T", name, v)
	}
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// timestamp parses the DATETIME text forms the remote database emits
// (CURRENT_TIMESTAMP produces "2006-01-02 15:04:05" in UTC).
func (r *rowReader) timestamp(name string) (time.Time, error) {
	s, err := r.text(name)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %q: unrecognized timestamp %q", name, s)
}
