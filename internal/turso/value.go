package turso

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueType tags a statement argument's wire-level type.
type ValueType string

const (
	TypeNull    ValueType = "null"
	TypeText    ValueType = "text"
	TypeInteger ValueType = "integer"
	TypeReal    ValueType = "real"
)

// Value is one statement argument in the remote database's tagged
// {type, value} representation. The union is closed: Null, Text,
// Integer, Real. Arbitrary native values enter only through Stringify,
// so a lossy string conversion is always an explicit caller decision.
type Value struct {
	typ     ValueType
	text    string
	integer int64
	real    float64
}

// Null returns the SQL NULL argument.
func Null() Value { return Value{typ: TypeNull} }

// Text returns a text argument.
func Text(s string) Value { return Value{typ: TypeText, text: s} }

// Integer returns an integer argument. Integers travel as decimal
// strings to avoid precision loss past 2^53 in JSON numbers.
func Integer(i int64) Value { return Value{typ: TypeInteger, integer: i} }

// Real returns a floating-point argument.
func Real(f float64) Value { return Value{typ: TypeReal, real: f} }

// Stringify converts an arbitrary value to a Text argument via its
// string representation. It is the only path from untyped values into
// the wire union; the conversion is lossy and always an explicit
// caller decision, never an encoder fallback.
func Stringify(v any) Value {
	if v == nil {
		return Null()
	}
	return Text(fmt.Sprint(v))
}

// Type returns the wire-level type tag.
func (v Value) Type() ValueType {
	if v.typ == "" {
		return TypeNull
	}
	return v.typ
}

type wireValue struct {
	Type  ValueType `json:"type"`
	Value *string   `json:"value"`
}

// MarshalJSON emits the tagged {type, value} wire form. Integer and
// real payloads are rendered as decimal strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type() {
	case TypeNull:
		return json.Marshal(wireValue{Type: TypeNull})
	case TypeText:
		s := v.text
		return json.Marshal(wireValue{Type: TypeText, Value: &s})
	case TypeInteger:
		s := strconv.FormatInt(v.integer, 10)
		return json.Marshal(wireValue{Type: TypeInteger, Value: &s})
	case TypeReal:
		s := strconv.FormatFloat(v.real, 'g', -1, 64)
		return json.Marshal(wireValue{Type: TypeReal, Value: &s})
	}
	return nil, fmt.Errorf("unknown value type %q", v.typ)
}

// DecodeCell normalizes one result cell. Rows arrive either as raw
// scalars (older protocol generation) or wrapped in {type, value}
// objects (newer generation); any JSON object carrying a "value" key
// is unwrapped, everything else passes through unchanged. This is a
// protocol compatibility shim, not a permanent feature of the wire
// format.
func DecodeCell(raw json.RawMessage) (any, error) {
	var cell any
	if err := json.Unmarshal(raw, &cell); err != nil {
		return nil, fmt.Errorf("decode cell: %w", err)
	}
	if m, ok := cell.(map[string]any); ok {
		if inner, found := m["value"]; found {
			return inner, nil
		}
	}
	return cell, nil
}
