// Package attrs stores the free-form, per-type attribute bag of an item as a
// single JSON text column.
//
// Two historical write paths encoded attributes differently: one stored the
// JSON object, the other stored a JSON string containing the JSON object.
// Readers must accept both forms, so Parse unwraps one level of string
// encoding before giving up.
package attrs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Attributes maps attribute names to scalar values (string, number, bool or
// null). Decoded numbers are json.Number, so large integers keep every digit.
type Attributes map[string]any

// CodecError reports an attribute payload that could not be encoded or
// decoded.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("attributes %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Encode serializes attributes to JSON object text. An empty or nil mapping
// encodes to "{}".
func Encode(a Attributes) (string, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(a))
	if err != nil {
		return "", &CodecError{Op: "encode", Err: err}
	}
	return string(b), nil
}

// Parse decodes stored attribute text. Empty text and JSON null yield an
// empty mapping. If the text is a JSON string, its contents are parsed once
// more. Anything that is not an object after that is a *CodecError.
func Parse(text string) (Attributes, error) {
	v, err := unmarshal(text)
	if err != nil {
		return nil, err
	}

	if s, ok := v.(string); ok {
		v, err = unmarshal(s)
		if err != nil {
			return nil, err
		}
	}

	switch m := v.(type) {
	case nil:
		return Attributes{}, nil
	case map[string]any:
		return Attributes(m), nil
	default:
		return nil, &CodecError{Op: "decode", Err: fmt.Errorf("expected object, got %T", v)}
	}
}

// Decode is Parse that never fails: undecodable text yields an empty mapping.
func Decode(text string) Attributes {
	a, err := Parse(text)
	if err != nil {
		slog.Debug("discarding undecodable attributes", "error", err)
		return Attributes{}
	}
	return a
}

func unmarshal(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &CodecError{Op: "decode", Err: errors.New("trailing data after value")}
	}
	return v, nil
}

// Validate rejects values that are not scalars.
func (a Attributes) Validate() error {
	for k, v := range a {
		switch v.(type) {
		case nil, string, bool, float64, float32, json.Number,
			int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return fmt.Errorf("attribute %q must be a string, number, boolean or null", k)
		}
	}
	return nil
}

// Number reads a numeric attribute. Numeric strings such as "4.50" count,
// anything else reports false.
func (a Attributes) Number(key string) (decimal.Decimal, bool) {
	switch v := a[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Zero, false
}
