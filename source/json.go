package source

import (
	"bytes"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
)

func unmarshalJSON(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("source: json: trailing data after document")
	}
	return normalizeNumbers(v), nil
}

// normalizeNumbers replaces json.Number with int64 when the literal is an
// integer in range, float64 otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case j.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeNumbers(vv)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	}
	return v
}

func marshalJSON(v any) ([]byte, error) {
	b, err := j.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("source: json: %w", err)
	}
	return append(b, '\n'), nil
}
