// Package source reads and writes raw maps in the wire formats the
// hashschema CLI understands. Decoded documents contain only map[string]any,
// []any and scalars, which is the shape hashschema decodes from.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format names a wire format.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, MsgPack}

// ParseFormat resolves a format name, accepting "yml" and "mpk" aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mpk":
		return MsgPack, nil
	}
	return "", fmt.Errorf("source: unknown format %q", name)
}

// FormatFromPath infers the format from a file extension. ok is false when
// the extension is not recognized.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Unmarshal decodes one document.
func Unmarshal(f Format, data []byte) (any, error) {
	switch f {
	case JSON:
		return unmarshalJSON(data)
	case YAML:
		return unmarshalYAML(data)
	case MsgPack:
		return unmarshalMsgPack(data)
	}
	return nil, fmt.Errorf("source: unknown format %q", f)
}

// Read decodes one document from r.
func Read(r io.Reader, f Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read: %w", err)
	}
	return Unmarshal(f, data)
}

// Marshal encodes v. JSON output is indented.
func Marshal(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		return marshalJSON(v)
	case YAML:
		return marshalYAML(v)
	case MsgPack:
		return marshalMsgPack(v)
	}
	return nil, fmt.Errorf("source: unknown format %q", f)
}

// normalize turns decoder-specific maps into map[string]any and recurses into
// sequences. Non-string keys are rendered with fmt.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = normalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	default:
		return v
	}
}
