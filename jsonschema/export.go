// Package jsonschema exports hashschema Type Schemas as JSON Schema
// (draft 2020-12) documents.
package jsonschema

import (
	"github.com/reoring/hashschema"
)

// Dialect is the $schema URI written on exported documents.
const Dialect = "https://json-schema.org/draft/2020-12/schema"

// Source is satisfied by every built *hashschema.Schema[T].
type Source interface {
	Name() string
	Members() []hashschema.Member
}

// Formats maps primitive names to a JSON type and format. Primitives missing
// from the table export as an unconstrained schema.
var Formats = map[hashschema.Primitive][2]string{
	hashschema.String:  {"string", ""},
	hashschema.Sym:     {"string", ""},
	hashschema.Int:     {"integer", ""},
	hashschema.Float:   {"number", ""},
	hashschema.Boolean: {"boolean", ""},
	"time":             {"string", "date-time"},
	"duration":         {"string", ""}, // Go syntax ("1m30s"), not ISO 8601
}

// Export renders s and every nested schema it reaches. Nested types are
// emitted once under $defs and referenced by name.
func Export(s Source) *Schema {
	defs := map[string]*Schema{}
	root := object(s, defs)
	root.Schema = Dialect
	root.Title = s.Name()
	if len(defs) > 0 {
		root.Defs = defs
	}
	return root
}

func object(s Source, defs map[string]*Schema) *Schema {
	out := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for _, m := range s.Members() {
		out.Properties[m.Name] = member(m, defs)
		if m.Required && m.Default == nil {
			out.Required = append(out.Required, m.Name)
		}
	}
	return out
}

func member(m hashschema.Member, defs map[string]*Schema) *Schema {
	elem := element(m.ValueType, defs)
	var out *Schema
	switch m.Kind {
	case hashschema.Sequence:
		out = &Schema{Type: "array", Items: elem}
	case hashschema.Set:
		out = &Schema{Type: "array", Items: elem, UniqueItems: true}
	case hashschema.Map:
		out = &Schema{Type: "object", AdditionalProperties: elem}
	default:
		out = elem
		if m.Default != nil {
			// copy so the shared $defs entry is not mutated
			c := *elem
			c.Default = m.Default
			out = &c
		}
	}
	if m.Expose == hashschema.ReadOnly {
		if out == elem {
			c := *elem
			out = &c
		}
		out.ReadOnly = true
	}
	return out
}

func element(vt hashschema.ValueType, defs map[string]*Schema) *Schema {
	switch t := vt.(type) {
	case nil:
		return &Schema{}
	case hashschema.Primitive:
		f, ok := Formats[t]
		if !ok {
			return &Schema{}
		}
		return &Schema{Type: f[0], Format: f[1]}
	case Source:
		name := t.Name()
		if _, ok := defs[name]; !ok {
			defs[name] = nil // reserve before recursing
			defs[name] = object(t, defs)
		}
		return &Schema{Ref: "#/$defs/" + name}
	}
	return &Schema{}
}
