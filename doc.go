// Package hashschema lets a type declare, once, the shape of the untyped
// key-value data it accepts, and then:
//
// - Decode: builds a validated, strongly-typed instance from a raw map
// (structural checks, defaults, coercion, nested decoding, validation hooks)
// - Encode: renders the instance back to a raw map that decodes to an equal
// instance
//
// Design policy:
//   - A Type Schema is declared through Object[T]().Member(...).Build() and is
//     read-only afterwards. Member names bind to struct fields by the
//     hashschema/json tag rule (see ResolveStructKey), or to keys of a Record.
//   - Primitive coercions live in a Registry that is sealed by the first Build.
//   - Decode is all-or-nothing and stops at the first failing member
//     (*DecodeError). Schema declaration errors are *SchemaDefinitionError.
//
// Typical usage:
//
//	type Ernie struct {
//	    Count int64 `hashschema:"name=count"`
//	}
//	s := hashschema.Object[Ernie]().
//	    Member("count", hashschema.Int, hashschema.Required(), hashschema.Default(11)).
//	    MustBuild()
//	v, err := s.Decode(map[string]any{"count": "5"})
//	raw := s.Encode(v)
package hashschema
