package hashschema

import (
	"errors"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// typeSchema is the untyped core shared by Schema[T] and nested references.
type typeSchema struct {
	name     string
	typ      reflect.Type
	record   bool
	keys     map[string]int
	members  []*member
	byName   map[string]*member
	registry *Registry
	logger   zerolog.Logger
	frozen   bool
}

// bound indexes built struct schemas by instance type so Encode can render
// schema-bearing values reached through raw members.
var bound sync.Map // reflect.Type -> *typeSchema

func boundSchema(t reflect.Type) *typeSchema {
	if v, ok := bound.Load(t); ok {
		return v.(*typeSchema)
	}
	return nil
}

// SchemaOption configures a Type Schema.
type SchemaOption func(*typeSchema)

// WithRegistry selects the coercion registry (DefaultRegistry otherwise).
func WithRegistry(r *Registry) SchemaOption {
	return func(ts *typeSchema) {
		if r != nil {
			ts.registry = r
		}
	}
}

// WithLogger sets the logger for registration and decode diagnostics.
func WithLogger(l zerolog.Logger) SchemaOption { return func(ts *typeSchema) { ts.logger = l } }

// WithName overrides the type name used in errors and logs.
func WithName(name string) SchemaOption {
	return func(ts *typeSchema) {
		if name != "" {
			ts.name = name
		}
	}
}

// Builder collects the members of a Type Schema before it is frozen.
type Builder[T any] struct {
	ts   *typeSchema
	errs []error
	bad  error
}

// Object starts a Type Schema for T, which must be a struct or Record.
func Object[T any](opts ...SchemaOption) *Builder[T] {
	t := reflect.TypeFor[T]()
	ts := &typeSchema{
		name:     t.String(),
		typ:      t,
		byName:   map[string]*member{},
		registry: DefaultRegistry,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(ts)
	}
	b := &Builder[T]{ts: ts}
	switch {
	case t == recordType:
		ts.record = true
	case t.Kind() == reflect.Struct:
		ts.keys = structKeys(t)
	default:
		b.bad = &SchemaDefinitionError{Type: ts.name, Reason: "instance type must be a struct or hashschema.Record"}
		b.errs = append(b.errs, b.bad)
	}
	return b
}

// Member registers a member and returns the builder. Errors are reported by Build.
func (b *Builder[T]) Member(name string, vt ValueType, opts ...MemberOption) *Builder[T] {
	if err := b.Register(name, vt, opts...); err != nil && err != b.bad {
		b.errs = append(b.errs, err)
	}
	return b
}

// Register registers a member and returns its *SchemaDefinitionError, if any.
func (b *Builder[T]) Register(name string, vt ValueType, opts ...MemberOption) error {
	if b.bad != nil {
		return b.bad
	}
	if b.ts.frozen {
		return b.ts.defErr(name, "schema is already built")
	}
	d := memberDecl{Member: Member{Name: name, ValueType: vt}}
	for _, o := range opts {
		o(&d)
	}
	m, err := b.ts.register(d)
	if err != nil {
		b.ts.logger.Debug().Err(err).Str("type", b.ts.name).Str("member", name).Msg("member rejected")
		return err
	}
	b.ts.logger.Debug().
		Str("type", b.ts.name).
		Str("member", m.Name).
		Stringer("kind", m.Kind).
		Str("value_type", valueTypeName(m.ValueType)).
		Msg("member registered")
	return nil
}

// Build freezes the schema and seals its registry.
func (b *Builder[T]) Build() (*Schema[T], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	ts := b.ts
	ts.frozen = true
	ts.registry.Seal()
	if !ts.record {
		bound.LoadOrStore(ts.typ, ts)
	}
	return &Schema[T]{ts: ts}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder[T]) MustBuild() *Schema[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Schema is a frozen Type Schema for T. It is safe for concurrent use.
type Schema[T any] struct {
	ts *typeSchema
}

func (s *Schema[T]) valueTypeName() string { return s.ts.name }

func (s *Schema[T]) core() *typeSchema {
	if s == nil {
		return nil
	}
	return s.ts
}

// Name returns the type name used in errors and logs.
func (s *Schema[T]) Name() string { return s.ts.name }

// Members returns the members in declaration order.
func (s *Schema[T]) Members() []Member {
	out := make([]Member, len(s.ts.members))
	for i, m := range s.ts.members {
		out[i] = m.Member
	}
	return out
}

// Lookup returns the member registered under name.
func (s *Schema[T]) Lookup(name string) (Member, bool) {
	m, ok := s.ts.byName[name]
	if !ok {
		return Member{}, false
	}
	return m.Member, true
}

// Decode builds an instance from a raw map. It either fully succeeds or
// returns a *DecodeError and the zero T.
func (s *Schema[T]) Decode(raw any) (T, error) {
	var zero T
	v, err := s.ts.decodeRoot(raw, nil)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// DecodeWithMeta is Decode plus presence flags keyed by JSON Pointer.
func (s *Schema[T]) DecodeWithMeta(raw any) (Decoded[T], error) {
	pm := PresenceMap{"/": PresenceSeen}
	v, err := s.ts.decodeRoot(raw, pm)
	if err != nil {
		return Decoded[T]{}, err
	}
	return Decoded[T]{Value: v.Interface().(T), Presence: pm}, nil
}

// Encode renders v as a raw map that decodes back to an equal instance.
func (s *Schema[T]) Encode(v T) map[string]any { return s.ts.encode(reflect.ValueOf(&v).Elem()) }

// Decode is a thin wrapper around Schema.Decode.
func Decode[T any](s *Schema[T], raw any) (T, error) { return s.Decode(raw) }

// ToMap is a thin wrapper around Schema.Encode.
func ToMap[T any](s *Schema[T], v T) map[string]any { return s.Encode(v) }

func valueTypeName(vt ValueType) string {
	if vt == nil {
		return "raw"
	}
	return vt.valueTypeName()
}
