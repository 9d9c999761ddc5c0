package hashschema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Coercion converts raw values of one primitive in both directions.
type Coercion struct {
	// Type is the canonical Go type produced by Decode and accepted by Encode.
	Type reflect.Type
	// Decode converts an untyped raw value, failing with *CoercionError.
	Decode func(raw any) (any, error)
	// Encode renders a value of Type back to its raw form.
	Encode func(v any) any
}

var (
	ErrRegistrySealed     = errors.New("hashschema: registry is sealed")
	ErrDuplicatePrimitive = errors.New("hashschema: primitive already registered")
)

// Registry maps primitives to coercions. It is writable until Seal; building
// a schema seals the registry it uses. Registering while schemas decode is not
// supported.
type Registry struct {
	mu     sync.RWMutex
	sealed bool
	table  map[Primitive]Coercion
}

// DefaultRegistry is the registry used by schemas without WithRegistry.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an unsealed registry holding the builtin primitives.
func NewRegistry() *Registry {
	return &Registry{table: map[Primitive]Coercion{
		String:  {Type: stringType, Decode: decodeString, Encode: encodeIdentity},
		Sym:     {Type: symbolType, Decode: decodeSymbol, Encode: encodeIdentity},
		Int:     {Type: reflect.TypeFor[int64](), Decode: decodeInt, Encode: encodeInt},
		Float:   {Type: reflect.TypeFor[float64](), Decode: decodeFloat, Encode: encodeFloat},
		Boolean: {Type: reflect.TypeFor[bool](), Decode: decodeBool, Encode: encodeIdentity},
	}}
}

// Register adds a primitive. It fails once the registry is sealed or when p
// is already present.
func (r *Registry) Register(p Primitive, c Coercion) error {
	if p == "" || c.Type == nil || c.Decode == nil || c.Encode == nil {
		return fmt.Errorf("hashschema: incomplete coercion for %q", p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register %q: %w", p, ErrRegistrySealed)
	}
	if _, ok := r.table[p]; ok {
		return fmt.Errorf("register %q: %w", p, ErrDuplicatePrimitive)
	}
	r.table[p] = c
	return nil
}

// Lookup returns the coercion for p.
func (r *Registry) Lookup(p Primitive) (Coercion, bool) {
	r.mu.RLock()
	c, ok := r.table[p]
	r.mu.RUnlock()
	return c, ok
}

// Primitives lists the registered primitives in name order.
func (r *Registry) Primitives() []Primitive {
	r.mu.RLock()
	out := make([]Primitive, 0, len(r.table))
	for p := range r.table {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Seal forbids further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
