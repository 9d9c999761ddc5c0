package hashschema

import "fmt"

// Kind is the collection status of a member.
type Kind int

const (
	Scalar   Kind = iota // A single value.
	Sequence             // An ordered sequence; source order is preserved.
	Set                  // An unordered, deduplicated collection.
	Map                  // Key-value pairs with normalized keys.
)

var kindNames = [...]string{"scalar", "sequence", "set", "map"}

func (k Kind) String() string {
	if k.valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) valid() bool { return k >= Scalar && k <= Map }

// ParseKind resolves a kind by name ("scalar", "sequence", "set", "map").
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// KeyMode controls how raw keys of a Map member are normalized.
type KeyMode int

const (
	InternedKeys KeyMode = iota // Keys become interned Symbols.
	StringKeys                  // Keys become plain strings.
)

func (m KeyMode) String() string {
	switch m {
	case InternedKeys:
		return "interned"
	case StringKeys:
		return "string"
	default:
		return fmt.Sprintf("KeyMode(%d)", int(m))
	}
}

// Expose is a directive for the accessor layer (Schema.Get / Schema.Set).
type Expose int

const (
	ExposeNone Expose = iota
	ReadOnly
	ReadWrite
)

func (e Expose) String() string {
	switch e {
	case ExposeNone:
		return "none"
	case ReadOnly:
		return "read_only"
	case ReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("Expose(%d)", int(e))
	}
}

// Symbol is the interned identifier primitive. Values produced by decoding
// are always canonical (see Intern).
type Symbol string

// Record is the dynamic instance type for schemas whose shape is only known at
// runtime. Each member is stored under its name.
type Record map[string]any

// Mapper is implemented by values that can render themselves as a raw map.
// Encode falls back to it for values without a declared schema.
type Mapper interface {
	ToMap() map[string]any
}

// ValueType is the type a member's raw values are coerced into: nil for raw
// pass-through, a Primitive, or a built *Schema.
type ValueType interface {
	valueTypeName() string
}

// Primitive names an entry of a Registry.
type Primitive string

const (
	String  Primitive = "string"
	Sym     Primitive = "symbol"
	Int     Primitive = "integer"
	Float   Primitive = "float"
	Boolean Primitive = "boolean"
)

func (p Primitive) valueTypeName() string { return string(p) }
