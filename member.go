package hashschema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Member is the frozen description of one field of a Type Schema.
type Member struct {
	Name          string
	Kind          Kind
	ValueType     ValueType // nil passes raw values through unchanged.
	Required      bool
	Default       any // Only for required Scalar members; nil means no default.
	NoCollections bool
	KeyMode       KeyMode
	Expose        Expose
	// Validation is the hook as registered: func(E, *[]string), where E
	// accepts the member's decoded element.
	Validation any
}

// MemberOption configures a member at registration.
type MemberOption func(*memberDecl)

type memberDecl struct {
	Member
	keysSet          bool
	noCollectionsSet bool
}

// Required marks the member as required.
func Required() MemberOption { return func(d *memberDecl) { d.Required = true } }

// Default sets the fallback used when the member is missing. Only legal for
// required Scalar members.
func Default(v any) MemberOption { return func(d *memberDecl) { d.Default = v } }

// Collection sets the member's collection kind (Scalar by default).
func Collection(k Kind) MemberOption { return func(d *memberDecl) { d.Kind = k } }

// NoCollections makes a Scalar member reject sequence- or map-shaped input.
func NoCollections() MemberOption {
	return func(d *memberDecl) { d.NoCollections, d.noCollectionsSet = true, true }
}

// Keys sets how raw keys of a Map member are normalized.
func Keys(m KeyMode) MemberOption {
	return func(d *memberDecl) { d.KeyMode, d.keysSet = m, true }
}

// Validate attaches a hook invoked with every freshly decoded element. Any
// message the hook appends fails the decode.
func Validate(fn any) MemberOption { return func(d *memberDecl) { d.Validation = fn } }

// ExposeAs wires the member into Schema.Get (ReadOnly) or Get and Set (ReadWrite).
func ExposeAs(e Expose) MemberOption { return func(d *memberDecl) { d.Expose = e } }

// member is a registered Member plus its slot binding.
type member struct {
	Member
	slot     reflect.Type // storage type of the whole member
	elem     reflect.Type // storage type of one element
	base     reflect.Type // elem without its optional pointer level
	field    int          // struct field index; -1 for Record
	coercion *Coercion
	nested   *typeSchema
	hook     reflect.Value
	hookIn   reflect.Type
}

func (m *member) natural() reflect.Type {
	switch {
	case m.coercion != nil:
		return m.coercion.Type
	case m.nested != nil:
		return m.nested.typ
	}
	return nil
}

func (ts *typeSchema) defErr(name, format string, args ...any) error {
	return &SchemaDefinitionError{Type: ts.name, Member: name, Reason: fmt.Sprintf(format, args...)}
}

func validIdentifier(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}

// register validates d and binds it to a slot. Nothing is recorded on failure.
func (ts *typeSchema) register(d memberDecl) (*member, error) {
	name := d.Name
	if !validIdentifier(name) {
		return nil, ts.defErr(name, "name must be a non-empty identifier without control characters")
	}
	if _, dup := ts.byName[name]; dup {
		return nil, ts.defErr(name, "member already registered")
	}
	if !d.Kind.valid() {
		return nil, ts.defErr(name, "collection kind (%s) must be one of: [ %s ]", d.Kind, strings.Join(kindNames[:], ", "))
	}
	if d.Default != nil && d.Kind != Scalar {
		return nil, ts.defErr(name, "default value is only allowed for scalar members, got %s", d.Kind)
	}
	if d.Default != nil && !d.Required {
		return nil, ts.defErr(name, "default value requires the member to be required")
	}
	if d.noCollectionsSet && d.Kind != Scalar {
		return nil, ts.defErr(name, "no_collections is only allowed for scalar members")
	}
	if d.keysSet && d.Kind != Map {
		return nil, ts.defErr(name, "key mode is only allowed for map members")
	}
	if d.KeyMode != InternedKeys && d.KeyMode != StringKeys {
		return nil, ts.defErr(name, "unrecognized key mode: %s", d.KeyMode)
	}
	if d.Expose < ExposeNone || d.Expose > ReadWrite {
		return nil, ts.defErr(name, "unrecognized expose kind: %s", d.Expose)
	}

	m := &member{Member: d.Member, field: -1}
	switch vt := d.ValueType.(type) {
	case nil:
	case Primitive:
		c, ok := ts.registry.Lookup(vt)
		if !ok {
			return nil, ts.defErr(name, "value type %q must be nil, a registered primitive ([ %s ]) or a built schema", vt, primitiveList(ts.registry))
		}
		m.coercion = &c
	case interface{ core() *typeSchema }:
		nts := vt.core()
		if nts == nil || !nts.frozen {
			return nil, ts.defErr(name, "nested schema must be built before it is referenced")
		}
		m.nested = nts
	default:
		return nil, ts.defErr(name, "value type %T must be nil, a registered primitive ([ %s ]) or a built schema", vt, primitiveList(ts.registry))
	}

	if err := ts.bind(m); err != nil {
		return nil, err
	}
	if err := ts.bindHook(m); err != nil {
		return nil, err
	}
	if m.Default != nil {
		if _, err := parseSingle(m, m.Default, Root().Field(name), nil, false); err != nil {
			return nil, ts.defErr(name, "default value %v does not decode: %v", m.Default, err)
		}
	}
	ts.members = append(ts.members, m)
	ts.byName[name] = m
	return m, nil
}

func primitiveList(r *Registry) string {
	ps := r.Primitives()
	ss := make([]string, len(ps))
	for i, p := range ps {
		ss[i] = string(p)
	}
	return strings.Join(ss, ", ")
}

// recordSlot is the storage type a Record uses for a member of kind k.
func recordSlot(k Kind, mode KeyMode) reflect.Type {
	switch k {
	case Sequence:
		return reflect.SliceOf(anyType)
	case Set:
		return reflect.MapOf(anyType, emptyStruct)
	case Map:
		if mode == StringKeys {
			return reflect.MapOf(stringType, anyType)
		}
		return reflect.MapOf(symbolType, anyType)
	}
	return anyType
}

// bind resolves the member's slot and element types and checks that decoded
// values fit them.
func (ts *typeSchema) bind(m *member) error {
	if ts.record {
		m.slot = recordSlot(m.Kind, m.KeyMode)
	} else {
		idx, ok := ts.keys[m.Name]
		if !ok {
			return ts.defErr(m.Name, "no exported field of %s resolves to this name", ts.typ)
		}
		m.field = idx
		m.slot = ts.typ.Field(idx).Type
	}

	switch m.Kind {
	case Scalar:
		m.elem = m.slot
	case Sequence:
		if m.slot.Kind() != reflect.Slice {
			return ts.defErr(m.Name, "sequence member needs a slice field, got %s", m.slot)
		}
		m.elem = m.slot.Elem()
	case Set:
		if m.slot.Kind() != reflect.Map || m.slot.Elem() != emptyStruct {
			return ts.defErr(m.Name, "set member needs a map[E]struct{} field, got %s", m.slot)
		}
		m.elem = m.slot.Key()
	case Map:
		if m.slot.Kind() != reflect.Map || m.slot.Key().Kind() != reflect.String {
			return ts.defErr(m.Name, "map member needs a map field with string-kinded keys, got %s", m.slot)
		}
		m.elem = m.slot.Elem()
	}

	m.base = m.elem
	nat := m.natural()
	if nat == nil {
		if !isRawAny(m.elem) {
			return ts.defErr(m.Name, "raw pass-through member needs an any element, got %s", m.elem)
		}
		return nil
	}
	if !fits(nat, m.elem) {
		return ts.defErr(m.Name, "value type %s does not fit element type %s", nat, m.elem)
	}
	if m.elem.Kind() == reflect.Pointer && !nat.AssignableTo(m.elem) {
		m.base = m.elem.Elem()
	}
	if m.nested != nil && m.Kind == Scalar && !m.Required && m.elem.Kind() == reflect.Struct {
		return ts.defErr(m.Name, "optional nested member needs a pointer field (*%s) so absence encodes as null, got %s", m.elem, m.elem)
	}
	if m.Kind == Set && !m.base.Comparable() {
		return ts.defErr(m.Name, "set element type %s is not comparable", m.base)
	}
	return nil
}

const hookShape = "func(E, *[]string)"

func (ts *typeSchema) bindHook(m *member) error {
	if m.Validation == nil {
		return nil
	}
	fv := reflect.ValueOf(m.Validation)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || fv.IsNil() || ft.IsVariadic() || ft.NumIn() != 2 || ft.NumOut() != 0 || ft.In(1) != messagesType {
		return ts.defErr(m.Name, "validation hook must have shape %s, got %s", hookShape, ft)
	}
	in := ft.In(0)
	nat := m.natural()
	ok := m.base.AssignableTo(in) || (isRawAny(m.base) && nat != nil && nat.AssignableTo(in))
	if !ok {
		return ts.defErr(m.Name, "validation hook takes %s, which cannot hold %s", in, m.base)
	}
	m.hook, m.hookIn = fv, in
	return nil
}
