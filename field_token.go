package hashschema

import "reflect"

// FieldToken names a top-level member of a struct instance type T, derived
// from a field selector so renames surface as compile errors.
type FieldToken[T any] struct {
	name string
}

// Name returns the member name the field resolves to.
func (t FieldToken[T]) Name() string { return t.name }

// Pointer returns the JSON Pointer of the member on a top-level instance.
func (t FieldToken[T]) Pointer() string { return Root().Field(t.name).Pointer() }

// FieldOf builds a FieldToken for a top-level field of T. The selector must
// return the address of that field:
//
//	FieldOf(func(p *Player) *int64 { return &p.Score })
func FieldOf[T any, F any](selector func(*T) *F) FieldToken[T] {
	if selector == nil {
		panic("hashschema.FieldOf: selector must not be nil")
	}
	var zero T
	fp := reflect.ValueOf(selector(&zero)).Pointer()
	rv := reflect.ValueOf(&zero).Elem()
	rt := rv.Type()
	if rt.Kind() != reflect.Struct {
		panic("hashschema.FieldOf: T must be a struct")
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() || sf.Type.Size() == 0 {
			continue
		}
		if rv.Field(i).Addr().Pointer() == fp {
			name := ResolveStructKey(sf)
			if name == "" || name == "-" {
				panic("hashschema.FieldOf: selected field is disabled")
			}
			return FieldToken[T]{name: name}
		}
	}
	panic("hashschema.FieldOf: selector must return address of a top-level exported field of T")
}

// Seen reports whether the field's member was present with a non-null value.
func (d Decoded[T]) Seen(f FieldToken[T]) bool { return d.Presence.Seen(f.Pointer()) }

// WasNull reports whether the field's member key was present but null.
func (d Decoded[T]) WasNull(f FieldToken[T]) bool {
	return d.Presence[f.Pointer()]&PresenceWasNull != 0
}

// DefaultApplied reports whether the field's member came from its default.
func (d Decoded[T]) DefaultApplied(f FieldToken[T]) bool {
	return d.Presence.DefaultApplied(f.Pointer())
}
