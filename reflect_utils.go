package hashschema

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// member name.
// Priority: hashschema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("hashschema"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "-" {
				return "-"
			}
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

// structKeys maps resolved member names to field indexes of the struct type t.
// Embedded structs are not flattened.
func structKeys(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "" || name == "-" {
			continue
		}
		out[name] = i
	}
	return out
}

var (
	anyType      = reflect.TypeFor[any]()
	symbolType   = reflect.TypeFor[Symbol]()
	stringType   = reflect.TypeFor[string]()
	recordType   = reflect.TypeFor[Record]()
	emptyStruct  = reflect.TypeFor[struct{}]()
	messagesType = reflect.TypeFor[*[]string]()
)

func isRawAny(t reflect.Type) bool { return t.Kind() == reflect.Interface && t.NumMethod() == 0 }

// isMapShaped reports whether v is a map value (of any key/value types).
func isMapShaped(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Map
}

// isIterable reports whether v is a slice or array. Strings are not iterable.
func isIterable(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func isCollectionShaped(v any) bool { return isMapShaped(v) || isIterable(v) }

// isNull treats untyped nil and nil pointers/interfaces as null. Zero values
// such as false or 0 are never null.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// unwrap strips interface and pointer layers. A nil layer yields an invalid Value.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

type kindFamily int

const (
	familyOther kindFamily = iota
	familyString
	familyInt
	familyFloat
	familyBool
)

func familyOf(k reflect.Kind) kindFamily {
	switch k {
	case reflect.String:
		return familyString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return familyInt
	case reflect.Float32, reflect.Float64:
		return familyFloat
	case reflect.Bool:
		return familyBool
	}
	return familyOther
}

// fits reports whether values of type from can be stored into a slot of type to,
// either directly, through a basic conversion within one kind family, or
// behind one pointer level.
func fits(from, to reflect.Type) bool {
	if from.AssignableTo(to) {
		return true
	}
	if to.Kind() == reflect.Pointer {
		return fits(from, to.Elem())
	}
	f := familyOf(from.Kind())
	return f != familyOther && f == familyOf(to.Kind()) && from.ConvertibleTo(to)
}
