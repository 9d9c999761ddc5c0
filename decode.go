package hashschema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

func gotType(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

func (ts *typeSchema) decodeRoot(raw any, pm PresenceMap) (reflect.Value, error) {
	v, err := ts.decode(raw, Root(), pm)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			ts.logger.Debug().Str("type", ts.name).Str("code", de.Code).Str("path", de.Path).Msg("decode failed")
		}
		return reflect.Value{}, err
	}
	return v, nil
}

// lookupRaw fetches name from a raw map, trying the interned identifier key
// before the plain string key. found reports whether either key exists, even
// with a null value.
func lookupRaw(src reflect.Value, name string) (v any, found bool) {
	kt := src.Type().Key()
	for _, k := range [...]any{Intern(name), name} {
		kv := reflect.ValueOf(k)
		if !kv.Type().AssignableTo(kt) {
			if kt.Kind() != reflect.String {
				continue
			}
			kv = kv.Convert(kt)
		}
		ev := src.MapIndex(kv)
		if !ev.IsValid() {
			continue
		}
		found = true
		if x := ev.Interface(); !isNull(x) {
			return x, true
		}
	}
	return nil, found
}

func (ts *typeSchema) newInstance() reflect.Value {
	if ts.record {
		return reflect.MakeMapWithSize(ts.typ, len(ts.members))
	}
	return reflect.New(ts.typ).Elem()
}

func (ts *typeSchema) assign(inst reflect.Value, m *member, v reflect.Value) {
	if ts.record {
		inst.SetMapIndex(reflect.ValueOf(m.Name), v)
		return
	}
	inst.Field(m.field).Set(v)
}

func (ts *typeSchema) decode(raw any, path PathRef, pm PresenceMap) (reflect.Value, error) {
	if !isMapShaped(raw) {
		return reflect.Value{}, &DecodeError{Code: CodeNotAMap, Path: path.Pointer(), Got: gotType(raw)}
	}
	src := reflect.ValueOf(raw)

	present := make([]any, len(ts.members))
	var acceptable []*member
	var missing []string
	for i, m := range ts.members {
		v, found := lookupRaw(src, m.Name)
		p := path.Field(m.Name).Pointer()
		if v != nil {
			present[i] = v
			pm.mark(p, PresenceSeen)
			continue
		}
		if found {
			pm.mark(p, PresenceWasNull)
		}
		if m.Required && m.Default == nil {
			missing = append(missing, m.Name)
			continue
		}
		acceptable = append(acceptable, m)
	}
	if len(missing) > 0 {
		return reflect.Value{}, &DecodeError{Code: CodeRequired, Path: path.Pointer(), Missing: missing}
	}

	inst := ts.newInstance()
	for _, m := range acceptable {
		v, err := missingValue(m, path.Field(m.Name), pm)
		if err != nil {
			return reflect.Value{}, err
		}
		ts.assign(inst, m, v)
	}
	for i, m := range ts.members {
		if present[i] == nil {
			continue
		}
		v, err := decodeMember(m, present[i], path.Field(m.Name), pm)
		if err != nil {
			return reflect.Value{}, err
		}
		ts.assign(inst, m, v)
	}
	return inst, nil
}

func missingValue(m *member, p PathRef, pm PresenceMap) (reflect.Value, error) {
	switch m.Kind {
	case Sequence:
		return reflect.MakeSlice(m.slot, 0, 0), nil
	case Set, Map:
		return reflect.MakeMap(m.slot), nil
	}
	if m.Default == nil {
		return reflect.Zero(m.slot), nil
	}
	// The default was checked at registration. Raw defaults are copied so
	// instances never share map or slice state with Member.Default.
	def := m.Default
	if m.coercion == nil && m.nested == nil {
		def = cloneRaw(def)
	}
	v, err := parseSingle(m, def, p, nil, false)
	if err != nil {
		return reflect.Value{}, err
	}
	pm.mark(p.Pointer(), PresenceDefaultApplied)
	return v, nil
}

func decodeMember(m *member, raw any, p PathRef, pm PresenceMap) (reflect.Value, error) {
	switch m.Kind {
	case Scalar:
		if m.NoCollections && isCollectionShaped(raw) {
			return reflect.Value{}, &DecodeError{Code: CodeUnexpectedCollection, Path: p.Pointer(), Member: m.Name, Got: gotType(raw)}
		}
		return parseSingle(m, raw, p, pm, true)
	case Map:
		return decodeMap(m, raw, p, pm)
	case Sequence:
		if !isIterable(raw) {
			return reflect.Value{}, &DecodeError{Code: CodeExpectedCollection, Path: p.Pointer(), Member: m.Name, Got: gotType(raw)}
		}
		rv := reflect.ValueOf(raw)
		out := reflect.MakeSlice(m.slot, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := parseSingle(m, rv.Index(i).Interface(), p.Index(i), pm, true)
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, v)
		}
		return out, nil
	case Set:
		if !isIterable(raw) {
			return reflect.Value{}, &DecodeError{Code: CodeExpectedCollection, Path: p.Pointer(), Member: m.Name, Got: gotType(raw)}
		}
		rv := reflect.ValueOf(raw)
		out := reflect.MakeMapWithSize(m.slot, rv.Len())
		unit := reflect.ValueOf(struct{}{})
		for i := 0; i < rv.Len(); i++ {
			v, err := parseSingle(m, rv.Index(i).Interface(), p.Index(i), pm, true)
			if err != nil {
				return reflect.Value{}, err
			}
			if !v.Comparable() {
				return reflect.Value{}, &DecodeError{Code: CodeUnhashable, Path: p.Index(i).Pointer(), Member: m.Name, Got: v.Type().String()}
			}
			out.SetMapIndex(v, unit)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("hashschema: unreachable kind %s", m.Kind)
}

type mapEntry struct {
	key string
	val any
}

func decodeMap(m *member, raw any, p PathRef, pm PresenceMap) (reflect.Value, error) {
	if !isMapShaped(raw) {
		return reflect.Value{}, &DecodeError{Code: CodeExpectedMap, Path: p.Pointer(), Member: m.Name, Got: gotType(raw)}
	}
	rv := reflect.ValueOf(raw)
	entries := make([]mapEntry, 0, rv.Len())
	seen := make(map[string]struct{}, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		k := anyString(it.Key().Interface())
		if m.KeyMode == InternedKeys {
			k = string(Intern(k))
		}
		if _, dup := seen[k]; dup {
			return reflect.Value{}, &DecodeError{Code: CodeDuplicateKey, Path: p.Field(k).Pointer(), Member: m.Name}
		}
		seen[k] = struct{}{}
		entries = append(entries, mapEntry{key: k, val: it.Value().Interface()})
	}
	// keys in sorted order for deterministic failure reporting
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	kt := m.slot.Key()
	out := reflect.MakeMapWithSize(m.slot, len(entries))
	for _, e := range entries {
		v, err := parseSingle(m, e.val, p.Field(e.key), pm, true)
		if err != nil {
			return reflect.Value{}, err
		}
		var kv reflect.Value
		if m.KeyMode == InternedKeys {
			kv = reflect.ValueOf(Intern(e.key)).Convert(kt)
		} else {
			kv = reflect.ValueOf(e.key).Convert(kt)
		}
		out.SetMapIndex(kv, v)
	}
	return out, nil
}

// parseSingle decodes one element according to the member's value type, runs
// the validation hook when hook is set, and returns a value of m.elem.
func parseSingle(m *member, raw any, p PathRef, pm PresenceMap, hook bool) (reflect.Value, error) {
	var v reflect.Value
	switch {
	case m.nested != nil:
		if !isMapShaped(raw) {
			return reflect.Value{}, &DecodeError{Code: CodeExpectedMap, Path: p.Pointer(), Member: m.Name, Got: gotType(raw)}
		}
		nv, err := m.nested.decode(raw, p, pm)
		if err != nil {
			return reflect.Value{}, err
		}
		v = nv
	case m.coercion != nil:
		out, err := m.coercion.Decode(raw)
		if err != nil {
			return reflect.Value{}, &DecodeError{Code: CodeCoercion, Path: p.Pointer(), Member: m.Name, Got: gotType(raw), Err: err}
		}
		v = reflect.ValueOf(out)
	default:
		if raw == nil {
			v = reflect.Zero(m.base)
		} else {
			v = reflect.ValueOf(raw)
		}
	}

	bv, err := fit(v, m.base)
	if err != nil {
		return reflect.Value{}, &DecodeError{Code: CodeCoercion, Path: p.Pointer(), Member: m.Name, Got: gotType(raw), Err: err}
	}
	if hook && m.hook.IsValid() {
		var msgs []string
		m.hook.Call([]reflect.Value{bv, reflect.ValueOf(&msgs)})
		if len(msgs) > 0 {
			return reflect.Value{}, &DecodeError{Code: CodeValidation, Path: p.Pointer(), Member: m.Name, Messages: msgs}
		}
	}
	if m.base != m.elem {
		ptr := reflect.New(m.base)
		ptr.Elem().Set(bv)
		return ptr, nil
	}
	return bv, nil
}

// fit stores v into type t: directly when assignable, otherwise through a
// range-checked conversion within one kind family, or behind a pointer.
func fit(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if t.Kind() == reflect.Pointer {
		inner, err := fit(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	}
	fam := familyOf(v.Kind())
	if fam == familyOther || fam != familyOf(t.Kind()) || !v.Type().ConvertibleTo(t) {
		return reflect.Value{}, &CoercionError{Value: v.Interface(), Msg: fmt.Sprintf("cannot store %s in %s", v.Type(), t)}
	}
	if overflows(v, t) {
		return reflect.Value{}, &CoercionError{Value: v.Interface(), Msg: fmt.Sprintf("value %v overflows %s", v.Interface(), t)}
	}
	return v.Convert(t), nil
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func overflows(v reflect.Value, t reflect.Type) bool {
	z := reflect.Zero(t)
	switch familyOf(t.Kind()) {
	case familyInt:
		if isUnsigned(t.Kind()) {
			if isUnsigned(v.Kind()) {
				return z.OverflowUint(v.Uint())
			}
			return v.Int() < 0 || z.OverflowUint(uint64(v.Int()))
		}
		if isUnsigned(v.Kind()) {
			return v.Uint() > math.MaxInt64 || z.OverflowInt(int64(v.Uint()))
		}
		return z.OverflowInt(v.Int())
	case familyFloat:
		return z.OverflowFloat(v.Float())
	}
	return false
}

// cloneRaw deep-copies maps, slices and arrays; other values are returned as is.
func cloneRaw(v any) any {
	if v == nil {
		return nil
	}
	return cloneValue(reflect.ValueOf(v)).Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := cloneValue(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(c)
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		it := v.MapRange()
		for it.Next() {
			out.SetMapIndex(it.Key(), cloneValue(it.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	}
	return v
}
