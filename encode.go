package hashschema

import (
	"fmt"
	"reflect"
	"sort"
)

// get returns the stored slot value; invalid when a Record lacks the member.
func (ts *typeSchema) get(inst reflect.Value, m *member) reflect.Value {
	if ts.record {
		if !inst.IsValid() || inst.IsNil() {
			return reflect.Value{}
		}
		return inst.MapIndex(reflect.ValueOf(m.Name))
	}
	return inst.Field(m.field)
}

func (ts *typeSchema) encode(inst reflect.Value) map[string]any {
	if inst.Kind() == reflect.Pointer || inst.Kind() == reflect.Interface {
		inst = unwrap(inst)
	}
	out := make(map[string]any, len(ts.members))
	for _, m := range ts.members {
		out[m.Name] = encodeMember(m, ts.get(inst, m))
	}
	return out
}

func encodeMember(m *member, v reflect.Value) any {
	if m.Kind == Scalar {
		return toRaw(m, v)
	}
	c := unwrap(v)
	switch m.Kind {
	case Sequence:
		if !c.IsValid() {
			return []any{}
		}
		out := make([]any, c.Len())
		for i := range out {
			out[i] = toRaw(m, c.Index(i))
		}
		return out
	case Set:
		if !c.IsValid() {
			return []any{}
		}
		out := make([]any, 0, c.Len())
		for _, k := range c.MapKeys() {
			out = append(out, toRaw(m, k))
		}
		// map iteration is random; order the rendering for stable output
		sort.SliceStable(out, func(i, j int) bool { return fmt.Sprint(out[i]) < fmt.Sprint(out[j]) })
		return out
	case Map:
		out := map[string]any{}
		if !c.IsValid() {
			return out
		}
		it := c.MapRange()
		for it.Next() {
			out[it.Key().String()] = toRaw(m, it.Value())
		}
		return out
	}
	return nil
}

// toRaw renders one element: through its schema when it has one, through the
// declared primitive, through Mapper, or unchanged.
func toRaw(m *member, v reflect.Value) any {
	if v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil
	}
	d := unwrap(v)
	if m.nested != nil && d.Type() == m.nested.typ {
		return m.nested.encode(d)
	}
	if ts := boundSchema(d.Type()); ts != nil {
		return ts.encode(d)
	}
	if c := m.coercion; c != nil {
		if d.Type().AssignableTo(c.Type) {
			return c.Encode(d.Interface())
		}
		if fam := familyOf(d.Kind()); fam != familyOther && fam == familyOf(c.Type.Kind()) {
			if overflows(d, c.Type) {
				// encoders render out-of-range values in their own kind
				return c.Encode(d.Interface())
			}
			return c.Encode(d.Convert(c.Type).Interface())
		}
	}
	if v.CanInterface() {
		if mp, ok := v.Interface().(Mapper); ok {
			return mp.ToMap()
		}
	}
	return d.Interface()
}
