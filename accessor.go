package hashschema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrUnknownMember = errors.New("hashschema: unknown member")
	ErrNotExposed    = errors.New("hashschema: member is not exposed")
	ErrReadOnly      = errors.New("hashschema: member is read-only")
)

func (s *Schema[T]) exposed(name string, write bool) (*member, error) {
	m, ok := s.ts.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.ts.name, name, ErrUnknownMember)
	}
	switch {
	case m.Expose == ExposeNone:
		return nil, fmt.Errorf("%s.%s: %w", s.ts.name, name, ErrNotExposed)
	case write && m.Expose != ReadWrite:
		return nil, fmt.Errorf("%s.%s: %w", s.ts.name, name, ErrReadOnly)
	}
	return m, nil
}

// Get reads a ReadOnly or ReadWrite member of inst.
func (s *Schema[T]) Get(inst *T, name string) (any, error) {
	m, err := s.exposed(name, false)
	if err != nil {
		return nil, err
	}
	v := s.ts.get(reflect.ValueOf(inst).Elem(), m)
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// Set writes a ReadWrite member of inst. value must fit the member's storage
// type; no coercion is applied.
func (s *Schema[T]) Set(inst *T, name string, value any) error {
	m, err := s.exposed(name, true)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(inst).Elem()
	var v reflect.Value
	if value == nil {
		v = reflect.Zero(m.slot)
	} else if v, err = fit(reflect.ValueOf(value), m.slot); err != nil {
		return fmt.Errorf("%s.%s: %w", s.ts.name, name, err)
	}
	if s.ts.record && rv.IsNil() {
		rv.Set(reflect.MakeMap(s.ts.typ))
	}
	s.ts.assign(rv, m, v)
	return nil
}
