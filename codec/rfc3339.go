package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/reoring/hashschema"
)

// Time is the primitive name RegisterTime uses.
const Time hashschema.Primitive = "time"

// TimeRFC3339 returns a Coercion between RFC3339 strings and time.Time.
// Decoding accepts time.Time values as-is; encoding renders UTC RFC3339Nano.
func TimeRFC3339() hashschema.Coercion {
	return hashschema.Coercion{
		Type:   reflect.TypeFor[time.Time](),
		Decode: decodeTime,
		Encode: func(v any) any { return formatRFC3339Canonical(v.(time.Time)) },
	}
}

// RegisterTime adds the Time primitive to r.
func RegisterTime(r *hashschema.Registry) error { return r.Register(Time, TimeRFC3339()) }

func decodeTime(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	}
	s, ok := hashschema.StringForm(raw)
	if !ok {
		return nil, &hashschema.CoercionError{Primitive: Time, Value: raw, Msg: fmt.Sprintf("cannot parse time from %T", raw)}
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, &hashschema.CoercionError{Primitive: Time, Value: raw, Msg: fmt.Sprintf("invalid RFC3339 time: %q", s)}
	}
	return t, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
