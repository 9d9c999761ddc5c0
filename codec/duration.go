package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/reoring/hashschema"
)

// Duration is the primitive name RegisterDuration uses.
const Duration hashschema.Primitive = "duration"

// DurationString returns a Coercion between Go duration strings ("1m30s")
// and time.Duration. Integers are taken as nanoseconds.
func DurationString() hashschema.Coercion {
	return hashschema.Coercion{
		Type:   reflect.TypeFor[time.Duration](),
		Decode: decodeDuration,
		Encode: func(v any) any { return v.(time.Duration).String() },
	}
}

// RegisterDuration adds the Duration primitive to r.
func RegisterDuration(r *hashschema.Registry) error { return r.Register(Duration, DurationString()) }

func decodeDuration(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, &hashschema.CoercionError{Primitive: Duration, Value: raw, Msg: fmt.Sprintf("invalid duration: %q", v)}
		}
		return d, nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(rv.Int()), nil
	}
	return nil, &hashschema.CoercionError{Primitive: Duration, Value: raw, Msg: fmt.Sprintf("cannot parse duration from %T", raw)}
}
