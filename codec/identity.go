package codec

import (
	"fmt"
	"reflect"

	"github.com/reoring/hashschema"
)

// Identity returns a Coercion for values that already arrive as T, such as
// values produced by a typed decoder upstream. Anything else is rejected;
// encoding returns the value unchanged.
func Identity[T any](p hashschema.Primitive) hashschema.Coercion {
	return hashschema.Coercion{
		Type: reflect.TypeFor[T](),
		Decode: func(raw any) (any, error) {
			if v, ok := raw.(T); ok {
				return v, nil
			}
			var zero T
			return nil, &hashschema.CoercionError{Primitive: p, Value: raw, Msg: fmt.Sprintf("expected %T, got %T", zero, raw)}
		},
		Encode: func(v any) any { return v },
	}
}
