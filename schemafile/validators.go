package schemafile

import (
	"reflect"

	"github.com/reoring/hashschema"
)

// Validator checks one decoded element and appends messages on failure.
type Validator func(v any, errs *[]string)

// Builtin validators available to every catalog.
var builtinValidators = map[string]Validator{
	"nonempty":    nonEmpty,
	"positive":    numeric(func(f float64) bool { return f > 0 }, "must be positive"),
	"nonnegative": numeric(func(f float64) bool { return f >= 0 }, "must not be negative"),
}

func nonEmpty(v any, errs *[]string) {
	if s, ok := hashschema.StringForm(v); ok {
		if s == "" {
			*errs = append(*errs, "must not be empty")
		}
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			*errs = append(*errs, "must not be empty")
		}
	}
}

func numeric(ok func(float64) bool, msg string) Validator {
	return func(v any, errs *[]string) {
		rv := reflect.ValueOf(v)
		var f float64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			*errs = append(*errs, "must be a number")
			return
		}
		if !ok(f) {
			*errs = append(*errs, msg)
		}
	}
}

// chain runs every validator in order over the same element.
func chain(vs []Validator) func(any, *[]string) {
	return func(v any, errs *[]string) {
		for _, fn := range vs {
			fn(v, errs)
		}
	}
}
