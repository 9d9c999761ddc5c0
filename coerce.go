package hashschema

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	trueTokens  = map[string]struct{}{"true": {}, "t": {}, "on": {}, "yes": {}}
	falseTokens = map[string]struct{}{"false": {}, "f": {}, "off": {}, "no": {}}
)

// StringForm renders scalars (strings, numbers, booleans, fmt.Stringer and
// encoding.TextMarshaler values) as text. Collections and other composite
// values have no string form.
func StringForm(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}

func anyString(v any) string {
	if s, ok := StringForm(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

func decodeString(raw any) (any, error) { return anyString(raw), nil }

func decodeSymbol(raw any) (any, error) { return Intern(anyString(raw)), nil }

func decodeInt(raw any) (any, error) {
	s, ok := StringForm(raw)
	if !ok {
		return nil, &CoercionError{Primitive: Int, Value: raw, Msg: fmt.Sprintf("cannot parse integer from %T", raw)}
	}
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	// above MaxInt64 only uint64 can hold it; fit range checks the slot
	if u, uerr := strconv.ParseUint(s, 10, 64); uerr == nil {
		return u, nil
	}
	return nil, &CoercionError{Primitive: Int, Value: raw, Msg: fmt.Sprintf("invalid value for integer: %q", s)}
}

func decodeFloat(raw any) (any, error) {
	s, ok := StringForm(raw)
	if !ok {
		return nil, &CoercionError{Primitive: Float, Value: raw, Msg: fmt.Sprintf("cannot parse float from %T", raw)}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &CoercionError{Primitive: Float, Value: raw, Msg: fmt.Sprintf("invalid value for float: %q", s)}
	}
	return f, nil
}

func decodeBool(raw any) (any, error) {
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	s, ok := StringForm(raw)
	if !ok {
		return nil, &CoercionError{Primitive: Boolean, Value: raw, Msg: fmt.Sprintf("cannot parse boolean from %T", raw)}
	}
	tok := strings.ToLower(s)
	if _, ok := trueTokens[tok]; ok {
		return true, nil
	}
	if _, ok := falseTokens[tok]; ok {
		return false, nil
	}
	return nil, &CoercionError{Primitive: Boolean, Value: raw, Msg: "unknown value when parsing boolean: " + s}
}

func encodeIdentity(v any) any { return v }

func encodeInt(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u > math.MaxInt64 {
			return u
		}
		return int64(rv.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	}
	return v
}

func encodeFloat(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		return rv.Float()
	}
	return v
}
