package hashschema_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	hs "github.com/reoring/hashschema"
)

func asDecodeError(t *testing.T, err error) *hs.DecodeError {
	t.Helper()
	var de *hs.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T (%v)", err, err)
	}
	return de
}

func TestDecode_MissingRequired(t *testing.T) {
	_, err := requiredSchema.Decode(map[string]any{"chuck": 5})
	if !errors.Is(err, hs.ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
	de := asDecodeError(t, err)
	if !reflect.DeepEqual(de.Missing, []string{"shaq"}) {
		t.Fatalf("missing = %v", de.Missing)
	}
	if !strings.Contains(err.Error(), "required members: shaq") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestDecode_MissingRequiredAggregatesInDeclarationOrder(t *testing.T) {
	s := hs.Object[hs.Record]().
		Member("b", hs.Int, hs.Required()).
		Member("x", hs.Int).
		Member("a", hs.Int, hs.Required()).
		MustBuild()
	_, err := s.Decode(map[string]any{"x": 1})
	de := asDecodeError(t, err)
	if de.Code != hs.CodeRequired || !reflect.DeepEqual(de.Missing, []string{"b", "a"}) {
		t.Fatalf("got code=%s missing=%v", de.Code, de.Missing)
	}
	iss, ok := hs.AsIssues(err)
	if !ok || len(iss) != 2 || iss[0].Path != "/b" || iss[1].Path != "/a" {
		t.Fatalf("issues = %+v", iss)
	}
}

func TestDecode_Defaults(t *testing.T) {
	v, err := requiredSchema.Decode(map[string]any{"shaq": 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Shaq != 1 || v.Kenny != 11 || v.Ernie || v.Chuck != nil {
		t.Fatalf("unexpected instance: %+v", v)
	}

	v, err = requiredSchema.Decode(map[string]any{"shaq": 1, "kenny": 5, "ernie": "yes"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Kenny != 5 || !v.Ernie {
		t.Fatalf("explicit values must win over defaults: %+v", v)
	}
}

func TestDecode_PresenceIsNullCheck(t *testing.T) {
	// zero and false are present values; only nil falls back to the default
	v, err := requiredSchema.Decode(map[string]any{"shaq": 0, "kenny": 0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Kenny != 0 {
		t.Fatalf("kenny = %d, want 0", v.Kenny)
	}

	v, err = requiredSchema.Decode(map[string]any{"shaq": 0, "kenny": nil})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Kenny != 11 {
		t.Fatalf("kenny = %d, want default 11", v.Kenny)
	}

	_, err = requiredSchema.Decode(map[string]any{"shaq": nil})
	if !errors.Is(err, hs.ErrMissingRequired) {
		t.Fatalf("null required member must be missing, got %v", err)
	}
}

func TestDecode_SymbolAndStringKeys(t *testing.T) {
	v, err := requiredSchema.Decode(map[hs.Symbol]any{"shaq": 3})
	if err != nil || v.Shaq != 3 {
		t.Fatalf("symbol keys: %+v %v", v, err)
	}
	// the interned key wins when both are present
	v, err = requiredSchema.Decode(map[any]any{hs.Symbol("shaq"): 4, "shaq": 5})
	if err != nil || v.Shaq != 4 {
		t.Fatalf("mixed keys: %+v %v", v, err)
	}
}

func TestDecode_NotAMap(t *testing.T) {
	for _, in := range []any{nil, 5, "shaq", []any{1}} {
		_, err := requiredSchema.Decode(in)
		if !errors.Is(err, hs.ErrNotAMap) {
			t.Fatalf("input %#v: expected ErrNotAMap, got %v", in, err)
		}
	}
}

func TestDecode_Unrequired(t *testing.T) {
	v, err := unrequiredSchema.Decode(map[string]any{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Shaq != nil || v.Chuck == nil || len(v.Chuck) != 0 || v.Kenny == nil || v.Ernie == nil {
		t.Fatalf("missing collections must be empty, not nil: %+v", v)
	}

	v, err = unrequiredSchema.Decode(map[string]any{
		"shaq":  []any{1},
		"chuck": []any{1, "a", nil},
		"kenny": []any{1, 1, "x"},
		"ernie": map[string]any{"k": 2},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(v.Shaq, []any{1}) {
		t.Fatalf("shaq = %#v", v.Shaq)
	}
	if !reflect.DeepEqual(v.Chuck, []any{1, "a", nil}) {
		t.Fatalf("chuck = %#v", v.Chuck)
	}
	if len(v.Kenny) != 2 {
		t.Fatalf("kenny = %#v", v.Kenny)
	}
	if v.Ernie[hs.Symbol("k")] != 2 {
		t.Fatalf("ernie = %#v", v.Ernie)
	}
}

func TestDecode_SimpleCoercions(t *testing.T) {
	v, err := simpleSchema.Decode(map[string]any{"shaq": "42", "chuck": "1.5", "ernie": 7, "kenny": "sym"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := simpleNormals{Shaq: 42, Chuck: 1.5, Ernie: "7", Kenny: "sym"}
	if v != want {
		t.Fatalf("got %+v want %+v", v, want)
	}

	_, err = simpleSchema.Decode(map[string]any{"shaq": "4x"})
	de := asDecodeError(t, err)
	if de.Code != hs.CodeCoercion || de.Path != "/shaq" || de.Member != "shaq" {
		t.Fatalf("unexpected error: %+v", de)
	}
	var ce *hs.CoercionError
	if !errors.As(err, &ce) || ce.Primitive != hs.Int {
		t.Fatalf("expected wrapped *CoercionError, got %v", err)
	}
}

func TestDecode_Booleans(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true}, {false, false},
		{"true", true}, {"t", true}, {"on", true}, {"yes", true}, {"YES", true},
		{"false", false}, {"f", false}, {"off", false}, {"no", false}, {"Off", false},
	}
	for _, tc := range cases {
		v, err := boolSchema.Decode(map[string]any{"shaq": tc.in})
		if err != nil {
			t.Fatalf("%#v: %v", tc.in, err)
		}
		if v.Shaq != tc.want {
			t.Fatalf("%#v: got %v want %v", tc.in, v.Shaq, tc.want)
		}
	}

	_, err := boolSchema.Decode(map[string]any{"shaq": "derps"})
	if !errors.Is(err, hs.ErrCoercion) || !strings.Contains(err.Error(), "unknown value when parsing boolean: derps") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = boolSchema.Decode(map[string]any{"shaq": []any{"yes"}})
	if err == nil || !strings.Contains(err.Error(), "cannot parse boolean from []interface {}") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecode_Sequences(t *testing.T) {
	v, err := arraySchema.Decode(map[string]any{"shaq": []any{3, "1", 3}, "chuck": []int{2, 2, 1}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(v.Shaq, []int64{3, 1, 3}) {
		t.Fatalf("sequence must keep order and duplicates: %v", v.Shaq)
	}
	if !reflect.DeepEqual(v.Chuck, map[int]struct{}{1: {}, 2: {}}) {
		t.Fatalf("set must deduplicate: %v", v.Chuck)
	}

	_, err = arraySchema.Decode(map[string]any{"shaq": 5})
	de := asDecodeError(t, err)
	if !errors.Is(err, hs.ErrExpectedCollection) || de.Path != "/shaq" {
		t.Fatalf("unexpected error: %+v", de)
	}
	_, err = arraySchema.Decode(map[string]any{"chuck": "1,2"})
	if !errors.Is(err, hs.ErrExpectedCollection) {
		t.Fatalf("strings are not collections: %v", err)
	}

	_, err = arraySchema.Decode(map[string]any{"shaq": []any{1, "x"}})
	de = asDecodeError(t, err)
	if de.Code != hs.CodeCoercion || de.Path != "/shaq/1" {
		t.Fatalf("unexpected error: %+v", de)
	}
}

func TestDecode_Maps(t *testing.T) {
	v, err := hashSchema.Decode(map[string]any{
		"shaq":  map[string]any{"a": 1, "b": "2"},
		"chuck": map[any]any{hs.Symbol("c"): 3},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(v.Shaq, map[hs.Symbol]int64{"a": 1, "b": 2}) {
		t.Fatalf("shaq = %v", v.Shaq)
	}
	if !reflect.DeepEqual(v.Chuck, map[string]int64{"c": 3}) {
		t.Fatalf("chuck = %v", v.Chuck)
	}

	_, err = hashSchema.Decode(map[string]any{"shaq": []any{1}})
	if !errors.Is(err, hs.ErrExpectedMap) {
		t.Fatalf("expected ErrExpectedMap, got %v", err)
	}

	_, err = hashSchema.Decode(map[string]any{"shaq": map[any]any{"a": 1, hs.Symbol("a"): 2}})
	de := asDecodeError(t, err)
	if de.Code != hs.CodeDuplicateKey || de.Path != "/shaq/a" {
		t.Fatalf("unexpected error: %+v", de)
	}

	_, err = hashSchema.Decode(map[string]any{"shaq": map[string]any{"b": "x", "a": "y"}})
	de = asDecodeError(t, err)
	if de.Path != "/shaq/a" {
		t.Fatalf("map entries must fail in key order, got %s", de.Path)
	}
}

func TestDecode_Nested(t *testing.T) {
	raw := map[string]any{
		"shaq":  map[string]any{"ernie": 1},
		"chuck": []any{map[string]any{"ernie": 2}, map[hs.Symbol]any{"ernie": "3"}},
		"kenny": map[string]any{"a": map[string]any{"ernie": 4}},
	}
	v, err := topSchema.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := topObject{
		Shaq:  nestedObject{Ernie: 1},
		Chuck: []nestedObject{{Ernie: 2}, {Ernie: 3}},
		Kenny: map[hs.Symbol]*nestedObject{"a": {Ernie: 4}},
	}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %+v want %+v", v, want)
	}

	raw["chuck"] = []any{map[string]any{"ernie": 2}, map[string]any{}}
	_, err = topSchema.Decode(raw)
	de := asDecodeError(t, err)
	if de.Code != hs.CodeRequired || de.Path != "/chuck/1" || !reflect.DeepEqual(de.Missing, []string{"ernie"}) {
		t.Fatalf("unexpected error: %+v", de)
	}

	raw["chuck"] = []any{}
	raw["shaq"] = 5
	_, err = topSchema.Decode(raw)
	de = asDecodeError(t, err)
	if de.Code != hs.CodeExpectedMap || de.Path != "/shaq" {
		t.Fatalf("unexpected error: %+v", de)
	}
}

func TestDecode_ValidationHooks(t *testing.T) {
	if _, err := validatedSchema.Decode(map[string]any{"shaq": 1, "chuck": []any{2, 4}}); err != nil {
		t.Fatalf("decode: %v", err)
	}

	_, err := validatedSchema.Decode(map[string]any{"shaq": -1})
	de := asDecodeError(t, err)
	if !errors.Is(err, hs.ErrValidation) || !reflect.DeepEqual(de.Messages, []string{"bad"}) {
		t.Fatalf("unexpected error: %+v", de)
	}

	_, err = validatedSchema.Decode(map[string]any{"chuck": []any{2, 3}})
	de = asDecodeError(t, err)
	if de.Path != "/chuck/1" || !reflect.DeepEqual(de.Messages, []string{"odd"}) {
		t.Fatalf("hook must run per element: %+v", de)
	}
	iss := de.Issues()
	if len(iss) != 1 || iss[0].Message != "odd" || iss[0].Rule != "chuck" {
		t.Fatalf("issues = %+v", iss)
	}
}

func TestDecode_NoCollections(t *testing.T) {
	s := hs.Object[hs.Record]().
		Member("shaq", nil, hs.NoCollections()).
		Member("chuck", nil).
		MustBuild()
	if _, err := s.Decode(map[string]any{"chuck": []any{1}, "shaq": "x"}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, in := range []any{[]any{1}, map[string]any{"a": 1}} {
		_, err := s.Decode(map[string]any{"shaq": in})
		if !errors.Is(err, hs.ErrUnexpectedCollection) {
			t.Fatalf("%#v: expected ErrUnexpectedCollection, got %v", in, err)
		}
	}
}

func TestDecode_Overflow(t *testing.T) {
	type small struct {
		N int8  `json:"n"`
		U uint8 `json:"u"`
	}
	s := hs.Object[small]().Member("n", hs.Int).Member("u", hs.Int).MustBuild()
	v, err := s.Decode(map[string]any{"n": "-128", "u": 255})
	if err != nil || v.N != -128 || v.U != 255 {
		t.Fatalf("in-range values: %+v %v", v, err)
	}
	_, err = s.Decode(map[string]any{"n": 300})
	if !errors.Is(err, hs.ErrCoercion) || !strings.Contains(err.Error(), "overflows int8") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = s.Decode(map[string]any{"u": -1})
	if !errors.Is(err, hs.ErrCoercion) {
		t.Fatalf("negative into uint8 must fail, got %v", err)
	}
}

func TestDecode_RecordSetUnhashable(t *testing.T) {
	s := hs.Object[hs.Record]().Member("tags", nil, hs.Collection(hs.Set)).MustBuild()
	v, err := s.Decode(map[string]any{"tags": []any{"a", "b", "a"}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if set := v["tags"].(map[any]struct{}); len(set) != 2 {
		t.Fatalf("tags = %v", set)
	}
	_, err = s.Decode(map[string]any{"tags": []any{"a", []any{1}}})
	de := asDecodeError(t, err)
	if de.Code != hs.CodeUnhashable || de.Path != "/tags/1" {
		t.Fatalf("unexpected error: %+v", de)
	}
}

func TestDecodeWithMeta(t *testing.T) {
	d, err := requiredSchema.DecodeWithMeta(map[string]any{"shaq": 1, "chuck": nil})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.Presence.Seen("/") || !d.Presence.Seen("/shaq") {
		t.Fatalf("presence = %v", d.Presence)
	}
	if d.Presence["/chuck"]&hs.PresenceWasNull == 0 {
		t.Fatalf("chuck must be flagged null: %v", d.Presence)
	}
	if !d.Presence.DefaultApplied("/kenny") || !d.Presence.DefaultApplied("/ernie") || d.Presence.DefaultApplied("/shaq") {
		t.Fatalf("default flags = %v", d.Presence)
	}

	nd, err := topSchema.DecodeWithMeta(map[string]any{
		"shaq":  map[string]any{"ernie": 1},
		"chuck": []any{map[string]any{"ernie": 2}},
		"kenny": map[string]any{},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !nd.Presence.Seen("/chuck/0/ernie") || len(nd.Presence.Under("/shaq")) != 2 {
		t.Fatalf("nested presence = %v", nd.Presence)
	}
}

func TestDecode_PackageWrapper(t *testing.T) {
	v, err := hs.Decode(simpleSchema, map[string]any{"shaq": 9})
	if err != nil || v.Shaq != 9 {
		t.Fatalf("got %+v %v", v, err)
	}
}

func TestDecode_EncodingJSONNumbers(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{"shaq": 1000000, "chuck": 2500000, "ernie": 1e21}`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, err := simpleSchema.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Shaq != 1000000 || v.Chuck != 2500000 || v.Ernie != "1000000000000000000000" {
		t.Fatalf("unexpected instance: %+v", v)
	}
}

func TestDecode_RawDefaultIsNotShared(t *testing.T) {
	s := hs.Object[hs.Record]().
		Member("opts", nil, hs.Required(), hs.Default(map[string]any{"tags": []any{"a"}})).
		MustBuild()
	first, err := s.Decode(map[string]any{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	opts := first["opts"].(map[string]any)
	opts["tags"].([]any)[0] = "changed"
	opts["extra"] = true

	second, err := s.Decode(map[string]any{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"tags": []any{"a"}}
	if !reflect.DeepEqual(second["opts"], want) {
		t.Fatalf("default leaked between instances: %#v", second["opts"])
	}
	if m, _ := s.Lookup("opts"); !reflect.DeepEqual(m.Default, want) {
		t.Fatalf("declared default was mutated: %#v", m.Default)
	}
}

func TestDecode_InternedSymbols(t *testing.T) {
	key := strings.Repeat("k", 3)
	v, err := hashSchema.Decode(map[string]any{"shaq": map[string]any{key: 1}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for k := range v.Shaq {
		if k != hs.Intern("kkk") || k != hs.Symbol("kkk") {
			t.Fatalf("key = %q", k)
		}
	}
	w, err := simpleSchema.Decode(map[string]any{"kenny": "sym"})
	if err != nil || w.Kenny != hs.Intern("sym") {
		t.Fatalf("kenny = %q %v", w.Kenny, err)
	}
}
