package hashschema_test

import (
	"errors"
	"testing"

	hs "github.com/reoring/hashschema"
)

func TestAccessors_Struct(t *testing.T) {
	v, err := requiredSchema.Decode(map[string]any{"shaq": 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := requiredSchema.Get(&v, "shaq")
	if err != nil || got != int64(1) {
		t.Fatalf("get shaq = %v, %v", got, err)
	}
	if err := requiredSchema.Set(&v, "shaq", int64(2)); !errors.Is(err, hs.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if _, err := requiredSchema.Get(&v, "kenny"); !errors.Is(err, hs.ErrNotExposed) {
		t.Fatalf("expected ErrNotExposed, got %v", err)
	}
	if _, err := requiredSchema.Get(&v, "nope"); !errors.Is(err, hs.ErrUnknownMember) {
		t.Fatalf("expected ErrUnknownMember, got %v", err)
	}

	if err := requiredSchema.Set(&v, "chuck", 7); err != nil {
		t.Fatalf("set chuck: %v", err)
	}
	if v.Chuck == nil || *v.Chuck != 7 {
		t.Fatalf("chuck = %v", v.Chuck)
	}
	if err := requiredSchema.Set(&v, "chuck", "seven"); err == nil {
		t.Fatal("set must not coerce strings into integers")
	}
	if err := requiredSchema.Set(&v, "chuck", nil); err != nil || v.Chuck != nil {
		t.Fatalf("set nil: %v %v", v.Chuck, err)
	}
}

func TestAccessors_Record(t *testing.T) {
	s := hs.Object[hs.Record]().
		Member("name", hs.String, hs.ExposeAs(hs.ReadWrite)).
		Member("id", hs.Int, hs.ExposeAs(hs.ReadOnly)).
		MustBuild()

	var r hs.Record
	if got, err := s.Get(&r, "name"); err != nil || got != nil {
		t.Fatalf("get on nil record = %v, %v", got, err)
	}
	if err := s.Set(&r, "name", "shaq"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := s.Get(&r, "name"); got != "shaq" {
		t.Fatalf("name = %v", got)
	}
	if err := s.Set(&r, "id", 1); !errors.Is(err, hs.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}
