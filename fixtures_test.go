package hashschema_test

import (
	hs "github.com/reoring/hashschema"
)

type requiredClass struct {
	Shaq  int64  `hashschema:"name=shaq"`
	Chuck *int64 `hashschema:"name=chuck"`
	Kenny int64  `hashschema:"name=kenny"`
	Ernie bool   `hashschema:"name=ernie"`
}

var requiredSchema = hs.Object[requiredClass]().
	Member("shaq", hs.Int, hs.Required(), hs.ExposeAs(hs.ReadOnly)).
	Member("chuck", hs.Int, hs.ExposeAs(hs.ReadWrite)).
	Member("kenny", hs.Int, hs.Required(), hs.Default(11)).
	Member("ernie", hs.Boolean, hs.Required(), hs.Default(false)).
	MustBuild()

type unrequiredClass struct {
	Shaq  any               `json:"shaq"`
	Chuck []any             `json:"chuck"`
	Kenny map[any]struct{}  `json:"kenny"`
	Ernie map[hs.Symbol]any `json:"ernie"`
}

var unrequiredSchema = hs.Object[unrequiredClass]().
	Member("shaq", nil).
	Member("chuck", nil, hs.Collection(hs.Sequence)).
	Member("kenny", nil, hs.Collection(hs.Set)).
	Member("ernie", nil, hs.Collection(hs.Map)).
	MustBuild()

type simpleNormals struct {
	Shaq  int64     `json:"shaq"`
	Chuck float64   `json:"chuck"`
	Ernie string    `json:"ernie"`
	Kenny hs.Symbol `json:"kenny"`
}

var simpleSchema = hs.Object[simpleNormals]().
	Member("shaq", hs.Int).
	Member("chuck", hs.Float).
	Member("ernie", hs.String).
	Member("kenny", hs.Sym).
	MustBuild()

type boolClass struct {
	Shaq bool `json:"shaq"`
}

var boolSchema = hs.Object[boolClass]().Member("shaq", hs.Boolean, hs.Required()).MustBuild()

type arrayClass struct {
	Shaq  []int64          `json:"shaq"`
	Chuck map[int]struct{} `json:"chuck"`
}

var arraySchema = hs.Object[arrayClass]().
	Member("shaq", hs.Int, hs.Collection(hs.Sequence)).
	Member("chuck", hs.Int, hs.Collection(hs.Set)).
	MustBuild()

type hashClass struct {
	Shaq  map[hs.Symbol]int64 `json:"shaq"`
	Chuck map[string]int64    `json:"chuck"`
}

var hashSchema = hs.Object[hashClass]().
	Member("shaq", hs.Int, hs.Collection(hs.Map)).
	Member("chuck", hs.Int, hs.Collection(hs.Map), hs.Keys(hs.StringKeys)).
	MustBuild()

type nestedObject struct {
	Ernie int64 `json:"ernie"`
}

var nestedSchema = hs.Object[nestedObject]().Member("ernie", hs.Int, hs.Required()).MustBuild()

type topObject struct {
	Shaq  nestedObject                `json:"shaq"`
	Chuck []nestedObject              `json:"chuck"`
	Kenny map[hs.Symbol]*nestedObject `json:"kenny"`
}

var topSchema = hs.Object[topObject]().
	Member("shaq", nestedSchema, hs.Required()).
	Member("chuck", nestedSchema, hs.Collection(hs.Sequence), hs.Required()).
	Member("kenny", nestedSchema, hs.Collection(hs.Map), hs.Required()).
	MustBuild()

type validatedClass struct {
	Shaq  int64   `json:"shaq"`
	Chuck []int64 `json:"chuck"`
}

var validatedSchema = hs.Object[validatedClass]().
	Member("shaq", hs.Int, hs.Validate(func(v int64, errs *[]string) {
		if v < 0 {
			*errs = append(*errs, "bad")
		}
	})).
	Member("chuck", hs.Int, hs.Collection(hs.Sequence), hs.Validate(func(v int64, errs *[]string) {
		if v%2 != 0 {
			*errs = append(*errs, "odd")
		}
	})).
	MustBuild()
