// Package schemafile builds hashschema Type Schemas from a YAML catalog so
// schemas can be declared without Go code. Every type decodes into a
// hashschema.Record.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/hashschema"
)

var (
	ErrUnknownType   = errors.New("schemafile: unknown type")
	ErrCycle         = errors.New("schemafile: type reference cycle")
	ErrDuplicateType = errors.New("schemafile: duplicate type")
)

// Catalog is a set of built schemas loaded from one file.
type Catalog struct {
	order   []string
	schemas map[string]*hashschema.Schema[hashschema.Record]
}

type options struct {
	registry   *hashschema.Registry
	logger     zerolog.Logger
	validators map[string]Validator
}

// Option configures Load.
type Option func(*options)

// WithRegistry selects the registry the catalog's schemas use. A fresh
// registry with the builtin primitives is used otherwise.
func WithRegistry(r *hashschema.Registry) Option { return func(o *options) { o.registry = r } }

// WithLogger sets the logger passed to every schema.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithValidator adds a named validator usable from "validate" lists.
func WithValidator(name string, v Validator) Option {
	return func(o *options) { o.validators[name] = v }
}

// LoadFile reads and builds the catalog at path.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse builds a catalog from YAML. Unknown keys are rejected.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return Build(f, opts...)
}

// Build resolves references between the declared types and builds one
// schema per type, dependencies first.
func Build(f File, opts ...Option) (*Catalog, error) {
	o := options{logger: zerolog.Nop(), validators: map[string]Validator{}}
	for k, v := range builtinValidators {
		o.validators[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = hashschema.NewRegistry()
	}

	decls := make(map[string]TypeDecl, len(f.Types))
	for _, td := range f.Types {
		if _, dup := decls[td.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, td.Name)
		}
		if _, ok := o.registry.Lookup(hashschema.Primitive(td.Name)); ok {
			return nil, fmt.Errorf("schemafile: type %q shadows a primitive", td.Name)
		}
		decls[td.Name] = td
	}

	c := &Catalog{schemas: make(map[string]*hashschema.Schema[hashschema.Record], len(decls))}
	order, err := buildOrder(f.Types, decls)
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		s, err := c.build(decls[name], &o)
		if err != nil {
			return nil, err
		}
		c.schemas[name] = s
		o.logger.Debug().Str("type", name).Int("members", len(decls[name].Members)).Msg("type built")
	}
	for _, td := range f.Types {
		c.order = append(c.order, td.Name)
	}
	return c, nil
}

// buildOrder sorts types so each comes after every type it references.
func buildOrder(types []TypeDecl, decls map[string]TypeDecl) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(types))
	var out []string
	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(stack, name), " -> "))
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, m := range decls[name].Members {
			if _, ok := decls[m.Type]; ok {
				if err := visit(m.Type, stack); err != nil {
					return err
				}
			}
		}
		state[name] = done
		out = append(out, name)
		return nil
	}
	for _, td := range types {
		if err := visit(td.Name, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Catalog) build(td TypeDecl, o *options) (*hashschema.Schema[hashschema.Record], error) {
	b := hashschema.Object[hashschema.Record](
		hashschema.WithName(td.Name),
		hashschema.WithRegistry(o.registry),
		hashschema.WithLogger(o.logger),
	)
	for _, md := range td.Members {
		vt, err := c.valueType(td.Name, md, o.registry)
		if err != nil {
			return nil, err
		}
		mopts, err := memberOptions(td.Name, md, o.validators)
		if err != nil {
			return nil, err
		}
		b.Member(md.Name, vt, mopts...)
	}
	return b.Build()
}

func (c *Catalog) valueType(typeName string, md MemberDecl, r *hashschema.Registry) (hashschema.ValueType, error) {
	if md.Type == "" {
		return nil, nil
	}
	if s, ok := c.schemas[md.Type]; ok {
		return s, nil
	}
	if _, ok := r.Lookup(hashschema.Primitive(md.Type)); ok {
		return hashschema.Primitive(md.Type), nil
	}
	return nil, fmt.Errorf("%w %q referenced by %s.%s", ErrUnknownType, md.Type, typeName, md.Name)
}

func memberOptions(typeName string, md MemberDecl, validators map[string]Validator) ([]hashschema.MemberOption, error) {
	var opts []hashschema.MemberOption
	fail := func(format string, args ...any) error {
		return fmt.Errorf("schemafile: %s.%s: %s", typeName, md.Name, fmt.Sprintf(format, args...))
	}
	if md.Collection != "" {
		k, ok := hashschema.ParseKind(md.Collection)
		if !ok {
			return nil, fail("unknown collection %q", md.Collection)
		}
		opts = append(opts, hashschema.Collection(k))
	}
	if md.Required {
		opts = append(opts, hashschema.Required())
	}
	if md.Default != nil {
		opts = append(opts, hashschema.Default(md.Default))
	}
	if md.NoCollections {
		opts = append(opts, hashschema.NoCollections())
	}
	switch md.Keys {
	case "":
	case "string":
		opts = append(opts, hashschema.Keys(hashschema.StringKeys))
	case "interned", "symbol":
		opts = append(opts, hashschema.Keys(hashschema.InternedKeys))
	default:
		return nil, fail("unknown key mode %q", md.Keys)
	}
	switch md.Expose {
	case "", "none":
	case "read_only":
		opts = append(opts, hashschema.ExposeAs(hashschema.ReadOnly))
	case "read_write":
		opts = append(opts, hashschema.ExposeAs(hashschema.ReadWrite))
	default:
		return nil, fail("unknown expose %q", md.Expose)
	}
	if len(md.Validate) > 0 {
		vs := make([]Validator, 0, len(md.Validate))
		for _, name := range md.Validate {
			v, ok := validators[name]
			if !ok {
				return nil, fail("unknown validator %q (known: %s)", name, strings.Join(sortedKeys(validators), ", "))
			}
			vs = append(vs, v)
		}
		opts = append(opts, hashschema.Validate(chain(vs)))
	}
	return opts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Names lists the types in file order.
func (c *Catalog) Names() []string { return append([]string(nil), c.order...) }

// Schema returns the schema built for name.
func (c *Catalog) Schema(name string) (*hashschema.Schema[hashschema.Record], bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Decode decodes raw with the named type.
func (c *Catalog) Decode(name string, raw any) (hashschema.Record, error) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return s.Decode(raw)
}

// Encode encodes r with the named type.
func (c *Catalog) Encode(name string, r hashschema.Record) (map[string]any, error) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return s.Encode(r), nil
}
