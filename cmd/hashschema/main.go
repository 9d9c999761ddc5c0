package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"github.com/reoring/hashschema"
	"github.com/reoring/hashschema/codec"
	"github.com/reoring/hashschema/jsonschema"
	"github.com/reoring/hashschema/schemafile"
	"github.com/reoring/hashschema/source"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "types":
		return typesCmd(args[1:], stdout, stderr)
	case "decode":
		return decodeCmd(args[1:], stdin, stdout, stderr)
	case "jsonschema":
		return jsonSchemaCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "hashschema CLI\n\nUsage:\n  hashschema types -schema schema.yaml\n  hashschema decode -schema schema.yaml -type T [-in file|-] [-format json|yaml|msgpack] [-out json|yaml|msgpack] [-dump] [-v]\n  hashschema jsonschema -schema schema.yaml -type T\n\nNotes:\n  - Catalogs may use the primitives time and duration in addition to the builtins.")
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).Level(lvl)
}

func loadCatalog(path string, log zerolog.Logger) (*schemafile.Catalog, error) {
	r := hashschema.NewRegistry()
	if err := codec.RegisterTime(r); err != nil {
		return nil, err
	}
	if err := codec.RegisterDuration(r); err != nil {
		return nil, err
	}
	return schemafile.LoadFile(path, schemafile.WithRegistry(r), schemafile.WithLogger(log))
}

func typesCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("types", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath string
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "schema catalog (YAML)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" {
		fs.Usage()
		return exitUsage
	}
	log := newLogger(stderr, verbose)

	c, err := loadCatalog(schemaPath, log)
	if err != nil {
		log.Error().Err(err).Str("schema", schemaPath).Msg("load failed")
		return exitFail
	}
	for _, name := range c.Names() {
		s, _ := c.Schema(name)
		fmt.Fprintln(stdout, name)
		for _, m := range s.Members() {
			fmt.Fprintf(stdout, "  %s\n", describeMember(m))
		}
	}
	return exitOK
}

func describeMember(m hashschema.Member) string {
	vt := "raw"
	switch t := m.ValueType.(type) {
	case hashschema.Primitive:
		vt = string(t)
	case *hashschema.Schema[hashschema.Record]:
		vt = t.Name()
	}
	parts := []string{m.Name, m.Kind.String(), vt}
	if m.Required {
		parts = append(parts, "required")
	}
	if m.Default != nil {
		parts = append(parts, fmt.Sprintf("default=%v", m.Default))
	}
	if m.NoCollections {
		parts = append(parts, "no_collections")
	}
	if m.Kind == hashschema.Map {
		parts = append(parts, "keys="+m.KeyMode.String())
	}
	if m.Expose != hashschema.ExposeNone {
		parts = append(parts, m.Expose.String())
	}
	return strings.Join(parts, " ")
}

func jsonSchemaCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, typeName string
	fs.StringVar(&schemaPath, "schema", "", "schema catalog (YAML)")
	fs.StringVar(&typeName, "type", "", "type to export")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" || typeName == "" {
		fs.Usage()
		return exitUsage
	}
	log := newLogger(stderr, false)

	c, err := loadCatalog(schemaPath, log)
	if err != nil {
		log.Error().Err(err).Str("schema", schemaPath).Msg("load failed")
		return exitFail
	}
	s, ok := c.Schema(typeName)
	if !ok {
		log.Error().Str("type", typeName).Strs("known", c.Names()).Msg("unknown type")
		return exitUsage
	}
	b, err := source.Marshal(source.JSON, jsonschema.Export(s))
	if err != nil {
		log.Error().Err(err).Msg("encode failed")
		return exitFail
	}
	_, _ = stdout.Write(b)
	return exitOK
}

func decodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, typeName, in, inFormat, outFormat string
	var dump, verbose bool
	fs.StringVar(&schemaPath, "schema", "", "schema catalog (YAML)")
	fs.StringVar(&typeName, "type", "", "type to decode")
	fs.StringVar(&in, "in", "-", "input file, - for stdin")
	fs.StringVar(&inFormat, "format", "", "input format (default: from -in extension, else json)")
	fs.StringVar(&outFormat, "out", "", "output format (default: input format)")
	fs.BoolVar(&dump, "dump", false, "dump the decoded instance instead of encoding it")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" || typeName == "" {
		fs.Usage()
		return exitUsage
	}
	log := newLogger(stderr, verbose)

	inF, err := inputFormat(in, inFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	outF := inF
	if outFormat != "" {
		if outF, err = source.ParseFormat(outFormat); err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
	}

	c, err := loadCatalog(schemaPath, log)
	if err != nil {
		log.Error().Err(err).Str("schema", schemaPath).Msg("load failed")
		return exitFail
	}
	s, ok := c.Schema(typeName)
	if !ok {
		log.Error().Str("type", typeName).Strs("known", c.Names()).Msg("unknown type")
		return exitUsage
	}

	raw, err := readInput(in, inF, stdin)
	if err != nil {
		log.Error().Err(err).Str("in", in).Msg("read failed")
		return exitFail
	}
	log.Debug().Str("type", typeName).Str("format", string(inF)).Msg("decoding")

	rec, err := s.Decode(raw)
	if err != nil {
		if iss, ok := hashschema.AsIssues(err); ok {
			for _, it := range iss {
				log.Error().Str("path", it.Path).Str("code", it.Code).Msg(it.Message)
			}
		}
		var de *hashschema.DecodeError
		if !errors.As(err, &de) {
			log.Error().Err(err).Msg("decode failed")
		}
		return exitFail
	}

	if dump {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Fdump(stdout, rec)
		return exitOK
	}
	b, err := source.Marshal(outF, s.Encode(rec))
	if err != nil {
		log.Error().Err(err).Msg("encode failed")
		return exitFail
	}
	if _, err := stdout.Write(b); err != nil {
		return exitFail
	}
	return exitOK
}

func inputFormat(in, name string) (source.Format, error) {
	if name != "" {
		return source.ParseFormat(name)
	}
	if f, ok := source.FormatFromPath(in); ok {
		return f, nil
	}
	return source.JSON, nil
}

func readInput(in string, f source.Format, stdin io.Reader) (any, error) {
	if in == "-" {
		return source.Read(stdin, f)
	}
	fh, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return source.Read(fh, f)
}
