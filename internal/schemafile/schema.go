package schemafile

import (
	"errors"
	"fmt"
	"sort"
	"time"
	_ "time/tzdata" // embedded zoneinfo for the timezone option

	"github.com/rs/zerolog"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/codec"
	"github.com/reoring/jsoning/dsl"
	jyaml "github.com/reoring/jsoning/driver/yaml"
)

// Schema is a File compiled into its own Registry.
type Schema struct {
	file  *File
	reg   *jsoning.Registry
	hints map[string]map[string]string
}

// RegistryOptions translates file options into registry options.
func RegistryOptions(o Options, log zerolog.Logger) ([]jsoning.Option, error) {
	opts := []jsoning.Option{
		jsoning.WithLogger(log),
		jsoning.WithMaxDepth(o.MaxDepth),
		jsoning.WithVersionFallback(o.VersionFallback),
	}
	if o.Driver == "yaml" {
		opts = append(opts, jsoning.WithDriver(jyaml.Driver()))
	}
	if o.Temporal {
		if o.Timezone == "" {
			opts = append(opts, jsoning.WithSetup(codec.RegisterTemporal))
		} else {
			loc, err := time.LoadLocation(o.Timezone)
			if err != nil {
				return nil, fmt.Errorf("schema: timezone: %w", err)
			}
			opts = append(opts, jsoning.WithSetup(codec.TimeIn(loc)))
		}
	}
	return opts, nil
}

// Compile builds a fresh Registry holding every type of f.
func Compile(f *File, log zerolog.Logger) (*Schema, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	opts, err := RegistryOptions(f.Options, log)
	if err != nil {
		return nil, err
	}
	reg, err := jsoning.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := Apply(reg, f); err != nil {
		return nil, err
	}
	hints, _ := f.hints()
	return &Schema{file: f, reg: reg, hints: hints}, nil
}

// Load is LoadFile followed by Compile.
func Load(path string, log zerolog.Logger) (*Schema, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(f, log)
}

// Apply declares every type of f on reg. Errors of all types are joined.
func Apply(reg *jsoning.Registry, f *File) error {
	var errs []error
	for _, name := range f.TypeNames() {
		td := f.Types[name]
		err := dsl.ForKey(reg, jsoning.TypeKey(name), func(s *dsl.Schema) {
			declare(s, td.Keys)
			versions := make([]string, 0, len(td.Versions))
			for v := range td.Versions {
				versions = append(versions, v)
			}
			sort.Strings(versions)
			for _, v := range versions {
				keys := td.Versions[v]
				s.Version(v, func(s *dsl.Schema) { declare(s, keys) })
			}
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func declare(s *dsl.Schema, keys []KeyDef) {
	for _, k := range keys {
		s.KeyWith(k.Key, k.options())
	}
}

// Registry returns the compiled registry.
func (s *Schema) Registry() *jsoning.Registry { return s.reg }

// File returns the source file of s.
func (s *Schema) File() *File { return s.file }

// Types lists declared type names, sorted.
func (s *Schema) Types() []string { return s.file.TypeNames() }

// Versions lists the versions of typ, default first.
func (s *Schema) Versions(typ string) ([]string, error) {
	p, err := s.reg.RequireProtocol(jsoning.TypeKey(typ))
	if err != nil {
		return nil, err
	}
	return p.Versions(), nil
}

// Entity wraps fields as a host object of typ.
func (s *Schema) Entity(typ string, fields map[string]any) (*Entity, error) {
	if _, err := s.reg.RequireProtocol(jsoning.TypeKey(typ)); err != nil {
		return nil, err
	}
	return &Entity{typ: typ, fields: fields, schema: s}, nil
}

// Generate renders fields as typ.
func (s *Schema) Generate(typ string, fields map[string]any, opt jsoning.GenerateOpt) (string, error) {
	e, err := s.Entity(typ, fields)
	if err != nil {
		return "", err
	}
	return s.reg.Generate(e, opt)
}

// GenerateDocument extracts fields as typ without encoding.
func (s *Schema) GenerateDocument(typ string, fields map[string]any, opt jsoning.GenerateOpt) (*jsoning.Document, error) {
	e, err := s.Entity(typ, fields)
	if err != nil {
		return nil, err
	}
	return s.reg.GenerateDocument(e, opt)
}

// Parse reconstructs text as typ.
func (s *Schema) Parse(typ string, data []byte, version string) (*jsoning.Document, error) {
	return s.reg.Parse(data, jsoning.TypeKey(typ), version)
}
