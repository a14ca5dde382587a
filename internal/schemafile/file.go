// Package schemafile loads declarative YAML schema files into a jsoning
// Registry and keeps them fresh with hot reload.
package schemafile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/jsoning"
)

// Built-in "as" kinds. Any other value names a declared type.
const (
	AsTime = "time"
	AsDate = "date"
)

// File is the YAML document shape:
//
//	options:
//	  temporal: true
//	types:
//	  book:
//	    keys:
//	      - key: name
//	    versions:
//	      v2:
//	        - key: book_name
//	          from: name
type File struct {
	Options Options            `yaml:"options"`
	Types   map[string]TypeDef `yaml:"types"`
}

// Options maps onto jsoning registry options.
type Options struct {
	Driver          string `yaml:"driver,omitempty"` // "json" (default) or "yaml"
	MaxDepth        int    `yaml:"max_depth,omitempty"`
	VersionFallback bool   `yaml:"version_fallback,omitempty"`
	Temporal        bool   `yaml:"temporal,omitempty"`
	Timezone        string `yaml:"timezone,omitempty"` // IANA name; empty keeps each value's zone
}

// TypeDef declares one type. Keys belong to the default version.
type TypeDef struct {
	Keys     []KeyDef            `yaml:"keys"`
	Versions map[string][]KeyDef `yaml:"versions,omitempty"`
}

// KeyDef declares one output key.
type KeyDef struct {
	Key     string `yaml:"key"`
	From    string `yaml:"from,omitempty"`
	Default any    `yaml:"default,omitempty"`
	Null    *bool  `yaml:"null,omitempty"`
	As      string `yaml:"as,omitempty"`
}

// UnmarshalYAML decodes one key definition. It matches option names by their
// scalar text because a bare null key carries the !!null tag.
func (k *KeyDef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: key definition must be a mapping", n.Line)
	}
	var out KeyDef
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, val := n.Content[i], n.Content[i+1]
		var err error
		switch name.Value {
		case "key":
			err = val.Decode(&out.Key)
		case "from":
			err = val.Decode(&out.From)
		case "default":
			err = val.Decode(&out.Default)
		case "null":
			var b bool
			if err = val.Decode(&b); err == nil {
				out.Null = &b
			}
		case "as":
			err = val.Decode(&out.As)
		default:
			return fmt.Errorf("line %d: unknown key option %q", name.Line, name.Value)
		}
		if err != nil {
			return fmt.Errorf("key option %q: %w", name.Value, err)
		}
	}
	*k = out
	return nil
}

// Accessor returns the source field name of k.
func (k KeyDef) Accessor() string {
	if k.From != "" {
		return k.From
	}
	return k.Key
}

// options renders k in dsl.Options form.
func (k KeyDef) options() map[string]any {
	o := map[string]any{}
	if k.From != "" {
		o["from"] = k.From
	}
	if k.Default != nil {
		o["default"] = k.Default
	}
	if k.Null != nil {
		o["null"] = *k.Null
	}
	return o
}

// LoadFile loads and parses a YAML schema file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names, "as" references and the driver option.
func (f *File) Validate() error {
	switch f.Options.Driver {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("schema: unknown driver %q", f.Options.Driver)
	}
	if f.Options.MaxDepth < 0 {
		return fmt.Errorf("schema: max_depth must not be negative")
	}
	if len(f.Types) == 0 {
		return fmt.Errorf("schema: no types declared")
	}
	for _, name := range f.TypeNames() {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("schema: empty type name")
		}
		td := f.Types[name]
		if err := f.validateKeys(name, jsoning.DefaultVersion, td.Keys); err != nil {
			return err
		}
		for v, keys := range td.Versions {
			if v == "" {
				return fmt.Errorf("schema: type %s: empty version name", name)
			}
			if err := f.validateKeys(name, v, keys); err != nil {
				return err
			}
		}
	}
	_, err := f.hints()
	return err
}

func (f *File) validateKeys(typ, version string, keys []KeyDef) error {
	for i, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("schema: type %s version %s: key #%d has no name", typ, version, i)
		}
		switch k.As {
		case "":
		case AsTime, AsDate:
			if !f.Options.Temporal {
				return fmt.Errorf("schema: type %s key %s: as %q requires options.temporal", typ, k.Key, k.As)
			}
		default:
			if _, ok := f.Types[k.As]; !ok {
				return fmt.Errorf("schema: type %s key %s: as refers to undeclared type %q", typ, k.Key, k.As)
			}
		}
	}
	return nil
}

// TypeNames lists declared types, sorted.
func (f *File) TypeNames() []string {
	names := make([]string, 0, len(f.Types))
	for n := range f.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// hints collects the "as" kind per type and folded accessor. One accessor
// cannot be read as two different kinds.
func (f *File) hints() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(f.Types))
	for name, td := range f.Types {
		h := map[string]string{}
		all := append([]KeyDef(nil), td.Keys...)
		for _, keys := range td.Versions {
			all = append(all, keys...)
		}
		for _, k := range all {
			if k.As == "" {
				continue
			}
			acc := fold(k.Accessor())
			if prev, ok := h[acc]; ok && prev != k.As {
				return nil, fmt.Errorf("schema: type %s: field %s read as both %q and %q", name, k.Accessor(), prev, k.As)
			}
			h[acc] = k.As
		}
		out[name] = h
	}
	return out, nil
}

func fold(s string) string { return strings.ToLower(strings.ReplaceAll(s, "_", "")) }
