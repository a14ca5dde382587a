package jsoning

import "strings"

// Producer computes a default lazily, once per extraction.
type Producer func() any

// Transform replaces deep coercion for a single field. It receives the value
// after extension-free resolution and its result is emitted as-is.
type Transform func(v any) any

// Mapping is the rule producing one output key from a host object. It is
// immutable once built.
type Mapping struct {
	name      string
	canonical string
	from      string
	def       any
	defFn     Producer
	hasDef    bool
	nullable  bool
	transform Transform
}

// FieldOption configures a Mapping under construction.
type FieldOption func(*Mapping) error

// WithFrom sets the accessor read from the host object. Defaults to the
// output name.
func WithFrom(accessor string) FieldOption {
	return func(m *Mapping) error {
		if accessor == "" {
			return configError("field %q: empty source accessor", m.name)
		}
		m.from = accessor
		return nil
	}
}

// WithDefault sets the fallback used when the host value is absent or nil.
// A func() any or Producer is invoked on every extraction; anything else is
// used as a literal. A nil literal clears the default.
func WithDefault(v any) FieldOption {
	return func(m *Mapping) error {
		switch fn := v.(type) {
		case Producer:
			return WithDefaultFunc(fn)(m)
		case func() any:
			return WithDefaultFunc(fn)(m)
		case nil:
			m.def, m.defFn, m.hasDef = nil, nil, false
		default:
			m.def, m.defFn, m.hasDef = v, nil, true
		}
		return nil
	}
}

// WithDefaultFunc sets a producer-style default.
func WithDefaultFunc(fn func() any) FieldOption {
	return func(m *Mapping) error {
		if fn == nil {
			return configError("field %q: nil default producer", m.name)
		}
		m.def, m.defFn, m.hasDef = nil, fn, true
		return nil
	}
}

// WithNullable controls whether a nil result is allowed. Defaults to true.
func WithNullable(nullable bool) FieldOption {
	return func(m *Mapping) error {
		m.nullable = nullable
		return nil
	}
}

// WithTransform installs a custom value transform.
func WithTransform(fn func(any) any) FieldOption {
	return func(m *Mapping) error {
		if fn == nil {
			return configError("field %q: nil value transform", m.name)
		}
		m.transform = fn
		return nil
	}
}

// NewMapping builds a Mapping for the given output name.
func NewMapping(name string, opts ...FieldOption) (*Mapping, error) {
	if name == "" {
		return nil, configError("field mapping requires an output name")
	}
	m := &Mapping{name: name, canonical: CanonicalName(name), from: name, nullable: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// CanonicalName folds a field name for internal lookup.
func CanonicalName(name string) string { return strings.ToLower(name) }

func (m *Mapping) Name() string       { return m.name }
func (m *Mapping) Canonical() string  { return m.canonical }
func (m *Mapping) From() string       { return m.from }
func (m *Mapping) Nullable() bool     { return m.nullable }
func (m *Mapping) HasDefault() bool   { return m.hasDef }
func (m *Mapping) HasTransform() bool { return m.transform != nil }

// DefaultValue returns the raw default, invoking the producer if there is one.
func (m *Mapping) DefaultValue() (any, bool) {
	if !m.hasDef {
		return nil, false
	}
	if m.defFn != nil {
		return m.defFn(), true
	}
	return m.def, true
}

// Extract reads the field from host and coerces it for version, returning the
// output name and the document-safe value.
func (m *Mapping) Extract(r *Registry, host any, version string) (string, any, error) {
	if r == nil {
		r = Default()
	}
	return m.extract(r, host, canonicalVersion(version), 0)
}

func (m *Mapping) extract(r *Registry, host any, version string, depth int) (string, any, error) {
	raw, ok := r.readField(host, m.from)
	if !ok || isNil(raw) {
		raw = nil
		if d, has := m.DefaultValue(); has {
			raw = d
		}
		if isNil(raw) && !m.nullable {
			return m.name, nil, m.nullError(host, version, "null value given")
		}
	}

	if m.transform == nil {
		out, err := r.resolve(raw, version, true, depth)
		return m.name, out, err
	}

	partial, err := r.resolve(raw, version, false, depth)
	if err != nil {
		return m.name, nil, err
	}
	out := m.transform(partial)
	if isNil(out) && !m.nullable {
		return m.name, nil, m.nullError(host, version, "value transform produced null")
	}
	return m.name, out, nil
}

func (m *Mapping) nullError(host any, version, msg string) *Error {
	return &Error{
		Code:    CodeValidation,
		Type:    KeyOf(host),
		Version: version,
		Field:   m.name,
		Object:  describe(host),
		Message: msg + " for non-nullable field",
	}
}
