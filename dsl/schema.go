package dsl

import (
	"errors"

	"github.com/reoring/jsoning"
)

// Schema is the declaration scope handed to For blocks. It points at one
// version of one protocol.
type Schema struct {
	reg   *jsoning.Registry
	proto *jsoning.Protocol
	cur   *jsoning.Version
	errs  *[]error
}

// For declares fields for T on reg (Default() when nil). Repeated calls for
// the same type add to the existing protocol.
func For[T any](reg *jsoning.Registry, fn func(*Schema)) error {
	return ForKey(reg, jsoning.TypeOf[T](), fn)
}

// MustFor is like For but panics on error.
func MustFor[T any](reg *jsoning.Registry, fn func(*Schema)) {
	if err := For[T](reg, fn); err != nil {
		panic(err)
	}
}

// ForKey declares fields for an explicit type identity, such as the Type of
// a jsoning.Record.
func ForKey(reg *jsoning.Registry, key jsoning.TypeKey, fn func(*Schema)) error {
	if reg == nil {
		reg = jsoning.Default()
	}
	if key == "" {
		return &jsoning.Error{Code: jsoning.CodeConfiguration, Message: "declaration requires a type identity"}
	}
	p := reg.ProtocolFor(key)
	var errs []error
	s := &Schema{reg: reg, proto: p, cur: p.EnsureVersion(jsoning.DefaultVersion), errs: &errs}
	if fn != nil {
		fn(s)
	}
	return errors.Join(errs...)
}

// Key maps one output key in the current version.
func (s *Schema) Key(name string, opts ...jsoning.FieldOption) *Schema {
	m, err := jsoning.NewMapping(name, opts...)
	if err == nil {
		err = s.cur.AddMapping(m)
	}
	s.fail(err, name)
	return s
}

// KeyWith is Key driven by an option map.
func (s *Schema) KeyWith(name string, o Options) *Schema {
	opts, err := o.FieldOptions()
	if err != nil {
		s.fail(err, name)
		return s
	}
	return s.Key(name, opts...)
}

// Version runs fn against the named version, declaring it if needed. Names
// may be strings, integers or fmt.Stringer values.
func (s *Schema) Version(name any, fn func(*Schema)) *Schema {
	vn, err := jsoning.VersionName(name)
	if err != nil {
		s.fail(err, "")
		return s
	}
	inner := &Schema{reg: s.reg, proto: s.proto, cur: s.proto.EnsureVersion(vn), errs: s.errs}
	if fn != nil {
		fn(inner)
	}
	return s
}

// Err returns the declaration errors collected so far.
func (s *Schema) Err() error { return errors.Join(*s.errs...) }

// Protocol returns the protocol being declared.
func (s *Schema) Protocol() *jsoning.Protocol { return s.proto }

// Current returns the version the scope writes to.
func (s *Schema) Current() *jsoning.Version { return s.cur }

// fail records err, filling in type, version and field on *jsoning.Error.
func (s *Schema) fail(err error, field string) {
	if err == nil {
		return
	}
	var e *jsoning.Error
	if errors.As(err, &e) {
		if e.Type == "" {
			e.Type = s.proto.Key()
		}
		if e.Version == "" {
			e.Version = s.cur.Name()
		}
		if e.Field == "" {
			e.Field = field
		}
	}
	*s.errs = append(*s.errs, err)
}
