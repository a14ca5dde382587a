package jsoning

import (
	"reflect"
)

// valueKind is the discriminant the resolver switches on.
type valueKind uint8

const (
	kindNull valueKind = iota
	kindScalar
	kindSequence
	kindMap
	kindDocument
	kindObject
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// classify strips pointers and interfaces from v and reports its kind. Values
// that choose their own identity or read their own fields are always objects.
func classify(v any) (valueKind, reflect.Value) {
	if v == nil {
		return kindNull, reflect.Value{}
	}
	switch v.(type) {
	case *Document:
		if isNil(v) {
			return kindNull, reflect.Value{}
		}
		return kindDocument, reflect.ValueOf(v)
	case Typer, FieldReader:
		if isNil(v) {
			return kindNull, reflect.Value{}
		}
		return kindObject, reflect.ValueOf(v)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindScalar, rv
	case reflect.Slice:
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		return kindSequence, rv
	case reflect.Array:
		return kindSequence, rv
	case reflect.Map:
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		return kindMap, rv
	default:
		return kindObject, rv
	}
}

// isNil reports whether v is nil or a typed nil of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// resolve produces the document-safe form of v. Converters run first when
// extensions are enabled and their result is final. Opaque objects need a
// protocol when extensions are enabled and pass through untouched otherwise.
func (r *Registry) resolve(v any, version string, extensions bool, depth int) (any, error) {
	if v == nil {
		return nil, nil
	}
	if extensions {
		if fn, arg, ok := r.exts.match(v); ok {
			return fn(arg), nil
		}
	}

	kind, rv := classify(v)
	switch kind {
	case kindNull:
		return nil, nil
	case kindScalar:
		return rv.Interface(), nil
	case kindDocument:
		return r.resolveDocument(v.(*Document), version, extensions, depth)
	case kindSequence:
		out := make([]any, rv.Len())
		for i := range out {
			e, err := r.resolve(rv.Index(i).Interface(), version, extensions, depth)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case kindMap:
		return r.resolveMap(rv, version, extensions, depth)
	}

	key := KeyOf(v)
	p, ok := r.Lookup(key)
	if !ok {
		if !extensions {
			return v, nil
		}
		return nil, protocolNotFound(key)
	}
	if limit := r.opts.maxDepth; limit > 0 && depth >= limit {
		return nil, &Error{
			Code:    CodeDepthExceeded,
			Type:    key,
			Version: version,
			Object:  describe(v),
			Message: "nested object depth limit reached",
		}
	}
	return p.extract(v, version, depth+1)
}

func (r *Registry) resolveDocument(d *Document, version string, extensions bool, depth int) (*Document, error) {
	out := NewDocument()
	for pair := d.Oldest(); pair != nil; pair = pair.Next() {
		e, err := r.resolve(pair.Value, version, extensions, depth)
		if err != nil {
			return nil, err
		}
		out.Set(pair.Key, e)
	}
	return out, nil
}

// resolveMap keeps the key set and resolves values. map[string]any is
// rebuilt directly; other maps become map[K]any.
func (r *Registry) resolveMap(rv reflect.Value, version string, extensions bool, depth int) (any, error) {
	if m, ok := rv.Interface().(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			ev, err := r.resolve(e, version, extensions, depth)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	}

	out := reflect.MakeMapWithSize(reflect.MapOf(rv.Type().Key(), anyType), rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ev, err := r.resolve(iter.Value().Interface(), version, extensions, depth)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			out.SetMapIndex(iter.Key(), reflect.Zero(anyType))
			continue
		}
		out.SetMapIndex(iter.Key(), reflect.ValueOf(ev))
	}
	return out.Interface(), nil
}
