package jsoning

import (
	"reflect"
	"sync"
)

// TypeKey is the stable string identity under which a protocol is registered.
type TypeKey string

// Typer lets a value choose its own type identity. Map-backed hosts such as
// Record use it so that one Go type can stand for many declared types.
type Typer interface {
	JSONType() string
}

// KeyOf resolves the identity of v. Typer wins; otherwise the identity is
// derived from the dynamic type with pointers removed.
func KeyOf(v any) TypeKey {
	if v == nil {
		return ""
	}
	if t, ok := v.(Typer); ok && !isNil(v) {
		return TypeKey(t.JSONType())
	}
	return KeyOfType(reflect.TypeOf(v))
}

// KeyOfType derives "<pkgpath>.<Name>" for named types and the type literal
// for unnamed ones. *T and T share a key.
func KeyOfType(t reflect.Type) TypeKey {
	if t == nil {
		return ""
	}
	if k, ok := keyCache.Load(t); ok {
		return k.(TypeKey)
	}
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	var key TypeKey
	switch {
	case base.Name() != "" && base.PkgPath() != "":
		key = TypeKey(base.PkgPath() + "." + base.Name())
	default:
		key = TypeKey(base.String())
	}
	keyCache.Store(t, key)
	return key
}

// TypeOf returns the identity of T.
func TypeOf[T any]() TypeKey {
	return KeyOfType(reflect.TypeOf((*T)(nil)).Elem())
}

// keyCache memoizes derived keys by reflect.Type.
var keyCache sync.Map // key: reflect.Type, val: TypeKey
