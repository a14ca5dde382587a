package jsoning

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Converter turns a scalar of a registered type into a JSON primitive. Its
// result is emitted as-is and never resolved further.
type Converter func(v any) any

// Extensions maps concrete types to converters. It is consulted by the
// resolver before any structural recursion. Safe for concurrent use.
type Extensions struct {
	mu  sync.RWMutex
	m   map[reflect.Type]Converter
	log zerolog.Logger
}

// NewExtensions returns an empty, standalone extension table.
func NewExtensions() *Extensions {
	return newExtensions(zerolog.Nop())
}

func newExtensions(log zerolog.Logger) *Extensions {
	return &Extensions{m: make(map[reflect.Type]Converter), log: log}
}

// Register associates t with fn. A later registration for the same type wins.
func (e *Extensions) Register(t reflect.Type, fn Converter) error {
	if t == nil {
		return configError("type extension requires a type")
	}
	if fn == nil {
		return &Error{Code: CodeConfiguration, Type: KeyOfType(t), Message: "type extension requires a conversion function"}
	}
	e.mu.Lock()
	_, replaced := e.m[t]
	e.m[t] = fn
	e.mu.Unlock()
	e.log.Debug().Str("type", t.String()).Bool("replaced", replaced).Msg("type extension registered")
	return nil
}

// Lookup returns the converter registered for exactly t.
func (e *Extensions) Lookup(t reflect.Type) (Converter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.m[t]
	return fn, ok
}

// Len returns the number of registered types.
func (e *Extensions) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.m)
}

// Reset clears every registration.
func (e *Extensions) Reset() {
	e.mu.Lock()
	e.m = make(map[reflect.Type]Converter)
	e.mu.Unlock()
}

// match finds a converter for v, trying its dynamic type first and then each
// pointer-stripped type. The returned value is the one the converter expects.
func (e *Extensions) match(v any) (Converter, any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.m) == 0 {
		return nil, nil, false
	}
	if fn, ok := e.m[reflect.TypeOf(v)]; ok {
		return fn, v, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil, false
		}
		rv = rv.Elem()
		if fn, ok := e.m[rv.Type()]; ok {
			return fn, rv.Interface(), true
		}
	}
	return nil, nil, false
}

// Extend registers a typed converter for T on e.
func Extend[T any](e *Extensions, fn func(T) any) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if e == nil {
		return configError("type extension for %s requires an extension table", t)
	}
	if fn == nil {
		return e.Register(t, nil)
	}
	return e.Register(t, func(v any) any { return fn(v.(T)) })
}
