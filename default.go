package jsoning

import (
	"reflect"
	"sync/atomic"
)

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(MustNew())
}

// Default returns the process-wide registry used by the package-level helpers.
func Default() *Registry { return defaultRegistry.Load() }

// SetDefault replaces the process-wide registry and returns the previous one.
// A nil r installs a fresh, empty registry.
func SetDefault(r *Registry) *Registry {
	if r == nil {
		r = MustNew()
	}
	return defaultRegistry.Swap(r)
}

// Generate calls Default().Generate.
func Generate(obj any, opts ...GenerateOpt) (string, error) {
	return Default().Generate(obj, opts...)
}

// GenerateDocument calls Default().GenerateDocument.
func GenerateDocument(obj any, opts ...GenerateOpt) (*Document, error) {
	return Default().GenerateDocument(obj, opts...)
}

// Render calls Default().Render.
func Render(obj any, opts ...GenerateOpt) (any, error) {
	return Default().Render(obj, opts...)
}

// Parse calls Default().Parse.
func Parse(data []byte, key TypeKey, version string) (*Document, error) {
	return Default().Parse(data, key, version)
}

// RegisterExtension registers fn for t on the default registry.
func RegisterExtension(t reflect.Type, fn Converter) error {
	return Default().Extensions().Register(t, fn)
}

// Reset clears the default registry.
func Reset() { Default().Reset() }
