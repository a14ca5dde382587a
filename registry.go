package jsoning

import (
	"errors"
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps type identities to protocols and owns the extension table
// and text driver used by them. It is the explicit context object every
// declaration and generation goes through; Default provides a process-wide
// instance.
//
// Protocol creation is guarded by a short mutex; lookups go through a
// sync.Map and never block.
type Registry struct {
	opts options
	log  zerolog.Logger

	mu        sync.Mutex
	protocols sync.Map // key: TypeKey, val: *Protocol

	exts *Extensions
}

// New builds a Registry and runs its setup hooks.
func New(opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	r := &Registry{opts: o, log: o.logger, exts: newExtensions(o.logger)}
	var errs []error
	for _, fn := range o.setup {
		if err := fn(r.exts); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Registry {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// ProtocolFor returns the protocol for key, creating it on first use. This is
// the declaration path.
func (r *Registry) ProtocolFor(key TypeKey) *Protocol {
	if p, ok := r.protocols.Load(key); ok {
		return p.(*Protocol)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if p, ok := r.protocols.Load(key); ok {
		return p.(*Protocol)
	}
	p := newProtocol(r, key)
	r.protocols.Store(key, p)
	r.log.Debug().Str("type", string(key)).Msg("protocol created")
	return p
}

// Lookup returns the protocol for key if one was declared.
func (r *Registry) Lookup(key TypeKey) (*Protocol, bool) {
	p, ok := r.protocols.Load(key)
	if !ok {
		return nil, false
	}
	return p.(*Protocol), true
}

// RequireProtocol returns the protocol for key or fails with
// ErrProtocolNotFound. Every generation and reconstruction entry point goes
// through it.
func (r *Registry) RequireProtocol(key TypeKey) (*Protocol, error) {
	if p, ok := r.Lookup(key); ok {
		return p, nil
	}
	return nil, protocolNotFound(key)
}

// Protocols lists declared type identities, sorted.
func (r *Registry) Protocols() []TypeKey {
	var keys []TypeKey
	r.protocols.Range(func(k, _ any) bool {
		keys = append(keys, k.(TypeKey))
		return true
	})
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Extensions returns the type extension table of the registry.
func (r *Registry) Extensions() *Extensions { return r.exts }

// Driver returns the text driver of the registry.
func (r *Registry) Driver() Driver { return r.opts.driver }

// Logger returns the registry logger.
func (r *Registry) Logger() zerolog.Logger { return r.log }

// Reset clears all protocols and type extensions. Calling it while
// generation is in flight is undefined.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.protocols.Clear()
	r.mu.Unlock()
	r.exts.Reset()
	r.log.Debug().Msg("registry reset")
}

// Generate encodes obj as text using the protocol of its runtime type.
func (r *Registry) Generate(obj any, opts ...GenerateOpt) (string, error) {
	p, err := r.RequireProtocol(KeyOf(obj))
	if err != nil {
		return "", err
	}
	return p.Generate(obj, opts...)
}

// GenerateDocument extracts obj into a Document using the protocol of its
// runtime type.
func (r *Registry) GenerateDocument(obj any, opts ...GenerateOpt) (*Document, error) {
	p, err := r.RequireProtocol(KeyOf(obj))
	if err != nil {
		return nil, err
	}
	return p.GenerateDocument(obj, opts...)
}

// Render returns a *Document when Hash is set and text otherwise.
func (r *Registry) Render(obj any, opts ...GenerateOpt) (any, error) {
	if lastOpt(opts).Hash {
		return r.GenerateDocument(obj, opts...)
	}
	return r.Generate(obj, opts...)
}

// Parse decodes data with the registry driver and reconstructs it for the
// protocol of key.
func (r *Registry) Parse(data []byte, key TypeKey, version string) (*Document, error) {
	p, err := r.RequireProtocol(key)
	if err != nil {
		return nil, err
	}
	v, err := r.opts.driver.Decode(data)
	if err != nil {
		return nil, driverError(r.opts.driver, "decode", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &Error{Code: CodeDriver, Type: key, Message: "decoded document is not an object"}
	}
	return p.Reconstruct(m, version)
}

// Reconstruct is Parse for an already decoded structure.
func (r *Registry) Reconstruct(decoded map[string]any, key TypeKey, version string) (*Document, error) {
	p, err := r.RequireProtocol(key)
	if err != nil {
		return nil, err
	}
	return p.Reconstruct(decoded, version)
}

// Resolve runs the recursive resolver over v. With extensions disabled,
// converters are skipped and objects without a protocol are returned as-is.
func (r *Registry) Resolve(v any, version string, extensions bool) (any, error) {
	return r.resolve(v, canonicalVersion(version), extensions, 0)
}

// Encode encodes a resolved tree with the registry driver.
func (r *Registry) Encode(v any, pretty bool) (string, error) {
	return r.encode(v, pretty)
}

func (r *Registry) encode(v any, pretty bool) (string, error) {
	b, err := r.opts.driver.Encode(v, pretty)
	if err != nil {
		return "", driverError(r.opts.driver, "encode", err)
	}
	return string(b), nil
}

// readField reads accessor from host through FieldReader or, when enabled,
// through struct reflection.
func (r *Registry) readField(host any, accessor string) (any, bool) {
	if isNil(host) {
		return nil, false
	}
	if fr, ok := host.(FieldReader); ok {
		return fr.ReadField(accessor)
	}
	if fr, ok := addressableReader(host); ok {
		return fr.ReadField(accessor)
	}
	if r.opts.reflectAccess {
		return readStructField(reflect.ValueOf(host), accessor)
	}
	return nil, false
}
