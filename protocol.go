package jsoning

import (
	"strings"
	"sync"
)

// Protocol holds every declared version of one host type.
//
// Declarations lock the protocol exclusively; generation only takes short
// read locks to snapshot mapping lists, so concurrent generation for the same
// type never blocks on itself.
type Protocol struct {
	key      TypeKey
	registry *Registry

	mu       sync.RWMutex
	versions map[string]*Version
	order    []string
}

func newProtocol(r *Registry, key TypeKey) *Protocol {
	p := &Protocol{key: key, registry: r, versions: make(map[string]*Version)}
	p.versions[DefaultVersion] = newVersion(p, DefaultVersion)
	p.order = []string{DefaultVersion}
	return p
}

// Key returns the type identity of the protocol.
func (p *Protocol) Key() TypeKey { return p.key }

// Version resolves a declared version.
func (p *Protocol) Version(name string) (*Version, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.versions[canonicalVersion(name)]
	return v, ok
}

// RequireVersion resolves a declared version or fails with
// ErrVersionNotFound. It never falls back to the default version.
func (p *Protocol) RequireVersion(name string) (*Version, error) {
	name = canonicalVersion(name)
	if v, ok := p.Version(name); ok {
		return v, nil
	}
	return nil, versionNotFound(p.key, name)
}

// EnsureVersion returns the named version, declaring an empty one if needed.
// Used by declarations only.
func (p *Protocol) EnsureVersion(name string) *Version {
	name = canonicalVersion(name)
	p.mu.Lock()
	v, ok := p.versions[name]
	if !ok {
		v = newVersion(p, name)
		p.versions[name] = v
		p.order = append(p.order, name)
	}
	p.mu.Unlock()
	if !ok {
		p.registry.log.Debug().Str("type", string(p.key)).Str("version", name).Msg("version declared")
	}
	return v
}

// Versions lists version names in declaration order, default first.
func (p *Protocol) Versions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// resolveVersion applies the registry's fallback policy.
func (p *Protocol) resolveVersion(name string) (*Version, error) {
	v, err := p.RequireVersion(name)
	if err == nil || !p.registry.opts.versionFallback {
		return v, err
	}
	return p.RequireVersion(DefaultVersion)
}

// Generate encodes host into text for the requested version.
func (p *Protocol) Generate(host any, opts ...GenerateOpt) (string, error) {
	opt := lastOpt(opts)
	doc, err := p.GenerateDocument(host, opt)
	if err != nil {
		return "", err
	}
	return p.registry.encode(doc, opt.Pretty)
}

// GenerateDocument extracts host into a Document without encoding it.
func (p *Protocol) GenerateDocument(host any, opts ...GenerateOpt) (*Document, error) {
	opt := lastOpt(opts)
	return p.extract(host, canonicalVersion(opt.Version), 0)
}

func (p *Protocol) extract(host any, version string, depth int) (*Document, error) {
	v, err := p.resolveVersion(version)
	if err != nil {
		return nil, err
	}
	return v.extractAll(host, version, depth)
}

// Reconstruct builds the canonical structure for a decoded document. Each
// declared field is looked up by its folded output name; absent or null
// values take the field default. The result is keyed by folded names and is
// shallow: custom transforms and nested protocols are not inverted.
func (p *Protocol) Reconstruct(decoded map[string]any, version string) (*Document, error) {
	version = canonicalVersion(version)
	v, err := p.resolveVersion(version)
	if err != nil {
		return nil, err
	}

	folded := foldKeys(decoded)
	out := NewDocument()
	for _, m := range v.Mappings() {
		val, ok := folded[m.canonical]
		if !ok || val == nil {
			val = nil
			if d, has := m.DefaultValue(); has {
				if val, err = p.registry.resolve(d, version, true, 0); err != nil {
					return nil, err
				}
			}
		}
		if isNil(val) && !m.nullable {
			return nil, &Error{
				Code:    CodeValidation,
				Type:    p.key,
				Version: version,
				Field:   m.name,
				Message: "constructing document failed: null given for non-nullable field",
			}
		}
		out.Set(m.canonical, val)
	}
	return out, nil
}

// foldKeys lower-cases top-level keys. An already lower-case key wins over a
// differently cased duplicate.
func foldKeys(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if lk := strings.ToLower(k); lk != k {
			out[lk] = v
		}
	}
	for k, v := range in {
		if strings.ToLower(k) == k {
			out[k] = v
		}
	}
	return out
}
