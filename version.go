package jsoning

import (
	"fmt"
	"strconv"
)

// DefaultVersion is the reserved version every protocol owns. It is used
// whenever no version is requested.
const DefaultVersion = "default"

// Version is one named, ordered set of field mappings of a protocol.
type Version struct {
	name     string
	protocol *Protocol
	order    []string // canonical names, declaration order
	mappings map[string]*Mapping
}

func newVersion(p *Protocol, name string) *Version {
	return &Version{name: name, protocol: p, mappings: make(map[string]*Mapping)}
}

// VersionName canonicalizes a version identifier to its string form so that
// numeric names are safe. Strings, fmt.Stringer values and integers are
// accepted.
func VersionName(v any) (string, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	case int:
		s = strconv.Itoa(t)
	case int8, int16, int32, int64:
		s = fmt.Sprintf("%d", t)
	case uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprintf("%d", t)
	default:
		return "", configError("invalid version name %v (%T)", v, v)
	}
	if s == "" {
		return "", configError("empty version name")
	}
	return s, nil
}

func canonicalVersion(name string) string {
	if name == "" {
		return DefaultVersion
	}
	return name
}

// Name returns the version name.
func (v *Version) Name() string { return v.name }

// Protocol returns the owning protocol.
func (v *Version) Protocol() *Protocol { return v.protocol }

// AddMapping appends m in declaration order. A mapping whose canonical name is
// already declared replaces the previous one in place, keeping its position.
func (v *Version) AddMapping(m *Mapping) error {
	if m == nil || m.name == "" {
		return &Error{Code: CodeConfiguration, Type: v.protocol.key, Version: v.name, Message: "invalid field mapping"}
	}
	p := v.protocol
	p.mu.Lock()
	_, replaced := v.mappings[m.canonical]
	if !replaced {
		v.order = append(v.order, m.canonical)
	}
	v.mappings[m.canonical] = m
	p.mu.Unlock()

	p.registry.log.Debug().
		Str("type", string(p.key)).
		Str("version", v.name).
		Str("field", m.name).
		Str("from", m.from).
		Bool("replaced", replaced).
		Msg("field mapped")
	return nil
}

// Mapping resolves a field by name, case-insensitively.
func (v *Version) Mapping(name string) (*Mapping, bool) {
	v.protocol.mu.RLock()
	defer v.protocol.mu.RUnlock()
	m, ok := v.mappings[CanonicalName(name)]
	return m, ok
}

// Mappings returns a snapshot of the mappings in declaration order.
func (v *Version) Mappings() []*Mapping {
	v.protocol.mu.RLock()
	defer v.protocol.mu.RUnlock()
	out := make([]*Mapping, len(v.order))
	for i, name := range v.order {
		out[i] = v.mappings[name]
	}
	return out
}

// Len returns the number of declared fields.
func (v *Version) Len() int {
	v.protocol.mu.RLock()
	defer v.protocol.mu.RUnlock()
	return len(v.order)
}

// ExtractAll extracts every field of host in declaration order.
func (v *Version) ExtractAll(host any) (*Document, error) {
	return v.extractAll(host, v.name, 0)
}

// extractAll runs the mappings of v; requested is the version name propagated
// to nested objects, which differs from v.name only under version fallback.
func (v *Version) extractAll(host any, requested string, depth int) (*Document, error) {
	r := v.protocol.registry
	doc := NewDocument()
	for _, m := range v.Mappings() {
		name, val, err := m.extract(r, host, requested, depth)
		if err != nil {
			return nil, err
		}
		doc.Set(name, val)
	}
	return doc, nil
}
