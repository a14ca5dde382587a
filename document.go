package jsoning

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is the ordered key/value structure produced by generation and
// reconstruction. Keys iterate (and encode) in field declaration order.
type Document = orderedmap.OrderedMap[string, any]

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return orderedmap.New[string, any]()
}

// Keys returns the keys of d in order.
func Keys(d *Document) []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, d.Len())
	for p := d.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// ToPlain converts a resolved tree into plain map[string]any / []any values,
// dropping key order. Useful for comparisons and for consumers that do not
// care about order.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *Document:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = ToPlain(p.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = ToPlain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToPlain(e)
		}
		return out
	default:
		return v
	}
}
