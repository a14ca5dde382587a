package schemafile

import (
	"time"

	"github.com/reoring/jsoning/codec"
)

// Entity is a map-backed host object whose fields are typed by the schema's
// "as" hints: nested maps become entities, strings become instants or dates.
type Entity struct {
	typ    string
	fields map[string]any
	schema *Schema
}

func (e *Entity) JSONType() string { return e.typ }

// Fields returns the raw field map.
func (e *Entity) Fields() map[string]any { return e.fields }

func (e *Entity) ReadField(name string) (any, bool) {
	raw, ok := e.fields[name]
	if !ok {
		want := fold(name)
		for k, v := range e.fields {
			if fold(k) == want {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok {
		return nil, false
	}
	return e.schema.wrap(e.schema.hints[e.typ][fold(name)], raw), true
}

// wrap converts raw according to as. Values that do not fit are returned
// unchanged.
func (s *Schema) wrap(as string, raw any) any {
	if as == "" || raw == nil {
		return raw
	}
	switch t := raw.(type) {
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = s.wrap(as, v)
		}
		return out
	case string:
		switch as {
		case AsTime:
			if tm, err := codec.ParseTime(t); err == nil {
				return tm
			}
		case AsDate:
			if d, err := codec.ParseDate(t); err == nil {
				return d
			}
			if tm, err := codec.ParseTime(t); err == nil {
				return codec.DateOf(tm)
			}
		}
	case time.Time:
		if as == AsDate {
			return codec.DateOf(t)
		}
	case map[string]any:
		if as != AsTime && as != AsDate {
			return &Entity{typ: as, fields: t, schema: s}
		}
	}
	return raw
}
