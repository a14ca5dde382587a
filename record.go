package jsoning

// Record is a map-backed host object. Its Type is the declared identity it is
// generated under, so one Go type can carry many schemas.
type Record struct {
	Type   string
	Fields map[string]any
}

// NewRecord returns a Record of the given type holding fields.
func NewRecord(typ string, fields map[string]any) *Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Record{Type: typ, Fields: fields}
}

func (r *Record) JSONType() string { return r.Type }

// ReadField looks the accessor up exactly, then case-insensitively.
func (r *Record) ReadField(name string) (any, bool) {
	if v, ok := r.Fields[name]; ok {
		return v, true
	}
	want := foldAccessor(name)
	for k, v := range r.Fields {
		if foldAccessor(k) == want {
			return v, true
		}
	}
	return nil, false
}

// Set stores a field value and returns r for chaining.
func (r *Record) Set(name string, v any) *Record {
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	r.Fields[name] = v
	return r
}
