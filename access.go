package jsoning

import (
	"reflect"
	"strings"
	"sync"
)

// FieldReader is the capability a host object implements to expose its
// fields to mappings. ok=false means the accessor is absent, which is treated
// like a nil value.
type FieldReader interface {
	ReadField(name string) (any, bool)
}

// FieldReaderFunc adapts a function to FieldReader.
type FieldReaderFunc func(name string) (any, bool)

func (f FieldReaderFunc) ReadField(name string) (any, bool) { return f(name) }

var fieldReaderType = reflect.TypeOf((*FieldReader)(nil)).Elem()

// addressableReader handles hosts held by value whose ReadField has a pointer
// receiver. The value is copied so the method can run on *T.
func addressableReader(host any) (FieldReader, bool) {
	rv := reflect.ValueOf(host)
	if rv.Kind() == reflect.Pointer || !reflect.PointerTo(rv.Type()).Implements(fieldReaderType) {
		return nil, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface().(FieldReader), true
}

// ResolveStructKey returns the accessor name of a struct field.
// Priority: jsoning tag > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if jt := sf.Tag.Get("jsoning"); jt != "" {
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

// foldAccessor makes "taken_degree", "takenDegree" and "TakenDegree" equal.
func foldAccessor(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// structIndex maps folded accessor names to field index paths. Tag names win
// over Go field names.
type structIndex map[string][]int

var structIndexCache sync.Map // key: reflect.Type, val: structIndex

func indexOf(t reflect.Type) structIndex {
	if idx, ok := structIndexCache.Load(t); ok {
		return idx.(structIndex)
	}
	idx := structIndex{}
	byName := map[string][]int{}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		if key != sf.Name {
			if _, taken := idx[foldAccessor(key)]; !taken {
				idx[foldAccessor(key)] = sf.Index
			}
		}
		if _, taken := byName[foldAccessor(sf.Name)]; !taken {
			byName[foldAccessor(sf.Name)] = sf.Index
		}
	}
	for k, path := range byName {
		if _, taken := idx[k]; !taken {
			idx[k] = path
		}
	}
	actual, _ := structIndexCache.LoadOrStore(t, idx)
	return actual.(structIndex)
}

// readStructField reads accessor from a struct or pointer to struct. A
// zero-argument, single-result exported method with a matching name is
// preferred over a field, so getters can compute values.
func readStructField(rv reflect.Value, accessor string) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	want := foldAccessor(accessor)
	if v, ok := callGetter(rv, want); ok {
		return v, true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	path, ok := indexOf(rv.Type())[want]
	if !ok {
		return nil, false
	}
	fv, err := rv.FieldByIndexErr(path)
	if err != nil {
		// Nil embedded pointer on the path.
		return nil, true
	}
	return fv.Interface(), true
}

func callGetter(rv reflect.Value, want string) (any, bool) {
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if foldAccessor(m.Name) != want {
			continue
		}
		// Method type includes the receiver.
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			return nil, false
		}
		out := rv.Method(i).Call(nil)
		return out[0].Interface(), true
	}
	return nil, false
}
