package jsoning

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"
)

// Driver is the text boundary of the engine: it encodes resolved value trees
// and decodes text into plain value trees. The default implementation is
// backed by goccy/go-json and may be replaced with WithDriver.
type Driver interface {
	Encode(v any, pretty bool) ([]byte, error)
	Decode(data []byte) (any, error)
	Name() string
}

// JSONDriver returns the go-json backed driver.
func JSONDriver() Driver { return goJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) Name() string { return "go-json" }

func (goJSONDriver) Encode(v any, pretty bool) ([]byte, error) {
	if pretty {
		return gojson.MarshalIndent(v, "", "  ")
	}
	return gojson.Marshal(v)
}

// Decode parses one JSON value. Integral numbers become int64, the rest
// float64.
func (goJSONDriver) Decode(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return nil, errTrailingData
		}
		return nil, err
	}
	return normalizeNumbers(v), nil
}

var errTrailingData = &Error{Code: CodeDriver, Message: "trailing data after JSON value"}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case gojson.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
