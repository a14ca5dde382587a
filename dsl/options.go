package dsl

import (
	"fmt"
	"sort"

	"github.com/reoring/jsoning"
)

// Field options, re-exported for declarations.
var (
	From        = jsoning.WithFrom
	Default     = jsoning.WithDefault
	DefaultFunc = jsoning.WithDefaultFunc
	Null        = jsoning.WithNullable
	Value       = jsoning.WithTransform
)

// Options is the loosely typed form of field options. Recognized keys are
// "from", "default", "null" and "value".
type Options map[string]any

// FieldOptions converts o into field options. Keys are processed in sorted
// order so error reporting is stable.
func (o Options) FieldOptions() ([]jsoning.FieldOption, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]jsoning.FieldOption, 0, len(keys))
	for _, k := range keys {
		v := o[k]
		switch k {
		case "from":
			s, ok := v.(string)
			if !ok {
				return nil, optionError(k, "must be a string, got %T", v)
			}
			out = append(out, From(s))
		case "default":
			out = append(out, Default(v))
		case "null":
			b, ok := v.(bool)
			if !ok {
				return nil, optionError(k, "must be a bool, got %T", v)
			}
			out = append(out, Null(b))
		case "value":
			switch fn := v.(type) {
			case func(any) any:
				out = append(out, Value(fn))
			case jsoning.Transform:
				out = append(out, Value(fn))
			default:
				return nil, optionError(k, "must be a function, got %T", v)
			}
		default:
			return nil, &jsoning.Error{Code: jsoning.CodeConfiguration, Message: fmt.Sprintf("undefined option %q", k)}
		}
	}
	return out, nil
}

func optionError(key, format string, args ...any) error {
	return &jsoning.Error{
		Code:    jsoning.CodeConfiguration,
		Message: fmt.Sprintf("option %q ", key) + fmt.Sprintf(format, args...),
	}
}
