// Package yaml provides a jsoning.Driver that renders documents as YAML,
// keeping Document key order.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"

	yv3 "gopkg.in/yaml.v3"

	"github.com/reoring/jsoning"
)

// Driver returns a jsoning.Driver backed by gopkg.in/yaml.v3.
func Driver() jsoning.Driver { return driverYAML{} }

type driverYAML struct{}

func (driverYAML) Name() string { return "yaml.v3" }

// Encode renders v. pretty widens indentation from 2 to 4 spaces.
func (driverYAML) Encode(v any, pretty bool) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yv3.NewEncoder(&buf)
	if pretty {
		enc.SetIndent(4)
	} else {
		enc.SetIndent(2)
	}
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a single YAML document into map[string]any / []any trees.
// Integers become int64.
func (driverYAML) Decode(data []byte) (any, error) {
	dec := yv3.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("yaml: more than one document")
		}
		return nil, err
	}
	return normalize(v)
}

func toNode(v any) (*yv3.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yv3.Node{Kind: yv3.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *jsoning.Document:
		if t == nil {
			return toNode(nil)
		}
		n := &yv3.Node{Kind: yv3.MappingNode}
		for p := t.Oldest(); p != nil; p = p.Next() {
			vn, err := toNode(p.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, keyNode(p.Key), vn)
		}
		return n, nil
	case []any:
		n := &yv3.Node{Kind: yv3.SequenceNode}
		for _, e := range t {
			en, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		return mapNode(rv)
	}
	n := &yv3.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("yaml: encode %T: %w", v, err)
	}
	return n, nil
}

// mapNode renders plain maps with keys sorted by their string form.
func mapNode(rv reflect.Value) (*yv3.Node, error) {
	if rv.IsNil() {
		return toNode(nil)
	}
	type entry struct {
		key string
		val any
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: fmt.Sprint(iter.Key().Interface()), val: iter.Value().Interface()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	n := &yv3.Node{Kind: yv3.MappingNode}
	for _, e := range entries {
		vn, err := toNode(e.val)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, keyNode(e.key), vn)
	}
	return n, nil
}

func keyNode(k string) *yv3.Node {
	return &yv3.Node{Kind: yv3.ScalarNode, Tag: "!!str", Value: k}
}

// normalize converts map[any]any keys to strings and int to int64, matching
// the JSON driver's output shapes.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = ne
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = ne
		}
		return out, nil
	case []any:
		for i, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = ne
		}
		return t, nil
	case int:
		return int64(t), nil
	default:
		return v, nil
	}
}
