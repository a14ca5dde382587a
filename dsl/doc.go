// Package dsl provides the declaration syntax for jsoning protocols.
//
// Overview
//   - For[T](reg, fn): declare fields of T's default version; Version(name, fn) scopes a block to a named version.
//   - Key(name, opts...): map one output key, with From/Default/DefaultFunc/Null/Value options.
//   - KeyWith(name, Options{...}): the same, driven by a loosely typed option map (used by schema files).
//
// Declarations accumulate errors instead of stopping; For returns them joined,
// so one pass reports every malformed key.
//
// Example
//
//	err := dsl.For[*Book](reg, func(s *dsl.Schema) {
//	    s.Version("v1", func(s *dsl.Schema) { s.Key("name") })
//	    s.Version("v2", func(s *dsl.Schema) { s.Key("book_name", dsl.From("name")) })
//	})
package dsl
