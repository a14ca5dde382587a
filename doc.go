package jsoning

// Package jsoning provides:
//
// - Declarative, versioned field mappings from host objects to JSON documents (Protocol/Version/Mapping)
// - A recursive resolver that composes nested mapped types, sequences, maps and extension scalars
// - A stable error model via *Error (code, type, version, field)
// - Shallow reconstruction of decoded documents into canonical, case-folded structures
//
// Design policy:
// - A Registry is an explicit context object; Default is a process-wide instance for convenience.
// - Place the declaration DSL under dsl/, temporal extensions under codec/ and the CLI under cmd/jsoning.
// - Text encoding goes through a Driver (go-json by default); the engine never parses text itself.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  reg := jsoning.MustNew(jsoning.WithSetup(codec.RegisterTemporal))
//  err := dsl.For[*User](reg, func(s *dsl.Schema) {
//      s.Key("name", dsl.Null(false))
//      s.Key("years_old", dsl.From("age"))
//  })
//
//  text, err := reg.Generate(user, jsoning.GenerateOpt{Version: "v1", Pretty: true})
//  doc, err := reg.Parse([]byte(text), jsoning.TypeOf[*User](), "v1")
