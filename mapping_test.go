package jsoning_test

import (
	"testing"
	"time"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/dsl"
)

func TestNewMapping_Defaults(t *testing.T) {
	m, err := jsoning.NewMapping("Name")
	if err != nil {
		t.Fatalf("new mapping err: %v", err)
	}
	if m.Name() != "Name" || m.Canonical() != "name" || m.From() != "Name" {
		t.Fatalf("unexpected mapping: name=%s canonical=%s from=%s", m.Name(), m.Canonical(), m.From())
	}
	if !m.Nullable() || m.HasDefault() || m.HasTransform() {
		t.Fatalf("unexpected flags")
	}
}

func TestNewMapping_InvalidOptions(t *testing.T) {
	cases := map[string][]jsoning.FieldOption{
		"empty from":    {jsoning.WithFrom("")},
		"nil producer":  {jsoning.WithDefaultFunc(nil)},
		"nil transform": {jsoning.WithTransform(nil)},
	}
	for name, opts := range cases {
		if _, err := jsoning.NewMapping("x", opts...); err == nil {
			t.Fatalf("%s: expected error", name)
		} else {
			wantCode(t, err, jsoning.CodeConfiguration)
		}
	}
	_, err := jsoning.NewMapping("")
	wantCode(t, err, jsoning.CodeConfiguration)
}

func TestMapping_DefaultLiteralAndProducer(t *testing.T) {
	lit, _ := jsoning.NewMapping("gender", jsoning.WithDefault("male"))
	if v, ok := lit.DefaultValue(); !ok || v != "male" {
		t.Fatalf("literal default: %v %v", v, ok)
	}
	n := 0
	prod, _ := jsoning.NewMapping("n", jsoning.WithDefault(jsoning.Producer(func() any { n++; return n })))
	a, _ := prod.DefaultValue()
	b, _ := prod.DefaultValue()
	if a != 1 || b != 2 {
		t.Fatalf("producer should be invoked per call: %v %v", a, b)
	}
	cleared, _ := jsoning.NewMapping("x", jsoning.WithDefault("y"), jsoning.WithDefault(nil))
	if cleared.HasDefault() {
		t.Fatalf("nil default should clear")
	}
}

func TestMapping_ExtractWithRecordHost(t *testing.T) {
	reg := jsoning.MustNew()
	m, _ := jsoning.NewMapping("years_old", jsoning.WithFrom("age"))
	name, v, err := m.Extract(reg, jsoning.NewRecord("person", map[string]any{"age": 21}), "")
	if err != nil {
		t.Fatalf("extract err: %v", err)
	}
	if name != "years_old" || v != 21 {
		t.Fatalf("unexpected extract: %s=%v", name, v)
	}
}

func TestMapping_FalseAndZeroAreNotNull(t *testing.T) {
	reg := jsoning.MustNew()
	host := jsoning.NewRecord("flags", map[string]any{"on": false, "n": 0, "s": ""})
	for _, field := range []string{"on", "n", "s"} {
		m, _ := jsoning.NewMapping(field, jsoning.WithDefault("fallback"), jsoning.WithNullable(false))
		_, v, err := m.Extract(reg, host, "")
		if err != nil {
			t.Fatalf("%s extract err: %v", field, err)
		}
		if v == "fallback" {
			t.Fatalf("%s: zero value must not take the default", field)
		}
	}
}

func TestTransform_ReceivesExtensionFreeValue(t *testing.T) {
	reg := jsoning.MustNew(jsoning.WithReflectAccess(true))
	if err := jsoning.Extend(reg.Extensions(), func(t time.Time) any { return "converted" }); err != nil {
		t.Fatalf("extend err: %v", err)
	}
	at := time.Date(2015, 11, 1, 0, 0, 0, 0, time.UTC)
	var seen any
	err := dsl.ForKey(reg, "event", func(s *dsl.Schema) {
		s.Key("year", dsl.From("at"), dsl.Value(func(v any) any {
			seen = v
			return v.(time.Time).Year()
		}))
		s.Key("at")
	})
	if err != nil {
		t.Fatalf("declare err: %v", err)
	}
	doc, err := reg.GenerateDocument(jsoning.NewRecord("event", map[string]any{"at": at}))
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if _, ok := seen.(time.Time); !ok {
		t.Fatalf("transform should see the raw time.Time, got %T", seen)
	}
	if y, _ := doc.Get("year"); y != 2015 {
		t.Fatalf("year: %v", y)
	}
	if a, _ := doc.Get("at"); a != "converted" {
		t.Fatalf("at should use the extension, got %v", a)
	}
}

func TestTransform_NestedProtocolStillResolves(t *testing.T) {
	reg := newRegistry(t)
	var seen any
	err := dsl.For[User](reg, func(s *dsl.Schema) {
		s.Key("books", dsl.Value(func(v any) any {
			seen = v
			return len(v.([]any))
		}))
	})
	if err != nil {
		t.Fatalf("declare err: %v", err)
	}
	doc, err := reg.GenerateDocument(newUser())
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if n, _ := doc.Get("books"); n != 2 {
		t.Fatalf("books count: %v", n)
	}
	first := seen.([]any)[0]
	if d, ok := first.(*jsoning.Document); !ok {
		t.Fatalf("nested book should be extracted, got %T", first)
	} else if v, _ := d.Get("name"); v != "Quiet: The Power of Introvert" {
		t.Fatalf("nested name: %v", v)
	}
}

func TestTransform_UnknownNestedPassesThrough(t *testing.T) {
	reg := jsoning.MustNew()
	a := &Achievement{AchievementName: "gold"}
	err := dsl.ForKey(reg, "row", func(s *dsl.Schema) {
		s.Key("badge", dsl.Value(func(v any) any { return v.(*Achievement).AchievementName }))
	})
	if err != nil {
		t.Fatalf("declare err: %v", err)
	}
	doc, err := reg.GenerateDocument(jsoning.NewRecord("row", map[string]any{"badge": a}))
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if v, _ := doc.Get("badge"); v != "gold" {
		t.Fatalf("badge: %v", v)
	}
}

func TestTransform_NullResultIsValidated(t *testing.T) {
	reg := jsoning.MustNew()
	err := dsl.ForKey(reg, "row", func(s *dsl.Schema) {
		s.Key("x", dsl.Null(false), dsl.Value(func(any) any { return nil }))
	})
	if err != nil {
		t.Fatalf("declare err: %v", err)
	}
	_, err = reg.Generate(jsoning.NewRecord("row", map[string]any{"x": 1}))
	e := wantCode(t, err, jsoning.CodeValidation)
	if e.Field != "x" {
		t.Fatalf("field: %q", e.Field)
	}
}

func TestVersion_DuplicateKeyOverwritesInPlace(t *testing.T) {
	reg := jsoning.MustNew()
	err := dsl.ForKey(reg, "row", func(s *dsl.Schema) {
		s.Key("a")
		s.Key("b")
		s.Key("A", dsl.From("c"))
	})
	if err != nil {
		t.Fatalf("declare err: %v", err)
	}
	p, _ := reg.Lookup("row")
	v, _ := p.Version("")
	if v.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", v.Len())
	}
	doc, err := reg.GenerateDocument(jsoning.NewRecord("row", map[string]any{"a": 1, "b": 2, "c": 3}))
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	keys := jsoning.Keys(doc)
	if len(keys) != 2 || keys[0] != "A" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if got, _ := doc.Get("A"); got != 3 {
		t.Fatalf("A: %v", got)
	}
	if m, ok := v.Mapping("a"); !ok || m.From() != "c" {
		t.Fatalf("case-insensitive lookup failed")
	}
}

func TestVersion_AddMappingRejectsNil(t *testing.T) {
	reg := jsoning.MustNew()
	v := reg.ProtocolFor("row").EnsureVersion("v1")
	wantCode(t, v.AddMapping(nil), jsoning.CodeConfiguration)
}

func TestVersionName(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"v1", "v1"},
		{2, "2"},
		{int64(3), "3"},
		{uint8(4), "4"},
		{time.March, "March"},
	}
	for _, tc := range cases {
		got, err := jsoning.VersionName(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("VersionName(%v) = %q, %v", tc.in, got, err)
		}
	}
	for _, bad := range []any{"", 1.5, nil} {
		if _, err := jsoning.VersionName(bad); err == nil {
			t.Fatalf("VersionName(%v) should fail", bad)
		}
	}
}
