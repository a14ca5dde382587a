package jsoning_test

import (
	"errors"
	"testing"
	"time"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/codec"
	"github.com/reoring/jsoning/dsl"
)

const userJSON = `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[{"name":"Quiet: The Power of Introvert"},{"name":"Harry Potter and the Half-Blood Prince"}],"degree_detail":null,"registered_at":"2015-11-01T14:41:09+0000"}`

func TestGenerate_ExactText(t *testing.T) {
	reg := newRegistry(t)
	got, err := reg.Generate(newUser())
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if got != userJSON {
		t.Fatalf("unexpected json:\n got %s\nwant %s", got, userJSON)
	}
}

func TestGenerate_DocumentKeepsDeclarationOrder(t *testing.T) {
	reg := newRegistry(t)
	doc, err := reg.GenerateDocument(newUser())
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	want := []string{"name", "years_old", "gender", "books", "degree_detail", "registered_at"}
	got := jsoning.Keys(doc)
	if len(got) != len(want) {
		t.Fatalf("keys: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys: got %v want %v", got, want)
		}
	}
	if v, _ := doc.Get("degree_detail"); v != nil {
		t.Fatalf("degree_detail should be null, got %v", v)
	}
}

func TestGenerate_NestedProtocol(t *testing.T) {
	reg := newRegistry(t)
	u := newUser()
	u.TakenDegree = newDegree()

	want := `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[{"name":"Quiet: The Power of Introvert"},{"name":"Harry Potter and the Half-Blood Prince"}],"degree_detail":{"faculty":"School of IT","degree":"B.Sc. (Hons) Computer Science"},"registered_at":"2015-11-01T14:41:09+0000"}`
	got, err := reg.Generate(u)
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", got, want)
	}

	doc, err := reg.Parse([]byte(got), jsoning.TypeOf[User](), "")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if canon(t, doc) != canon(t, want) {
		t.Fatalf("parse mismatch: %s", canon(t, doc))
	}
}

func TestGenerate_Temporal(t *testing.T) {
	cases := []struct {
		name string
		at   any
		want string
	}{
		{"utc instant", time.Date(2015, 11, 1, 14, 41, 9, 0, time.UTC), "2015-11-01T14:41:09+0000"},
		{"zoned instant", time.Date(2015, 11, 1, 21, 41, 9, 0, time.FixedZone("WIB", 7*3600)), "2015-11-01T21:41:09+0700"},
		{"date", codec.Date{Year: 2015, Month: time.November, Day: 1}, "2015-11-01T00:00:00+0000"},
	}
	reg := newRegistry(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUser()
			u.CreatedAt = tc.at
			doc, err := reg.GenerateDocument(u)
			if err != nil {
				t.Fatalf("generate err: %v", err)
			}
			if v, _ := doc.Get("registered_at"); v != tc.want {
				t.Fatalf("registered_at: got %v want %s", v, tc.want)
			}
		})
	}
}

func TestGenerate_Versions(t *testing.T) {
	reg := newRegistry(t)
	declareBookVersions(t, reg)
	book := &Book{Name: "Harry Potter"}

	for version, want := range map[string]string{
		"v1": `{"name":"Harry Potter"}`,
		"v2": `{"book_name":"Harry Potter"}`,
	} {
		got, err := reg.Generate(book, jsoning.GenerateOpt{Version: version})
		if err != nil {
			t.Fatalf("%s generate err: %v", version, err)
		}
		if got != want {
			t.Fatalf("%s: got %s want %s", version, got, want)
		}
		doc, err := reg.Parse([]byte(want), jsoning.TypeOf[Book](), version)
		if err != nil {
			t.Fatalf("%s parse err: %v", version, err)
		}
		hash, err := reg.GenerateDocument(book, jsoning.GenerateOpt{Version: version})
		if err != nil {
			t.Fatalf("%s generate document err: %v", version, err)
		}
		if canon(t, doc) != canon(t, hash) {
			t.Fatalf("%s: parse %s != hash %s", version, canon(t, doc), canon(t, hash))
		}
	}
}

func TestGenerate_UndeclaredVersionFails(t *testing.T) {
	reg := newRegistry(t)
	declareBookVersions(t, reg)

	_, err := reg.Generate(newUser(), jsoning.GenerateOpt{Version: "v1"})
	e := wantCode(t, err, jsoning.CodeVersionNotFound)
	if e.Version != "v1" || e.Type != jsoning.TypeOf[User]() {
		t.Fatalf("unexpected error detail: %+v", e)
	}
	if !errors.Is(err, jsoning.ErrVersionNotFound) {
		t.Fatalf("errors.Is should match sentinel")
	}
}

func TestGenerate_VersionFallbackPropagatesToNested(t *testing.T) {
	reg := newRegistry(t, jsoning.WithVersionFallback(true))
	declareBookVersions(t, reg)

	want := map[string]string{
		"v1": `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[{"name":"Quiet: The Power of Introvert"},{"name":"Harry Potter and the Half-Blood Prince"}],"degree_detail":null,"registered_at":"2015-11-01T14:41:09+0000"}`,
		"v2": `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[{"book_name":"Quiet: The Power of Introvert"},{"book_name":"Harry Potter and the Half-Blood Prince"}],"degree_detail":null,"registered_at":"2015-11-01T14:41:09+0000"}`,
	}
	for version, w := range want {
		got, err := reg.Generate(newUser(), jsoning.GenerateOpt{Version: version})
		if err != nil {
			t.Fatalf("%s generate err: %v", version, err)
		}
		if got != w {
			t.Fatalf("%s:\n got %s\nwant %s", version, got, w)
		}
	}
}

func TestGenerate_UnknownTypeFails(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Generate(&Achievement{})
	wantCode(t, err, jsoning.CodeProtocolNotFound)

	_, err = reg.GenerateDocument(Achievement{})
	wantCode(t, err, jsoning.CodeProtocolNotFound)

	_, err = reg.Parse([]byte(`{}`), jsoning.TypeOf[Achievement](), "")
	wantCode(t, err, jsoning.CodeProtocolNotFound)
}

func TestGenerate_NestedUnknownTypeFails(t *testing.T) {
	reg := newRegistry(t)
	u := newUser()
	u.CreatedAt = &Achievement{}
	_, err := reg.Generate(u)
	e := wantCode(t, err, jsoning.CodeProtocolNotFound)
	if e.Type != jsoning.TypeOf[Achievement]() {
		t.Fatalf("unexpected type: %s", e.Type)
	}
}

func TestGenerate_NonNullableFieldRejectsNull(t *testing.T) {
	reg := newRegistry(t)
	u := newUser()
	u.Name = nil
	_, err := reg.Generate(u)
	e := wantCode(t, err, jsoning.CodeValidation)
	if e.Field != "name" {
		t.Fatalf("expected field name, got %q", e.Field)
	}
	if e.Object == "" {
		t.Fatalf("expected offending object in error")
	}
	if !errors.Is(err, jsoning.ErrValidation) {
		t.Fatalf("errors.Is should match sentinel")
	}
}

func TestGenerate_ProducerDefault(t *testing.T) {
	reg := newRegistry(t)
	u := newUser()
	u.Books = nil
	got, err := reg.Generate(u)
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	want := `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[],"degree_detail":null,"registered_at":"2015-11-01T14:41:09+0000"}`
	if got != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", got, want)
	}
}

func TestGenerate_RedeclarationMergesAndProducesMappedObjects(t *testing.T) {
	reg := newRegistry(t)
	calls := 0
	err := dsl.For[User](reg, func(s *dsl.Schema) {
		s.Key("name", dsl.Null(false))
		s.Key("years_old", dsl.From("age"))
		s.Key("gender", dsl.Default("male"))
		s.Key("books", dsl.DefaultFunc(func() any {
			calls++
			return []*Book{{Name: "Mathematics 6A"}, {Name: "Physics A2"}}
		}))
		s.Key("degree_detail", dsl.From("taken_degree"))
	})
	if err != nil {
		t.Fatalf("redeclare err: %v", err)
	}

	u := newUser()
	u.Books = nil
	want := `{"name":"Adam Baihaqi","years_old":21,"gender":"male","books":[{"name":"Mathematics 6A"},{"name":"Physics A2"}],"degree_detail":null,"registered_at":"2015-11-01T14:41:09+0000"}`
	for i := 0; i < 2; i++ {
		got, err := reg.Generate(u)
		if err != nil {
			t.Fatalf("generate err: %v", err)
		}
		if got != want {
			t.Fatalf("unexpected json:\n got %s\nwant %s", got, want)
		}
	}
	if calls != 2 {
		t.Fatalf("producer should run once per extraction, ran %d times", calls)
	}

	doc, err := reg.Parse([]byte(want), jsoning.TypeOf[User](), "")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if canon(t, doc) != canon(t, want) {
		t.Fatalf("parse mismatch: %s", canon(t, doc))
	}
}

func TestRender_HashAndText(t *testing.T) {
	reg := newRegistry(t)
	h, err := reg.Render(newUser(), jsoning.GenerateOpt{Hash: true})
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if _, ok := h.(*jsoning.Document); !ok {
		t.Fatalf("expected *Document, got %T", h)
	}
	s, err := reg.Render(newUser())
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if s != userJSON {
		t.Fatalf("unexpected text: %v", s)
	}
}

func TestGenerate_PrettyOnlyChangesLayout(t *testing.T) {
	reg := newRegistry(t)
	pretty, err := reg.Generate(newUser(), jsoning.GenerateOpt{Pretty: true})
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if pretty == userJSON {
		t.Fatalf("expected indented output")
	}
	if canon(t, pretty) != canon(t, userJSON) {
		t.Fatalf("pretty output differs in content: %s", pretty)
	}
}

func TestRoundTrip_ReconstructMatchesHash(t *testing.T) {
	reg := newRegistry(t)
	u := newUser()
	u.TakenDegree = newDegree()

	hash, err := reg.GenerateDocument(u)
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	text, err := reg.Encode(hash, false)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	doc, err := reg.Parse([]byte(text), jsoning.TypeOf[User](), "")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if canon(t, doc) != canon(t, hash) {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", canon(t, doc), canon(t, hash))
	}
}
