package jsoning_test

import (
	"testing"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/codec"
	"github.com/reoring/jsoning/dsl"
)

type User struct {
	Name        *string
	Age         int
	Gender      *string
	TakenDegree *UserDegree
	Books       []*Book
	CreatedAt   any
}

type Book struct {
	Name string
}

type UserDegree struct {
	Faculty    string
	DegreeName string
}

type Achievement struct {
	AchievementName string
}

func strp(s string) *string { return &s }

func newUser() *User {
	return &User{
		Name: strp("Adam Baihaqi"),
		Age:  21,
		Books: []*Book{
			{Name: "Quiet: The Power of Introvert"},
			{Name: "Harry Potter and the Half-Blood Prince"},
		},
		CreatedAt: time.Date(2015, 11, 1, 14, 41, 9, 0, time.UTC),
	}
}

func newDegree() *UserDegree {
	return &UserDegree{Faculty: "School of IT", DegreeName: "B.Sc. (Hons) Computer Science"}
}

// newRegistry declares User, Book and UserDegree the way the generator
// scenarios expect.
func newRegistry(t *testing.T, opts ...jsoning.Option) *jsoning.Registry {
	t.Helper()
	base := []jsoning.Option{jsoning.WithReflectAccess(true), jsoning.WithSetup(codec.RegisterTemporal)}
	reg, err := jsoning.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new registry err: %v", err)
	}
	err = dsl.For[User](reg, func(s *dsl.Schema) {
		s.Key("name", dsl.Null(false))
		s.Key("years_old", dsl.From("age"))
		s.Key("gender", dsl.Default("male"))
		s.Key("books", dsl.DefaultFunc(func() any { return []any{} }))
		s.Key("degree_detail", dsl.From("taken_degree"))
		s.Key("registered_at", dsl.From("created_at"))
	})
	if err != nil {
		t.Fatalf("declare user err: %v", err)
	}
	if err := dsl.For[Book](reg, func(s *dsl.Schema) { s.Key("name") }); err != nil {
		t.Fatalf("declare book err: %v", err)
	}
	err = dsl.For[UserDegree](reg, func(s *dsl.Schema) {
		s.Key("faculty")
		s.Key("degree", dsl.From("degree_name"))
	})
	if err != nil {
		t.Fatalf("declare degree err: %v", err)
	}
	return reg
}

func declareBookVersions(t *testing.T, reg *jsoning.Registry) {
	t.Helper()
	err := dsl.For[Book](reg, func(s *dsl.Schema) {
		s.Version("v1", func(s *dsl.Schema) { s.Key("name") })
		s.Version("v2", func(s *dsl.Schema) { s.Key("book_name", dsl.From("name")) })
	})
	if err != nil {
		t.Fatalf("declare book versions err: %v", err)
	}
}

// canon renders v as key-sorted JSON so trees built from *Document, maps and
// decoded text compare equal. Strings are treated as JSON text.
func canon(t *testing.T, v any) string {
	t.Helper()
	var tree any
	if s, ok := v.(string); ok {
		if err := gojson.Unmarshal([]byte(s), &tree); err != nil {
			t.Fatalf("unmarshal err: %v", err)
		}
	} else {
		b, err := gojson.Marshal(jsoning.ToPlain(v))
		if err != nil {
			t.Fatalf("marshal err: %v", err)
		}
		if err := gojson.Unmarshal(b, &tree); err != nil {
			t.Fatalf("unmarshal err: %v", err)
		}
	}
	b, err := gojson.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	return string(b)
}

func wantCode(t *testing.T, err error, code string) *jsoning.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	e, ok := jsoning.AsError(err)
	if !ok {
		t.Fatalf("expected *jsoning.Error, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, e.Code, err)
	}
	return e
}
