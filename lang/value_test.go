package lang

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type address struct {
	City string `json:"city"`
}

type person struct {
	Name     string
	Age      int
	Address  *address
	Tags     []string `yaml:"labels"`
	Nickname string   `json:"-"`
	secret   string
}

func TestValueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "x", "x"},
		{"bytes", []byte("b"), "b"},
		{"bool", true, "true"},
		{"int", -42, "-42"},
		{"uint", uint8(7), "7"},
		{"float", 1.5, "1.5"},
		{"whole float", 3.0, "3"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{"duration", 2 * time.Second, "2s"},
		{"nil pointer", (*int)(nil), nil},
		{"pointer", new(int), "0"},
		{"slice", []int{1, 2}, []any{"1", "2"}},
		{"nil slice", []string(nil), []any{}},
		{"array", [2]bool{true, false}, []any{"true", "false"}},
		{
			"nested map",
			map[string]any{"a": map[int]string{1: "one"}, "b": nil},
			map[string]any{"a": map[string]any{"1": "one"}, "b": nil},
		},
		{"scalar value", Scalar("s"), "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, ValueOf(tt.in).Native()); diff != "" {
				t.Errorf("ValueOf(%#v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestStructObject(t *testing.T) {
	t.Parallel()

	v := ValueOf(&person{
		Name:     "Ann",
		Age:      30,
		Address:  &address{City: "Oslo"},
		Tags:     []string{"x"},
		Nickname: "annie",
		secret:   "s",
	})

	if v.Kind() != KindObject {
		t.Fatalf("Kind() = %v, want object", v.Kind())
	}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"Name", "Ann", true},
		{"name", "Ann", true},
		{"age", "30", true},
		{"address.city", "Oslo", true},
		{"Address.City", "Oslo", true},
		{"nickname", "annie", true},
		{"secret", "", false},
		{"missing", "", false},
		{"name.first", "", false},
		{"address..city", "", false},
	}

	for _, tt := range tests {
		got, ok := v.Lookup(tt.path)
		text, _ := got.Text()

		if ok != tt.ok || text != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.path, text, ok, tt.want, tt.ok)
		}
	}

	labels, ok := v.Lookup("labels")
	if items, isList := labels.Items(); !ok || !isList || len(items) != 1 {
		t.Errorf("Lookup(labels) = %v, %v", labels, ok)
	}
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	m := Map(map[string]Value{"b": Scalar("2"), "a": List(Scalar("1"))})

	if diff := cmp.Diff([]string{"a", "b"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if got, want := m.String(), `{a: ["1"], b: "2"}`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if _, ok := Scalar("x").Field("x"); ok {
		t.Error("scalar has fields")
	}

	if _, ok := Null().Items(); ok {
		t.Error("null is a list")
	}

	if FromObject(nil).Kind() != KindNull {
		t.Error("FromObject(nil) is not null")
	}

	if v, ok := m.Lookup(""); !ok || v.Kind() != KindMap {
		t.Error("empty path does not yield the value itself")
	}
}
