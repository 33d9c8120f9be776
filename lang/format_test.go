package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToMap(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseString(t.Context(),
		`a{{ b }}{% block c %}{{ parent() }}{% for i in xs %}{% include "p" %}{% endfor %}{% endblock %}{% x %}`)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"module": []any{
			map[string]any{"text": "a"},
			map[string]any{"var": "b"},
			map[string]any{
				"block": "c",
				"children": []any{
					map[string]any{"parent": false},
					map[string]any{
						"for":      "i",
						"in":       "xs",
						"children": []any{map[string]any{"include": "p"}},
					},
				},
			},
			map[string]any{"unrecognized": "x"},
		},
	}

	if diff := cmp.Diff(want, ToMap(tmpl)); diff != "" {
		t.Errorf("ToMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	x, err := ParseString(t.Context(), `{% extends "base" %}{% block b %}2{% endblock %}{% block a %}1{% endblock %}`)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	if err := Format(t.Context(), &buf, x, "tree", 0); err != nil {
		t.Fatal(err)
	}

	want := `extends "base"
├── block a
│   └── text "1"
└── block b
    └── text "2"
`
	if got := buf.String(); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}

	buf.Reset()

	if err := Format(t.Context(), &buf, x, "json", 0); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}

	if decoded["extends"] != "base" {
		t.Errorf("json = %s", buf.String())
	}

	buf.Reset()

	if err := Format(t.Context(), &buf, x, "yaml", 2); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "extends: base") {
		t.Errorf("yaml = %s", buf.String())
	}

	buf.Reset()

	if err := Format(t.Context(), &buf, x, "ast", 0); err != nil {
		t.Fatal(err)
	}

	wantAST := `Extends "base"
  Block a
    Text "1"
  Block b
    Text "2"
`
	if got := buf.String(); got != wantAST {
		t.Errorf("ast =\n%s\nwant\n%s", got, wantAST)
	}

	if err := Format(t.Context(), &buf, x, "toml", 0); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Format(toml) error = %v", err)
	}
}

func TestTreeShowsOverrides(t *testing.T) {
	t.Parallel()

	m, err := Resolve(t.Context(), inheritance, "g")
	if err != nil {
		t.Fatal(err)
	}

	tree := Tree(m)

	for _, want := range []string{"module", "block x (2 overridden)", "parent() -> x", `text "C2"`} {
		if !strings.Contains(tree, want) {
			t.Errorf("Tree() missing %q:\n%s", want, tree)
		}
	}
}
