package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	t.Parallel()

	loader := MapLoader{
		"nav.html":   `<nav>{{ user.name }}</nav>`,
		"item.html":  `<{{ it }}>`,
		"child.html": `{% extends "r" %}`,
		"self.html":  `x{% include "self.html" %}`,
	}
	for k, v := range inheritance {
		loader[k] = v
	}

	data := map[string]any{
		"items": []string{"1", "2"},
		"user":  map[string]any{"name": "Ann"},
		"name":  "scalar",
		"users": []map[string]string{{"name": "a"}, {"name": "b"}},
	}

	tests := []struct {
		name string
		path string
		src  string
		want string
	}{
		{name: "inheritance", path: "c", want: "BA"},
		{name: "multi-level inheritance", path: "g", want: "C2BA"},
		{name: "missing parent", src: `{% block "x" %}{{ parent() }}{% endblock %}`, want: MissingParent},
		{name: "loop", src: `{% for it in items %}{{ it }}{% endfor %}`, want: "12"},
		{name: "undefined tag", src: `a{% wat %}b`, want: "ab"},
		{name: "nested path", src: `{{ user.name }}|{{ user.missing }}`, want: "Ann|"},
		{name: "non-scalar variable", src: `[{{ items }}][{{ user }}]`, want: "[][]"},
		{name: "title override", path: "page.html", want: "<title>Page | Site</title>[S]"},
		{name: "nested override", path: "side.html", want: "<title>Site</title>[CS]"},
		{name: "override of ancestor and nested block", path: "outer.html", want: "<title>Site</title>([CS])"},
		{name: "dropped override", path: "nope.html", want: "<title>Site</title>[S]"},
		{
			name: "loop item shadows data",
			src:  `{% for user in users %}{{ user.name }}{% endfor %}/{{ user.name }}`,
			want: "ab/Ann",
		},
		{
			name: "nested loops",
			src:  `{% for a in items %}{% for b in items %}{{ a }}{{ b }} {% endfor %}{% endfor %}`,
			want: "11 12 21 22 ",
		},
		{name: "include shares environment", src: `{% include "nav.html" %}`, want: "<nav>Ann</nav>"},
		{
			name: "include sees loop item",
			src:  `{% for it in items %}{% include "item.html" %}{% endfor %}`,
			want: "<1><2>",
		},
		{
			name: "include of extending template",
			src:  `{% include "child.html" %}`,
			want: `[cannot include "child.html": it extends "r"]`,
		},
		{
			name: "parent marker in named block of include",
			src:  `{% include "r" %}{% block y %}{{ parent() }}{% endblock %}`,
			want: "A" + MissingParent,
		},
	}

	eng := NewEngine(loader)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got string
				err error
			)

			if tt.path != "" {
				got, err = eng.Render(t.Context(), tt.path, data)
			} else {
				got, err = eng.RenderString(t.Context(), tt.src, data)
			}

			if err != nil {
				t.Fatalf("render error = %v", err)
			}

			if got != tt.want {
				t.Errorf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderIncludeFailuresInline(t *testing.T) {
	t.Parallel()

	loader := MapLoader{
		"self.html":   `x{% include "self.html" %}`,
		"broken.html": `{% include "bad" %}`,
		"bad":         `{% block a %}`,
		"lost.html":   `<{% include "nv.html" %}>`,
		"nav.html":    `nav`,
	}

	eng := NewEngine(loader, WithMaxDepth(3))

	tests := []struct {
		path   string
		prefix string
		want   []string
	}{
		{"self.html", "xxxx", []string{"maximum depth exceeded"}},
		{"broken.html", "", []string{"failed to load template", "bad", "unterminated block"}},
		{"lost.html", "<", []string{"template not found", `"nv.html"`, `did you mean "nav.html"`}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := eng.Render(t.Context(), tt.path, nil)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("Render() = %q, want prefix %q", got, tt.prefix)
			}

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestRenderNotIterable(t *testing.T) {
	t.Parallel()

	eng := NewEngine(MapLoader{
		"scalar.html":  `a{% for x in name %}{{ x }}{% endfor %}`,
		"missing.html": `a{% for x in nothing %}{% endfor %}`,
	})

	data := map[string]any{"name": "n"}

	_, err := eng.Render(t.Context(), "scalar.html", data)
	if !errors.Is(err, ErrNotIterable) {
		t.Fatalf("Render() error = %v, want %v", err, ErrNotIterable)
	}

	if got, want := eng.RenderText(t.Context(), "scalar.html", data),
		`value is not iterable: "name" is scalar`; got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}

	if got := eng.RenderText(t.Context(), "missing.html", data); !strings.Contains(got, "undefined") {
		t.Errorf("RenderText() = %q, want undefined collection message", got)
	}

	if got := eng.RenderText(t.Context(), "absent.html", data); !strings.Contains(got, "template not found") {
		t.Errorf("RenderText() = %q, want not found message", got)
	}
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	m, err := Resolve(t.Context(), inheritance, "outer.html")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	env := func() *Environment { return NewEnvironment(Null()) }

	first, err := Render(t.Context(), m, env(), inheritance)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	second, err := Render(t.Context(), m, env(), inheritance)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if first != second {
		t.Errorf("renders differ: %q != %q", first, second)
	}
}

func TestRenderScopesBalanced(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseString(t.Context(),
		`{% block a %}{% for i in xs %}{% block b %}{{ i }}{% endblock %}{% endfor %}{% endblock %}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	env := NewEnvironment(ValueOf(map[string]any{"xs": []int{1, 2, 3}}))

	out, err := Render(t.Context(), tmpl.(*Module), env, nil)
	if err != nil || out != "123" {
		t.Fatalf("Render() = %q, %v", out, err)
	}

	if env.Depth() != 0 {
		t.Errorf("depth after render = %d, want 0", env.Depth())
	}
}

func TestRenderCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	m := &Module{Children: []Content{&Block{Tag: Named{Name: "a"}}}}

	if _, err := Render(ctx, m, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want %v", err, context.Canceled)
	}
}
