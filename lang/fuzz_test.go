package lang

import (
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParse checks that arbitrary input either parses or fails with a
// positioned error, and that parsed modules render without panicking.
func FuzzParse(f *testing.F) {
	f.Add("plain text")
	f.Add("{{ a.b }}")
	f.Add(`{% extends "base" %}{% block a %}{{ parent() }}{% endblock %}`)
	f.Add("{% for x in xs %}{{ x }}{% endfor %}")
	f.Add(`{% include "p" %}`)
	f.Add("{% block a %}{% block a %}{% endblock %}{% endblock %}")
	f.Add("{{")
	f.Add("{% block \"x\" %}")
	f.Add("{% wat '%}' %}")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		tmpl, err := ParseString(t.Context(), input)
		if err != nil {
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is not *Error", err)
			}

			return
		}

		_ = Tree(tmpl)
		_ = ToMap(tmpl)

		m, ok := tmpl.(*Module)
		if !ok {
			return
		}

		env := NewEnvironment(ValueOf(map[string]any{"xs": []string{"1"}}))
		if _, err := Render(t.Context(), m, env, nil, WithMaxDepth(2)); err != nil &&
			!errors.Is(err, ErrNotIterable) {
			t.Errorf("Render() error = %v", err)
		}

		if env.Depth() != 0 {
			t.Errorf("scope depth after render = %d", env.Depth())
		}
	})
}
