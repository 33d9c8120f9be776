package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	loader := lang.MapLoader{
		"base.html": `<title>{% block title %}{% endblock %}</title>`,
		"page.html": `{% extends "base.html" %}{% block title %}{{ user.name }}{% endblock %}`,
	}

	session := &Session{
		Engine: lang.NewEngine(loader),
		Data: lang.Map(map[string]lang.Value{
			"site": lang.Scalar("S"),
			"user": lang.Map(map[string]lang.Value{"name": lang.Scalar("Ann")}),
		}),
		Assign: func(_ context.Context, data lang.Value, set string) (lang.Value, error) {
			name, value, _ := strings.Cut(set, "=")

			return data.With(strings.TrimSpace(name), lang.Scalar(strings.TrimSpace(value))), nil
		},
	}

	return newModel(t.Context(), session, []string{"base.html", "page.html"}, NewHistory(""), log.Logger{})
}

func typeRunes(m model, s string) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})

	return m
}

func TestModelRender(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	got, err := m.render(`Hi {{ user.name }}{% include "base.html" %}`)
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}

	if want := "Hi Ann<title></title>"; got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}

	if _, err := m.render(`{% block x %}`); err == nil {
		t.Error("render(unterminated) error = nil, want error")
	}
}

func TestModelCommand(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	tests := []struct {
		command string
		arg     string
		want    string
		wantErr bool
	}{
		{command: "data", arg: "user.name", want: "Ann"},
		{command: "data", arg: "user", want: "name: Ann"},
		{command: "data", arg: "nope", want: "undefined"},
		{command: "templates", want: "page.html"},
		{command: "show", arg: "page.html", want: "block title"},
		{command: "show", wantErr: true},
		{command: "show", arg: "missing.html", wantErr: true},
		{command: "help", want: "show NAME"},
		{command: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.command+" "+tt.arg, func(t *testing.T) {
			t.Parallel()

			got, err := m.command(tt.command, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("command(%q, %q) error = nil, want error", tt.command, tt.arg)
				}

				return
			}

			if err != nil {
				t.Fatalf("command(%q, %q) error = %v", tt.command, tt.arg, err)
			}

			if !strings.Contains(got, tt.want) {
				t.Errorf("command(%q, %q) = %q, want it to contain %q",
					tt.command, tt.arg, got, tt.want)
			}
		})
	}
}

func TestModelSet(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	if _, err := m.command("set", "user.role = admin"); err != nil {
		t.Fatalf("command(set) error = %v", err)
	}

	got, err := m.render("{{ user.name }}:{{ user.role }}")
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}

	if want := "Ann:admin"; got != want {
		t.Errorf("render() after set = %q, want %q", got, want)
	}
}

func TestModelCompletion(t *testing.T) {
	t.Parallel()

	m := typeRunes(testModel(t), "{{ us")

	if len(m.matches) != 1 || m.matches[0].Str != "user" {
		t.Fatalf("matches = %v, want [user]", m.matches)
	}

	m = m.cycle(1)
	if got, want := m.input.Value(), "{{ user"; got != want {
		t.Errorf("input after tab = %q, want %q", got, want)
	}

	m = typeRunes(m, ".")
	if len(m.matches) != 1 || m.matches[0].Str != "name" {
		t.Errorf("matches after dot = %v, want [name]", m.matches)
	}
}

func TestModelTemplateCompletion(t *testing.T) {
	t.Parallel()

	m := typeRunes(testModel(t), `{% include "`)

	if got := len(m.matches); got != 2 {
		t.Fatalf("len(matches) = %d, want 2", got)
	}

	m = m.cycle(-1)
	if got, want := m.input.Value(), `{% include "page.html`; got != want {
		t.Errorf("input after shift-tab = %q, want %q", got, want)
	}
}

func TestModelModes(t *testing.T) {
	t.Parallel()

	m := typeRunes(testModel(t), "{{ site }}")

	m, _ = m.toggleMode()
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after toggle: mode = %d, input = %q", m.mode, m.input.Value())
	}

	m = typeRunes(m, "sh")
	if len(m.matches) == 0 || m.matches[0].Str != "show" {
		t.Errorf("command matches = %v, want show first", m.matches)
	}

	m, _ = m.toggleMode()
	if got, want := m.input.Value(), "{{ site }}"; m.mode != modeEval || got != want {
		t.Errorf("after toggle back: mode = %d, input = %q, want %q", m.mode, got, want)
	}
}

func TestModelHistory(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	for _, e := range []HistoryEntry{{"{{ site }}", modeEval}, {"data", modeCtrl}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.mode != modeCtrl || m.input.Value() != "data" {
		t.Errorf("up: mode = %d, input = %q", m.mode, m.input.Value())
	}

	m = m.historyStep(-1, false)
	if m.mode != modeEval || m.input.Value() != "{{ site }}" {
		t.Errorf("up twice: mode = %d, input = %q", m.mode, m.input.Value())
	}

	m = m.historyStep(1, true)
	if m.historyIdx != m.history.Len() || m.input.Value() != "" {
		t.Errorf("down within mode: index = %d, input = %q", m.historyIdx, m.input.Value())
	}
}
