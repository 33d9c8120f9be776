package lang

import (
	"errors"
	"testing"
)

var inheritance = MapLoader{
	"base.html":  `<title>{% block title %}Site{% endblock %}</title>{% block body %}[{% block side %}S{% endblock %}]{% endblock %}`,
	"page.html":  `{% extends "base.html" %}{% block title %}Page | {{ parent() }}{% endblock %}`,
	"side.html":  `{% extends "base.html" %}{% block side %}C{{ parent() }}{% endblock %}`,
	"outer.html": `{% extends "side.html" %}{% block body %}({{ parent() }}){% endblock %}`,
	"nope.html":  `{% extends "base.html" %}{% block nope %}X{% endblock %}`,
	"r":          `{% block x %}A{% endblock %}`,
	"c":          `{% extends "r" %}{% block x %}B{{ parent() }}{% endblock %}`,
	"g":          `{% extends "c" %}{% block x %}C2{{ parent() }}{% endblock %}`,
	"loop1":      `{% extends "loop2" %}`,
	"loop2":      `{% extends "loop1" %}`,
	"orphan":     `{% extends "missing.html" %}`,
	"broken":     `{% extends "bad" %}`,
	"bad":        `{{ oops`,
}

func TestResolveChains(t *testing.T) {
	t.Parallel()

	m, err := Resolve(t.Context(), inheritance, "g")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(m.Children) != 1 {
		t.Fatalf("resolved module has %d nodes, want 1", len(m.Children))
	}

	head, ok := m.Children[0].(*Block)
	if !ok {
		t.Fatalf("node %T is not a block", m.Children[0])
	}

	chain := head.Chain()
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}

	// Each link's marker is bound to the next link.
	for i, b := range chain[:2] {
		var marker *ParentMarker

		for _, c := range b.Children {
			if pm, ok := c.(*ParentMarker); ok {
				marker = pm
			}
		}

		if marker == nil || marker.Block != chain[i+1] {
			t.Errorf("link %d marker = %v, want bound to link %d", i, marker, i+1)
		}
	}

	if chain[2].Parent != nil {
		t.Error("root block has a parent")
	}
}

func TestResolveModuleUnchanged(t *testing.T) {
	t.Parallel()

	m, err := Resolve(t.Context(), inheritance, "r")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	b, _ := m.Children[0].(*Block)
	if b == nil || b.Parent != nil {
		t.Errorf("root template altered: %#v", m.Children)
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []error
	}{
		{"loop1", []error{ErrExtendsCycle}},
		{"orphan", []error{ErrLoad, ErrTemplateNotFound}},
		{"broken", []error{ErrLoad, ErrUnterminatedVariable}},
		{"absent", []error{ErrLoad, ErrTemplateNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(t.Context(), inheritance, tt.path)
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.path, err, want)
				}
			}
		})
	}
}

func TestResolveMaxDepth(t *testing.T) {
	t.Parallel()

	loader := MapLoader{
		"0": `{% block a %}{% endblock %}`,
		"1": `{% extends "0" %}`,
		"2": `{% extends "1" %}`,
		"3": `{% extends "2" %}`,
	}

	if _, err := Resolve(t.Context(), loader, "3", WithMaxDepth(2)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	if _, err := Resolve(t.Context(), loader, "3", WithMaxDepth(4)); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestResolveDoesNotMutateCache(t *testing.T) {
	t.Parallel()

	for range 2 {
		m, err := Resolve(t.Context(), inheritance, "c")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		if n := len(m.Children[0].(*Block).Chain()); n != 2 {
			t.Fatalf("chain length = %d, want 2", n)
		}
	}
}
