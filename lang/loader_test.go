package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%q) error = %v", name, err)
		}
	}

	return fs
}

func TestDirLoader(t *testing.T) {
	t.Parallel()

	fs := memFs(t, map[string]string{
		"site/base.html":         "site base",
		"site/partials/nav.html": "nav",
		"theme/base.html":        "theme base",
		"theme/footer.html":      "footer",
	})

	loader := NewDirLoader(fs, "site", "theme")

	tests := []struct {
		name string
		want string
	}{
		{"base.html", "site base"},
		{"footer.html", "footer"},
		{"partials/nav.html", "nav"},
		{"/partials/nav.html", "nav"},
		{"partials/../footer.html", "footer"},
	}

	for _, tt := range tests {
		got, err := loader.Load(t.Context(), tt.name)
		if err != nil || got != tt.want {
			t.Errorf("Load(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}

	names, err := loader.Names(t.Context())
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}

	want := []string{"base.html", "footer.html", "partials/nav.html"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	// Paths cannot climb out of a search directory.
	if _, err := loader.Load(t.Context(), "../theme/footer.html"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Load() escaped search directory: %v", err)
	}

	_, err = loader.Load(t.Context(), "partials/nab.html")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("Load() error = %v, want %v", err, ErrTemplateNotFound)
	}
}

func TestDirLoaderMissingDir(t *testing.T) {
	t.Parallel()

	loader := NewDirLoader(memFs(t, map[string]string{"a/x": "x"}), "nowhere", "a")

	if got, err := loader.Load(t.Context(), "x"); err != nil || got != "x" {
		t.Errorf("Load() = %q, %v", got, err)
	}

	if names, err := loader.Names(t.Context()); err != nil || len(names) != 1 {
		t.Errorf("Names() = %v, %v", names, err)
	}
}

func TestChainLoader(t *testing.T) {
	t.Parallel()

	failing := LoaderFunc(func(context.Context, string) (string, error) {
		return "", errors.New("offline")
	})

	chain := ChainLoader{MapLoader{"a": "first"}, MapLoader{"a": "second", "b": "b"}}

	if got, _ := chain.Load(t.Context(), "a"); got != "first" {
		t.Errorf("Load(a) = %q, want first", got)
	}

	if got, _ := chain.Load(t.Context(), "b"); got != "b" {
		t.Errorf("Load(b) = %q", got)
	}

	if _, err := chain.Load(t.Context(), "c"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Load(c) error = %v", err)
	}

	if _, err := append(chain[:1:1], failing).Load(t.Context(), "c"); err == nil || err.Error() != "offline" {
		t.Errorf("Load() error = %v, want offline", err)
	}

	if _, err := (ChainLoader{}).Load(t.Context(), "c"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("empty chain error = %v", err)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	candidates := []string{"layouts/base.html", "partials/nav.html", "index.html"}

	tests := []struct {
		name string
		want []string
	}{
		{"nav", []string{"partials/nav.html"}},
		{"idx.html", []string{"index.html"}},
		{"zzz", []string{}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Suggest(tt.name, candidates, 3)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Suggest(%q) mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}
