package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-homedir"
)

func TestSearchPath(t *testing.T) {
	home, err := homedir.Expand("~/shared")
	if err != nil {
		t.Skip("no home directory")
	}

	sep := string(os.PathListSeparator)
	t.Setenv(pathVar(), strings.Join([]string{"/srv/tmpl", "", "~/shared"}, sep))

	got := searchPath([]string{"site", "layouts"})
	want := []string{"site", "layouts", "/srv/tmpl", home}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("searchPath() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchPathEmpty(t *testing.T) {
	t.Setenv(pathVar(), "")

	if got := searchPath(nil); len(got) != 0 {
		t.Errorf("searchPath(nil) = %q, want empty", got)
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	if got := configPath("config.yaml"); filepath.Base(got) != "config.yaml" ||
		!strings.HasPrefix(got, os.Getenv("XDG_CONFIG_HOME")) {
		t.Errorf("configPath() = %q, want a file in %q", got, os.Getenv("XDG_CONFIG_HOME"))
	}
}
