package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

type resolverCLI struct {
	LogLevel string   `default:"info"`
	Dir      []string `sep:","`
	MaxDepth int      `default:"32"`

	Render struct {
		Sanitize bool
	} `cmd:""`

	Fmt struct {
		JSON struct {
			Indent int `default:"2"`
		} `cmd:"" name:"json"`
	} `cmd:""`
}

const resolverConfig = `
log_level: debug
dir: [a, b]
max-depth: 5
render:
  sanitize: true
fmt:
  json:
    indent: 4
`

func parseWithConfig(t *testing.T, config string, args ...string) resolverCLI {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli resolverCLI

	parser, err := kong.New(&cli, kong.Configuration(resolve, path))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}

	return cli
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("flat and command keys", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, resolverConfig, "render")

		if cli.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cli.LogLevel)
		}

		if diff := cmp.Diff([]string{"a", "b"}, cli.Dir); diff != "" {
			t.Errorf("Dir mismatch (-want +got):\n%s", diff)
		}

		if cli.MaxDepth != 5 {
			t.Errorf("MaxDepth = %d, want 5", cli.MaxDepth)
		}

		if !cli.Render.Sanitize {
			t.Error("Render.Sanitize = false, want true")
		}
	})

	t.Run("nested command", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, resolverConfig, "fmt", "json")
		if cli.Fmt.JSON.Indent != 4 {
			t.Errorf("Fmt.JSON.Indent = %d, want 4", cli.Fmt.JSON.Indent)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, resolverConfig, "--log-level=warn", "fmt", "json", "--indent=8")
		if cli.LogLevel != "warn" || cli.Fmt.JSON.Indent != 8 {
			t.Errorf("LogLevel = %q, Indent = %d, want warn, 8", cli.LogLevel, cli.Fmt.JSON.Indent)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, "", "render")
		if cli.LogLevel != "info" || cli.MaxDepth != 32 {
			t.Errorf("LogLevel = %q, MaxDepth = %d, want defaults", cli.LogLevel, cli.MaxDepth)
		}
	})
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()

	if _, err := resolve(strings.NewReader("a: [")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("resolve(invalid) error = %v, want %v", err, ErrInvalidConfig)
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()

	got := scalar([]any{uint64(1), int64(-2), 1.5, "x", true})
	want := []any{"1", "-2", "1.5", "x", true}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scalar() mismatch (-want +got):\n%s", diff)
	}
}
