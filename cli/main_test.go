package cli

import (
	"os"
	"testing"
)

// TestMain isolates the configuration and cache directories.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "twine-cli-test")
	if err != nil {
		panic(err)
	}

	os.Setenv("XDG_CONFIG_HOME", dir+"/config")
	os.Setenv("XDG_CACHE_HOME", dir+"/cache")

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}
