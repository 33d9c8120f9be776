package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
	"github.com/mitchellh/go-homedir"

	"github.com/ardnew/twine/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// baseStore is the base name of the default template store.
const baseStore = "templates.db"

var defaultDirMode os.FileMode = 0o700

// pathVar returns the environment variable listing template directories
// searched after those given on the command line, e.g. TWINE_PATH.
func pathVar() string { return pkg.EnvPrefix() + "PATH" }

// searchPath returns the template search path: each directory in dirs
// followed by those listed in the path variable. Leading "~" is expanded in
// every entry and empty entries are dropped.
func searchPath(dirs []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pathVar())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	var path []string

	for _, dir := range filepath.SplitList(list) {
		if dir == "" {
			continue
		}

		path = append(path, expandPath(dir))
	}

	return path
}

// expandPath expands a leading "~" in path, returning path unchanged if the
// home directory cannot be determined.
func expandPath(path string) string {
	exp, err := homedir.Expand(path)
	if err != nil {
		return path
	}

	return exp
}

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return ErrCreateDir.Wrap(err)
		}
	}

	return nil
}
