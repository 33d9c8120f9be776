package lang

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"
)

// Loader supplies template source by logical path.
//
// Implementations return an error matching [ErrTemplateNotFound] when no
// template exists at path.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, path string) (string, error)

// Load calls f(ctx, path).
func (f LoaderFunc) Load(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// MapLoader serves templates from memory, keyed by path.
type MapLoader map[string]string

// Load returns the source stored at path.
func (m MapLoader) Load(_ context.Context, path string) (string, error) {
	if src, ok := m[path]; ok {
		return src, nil
	}

	return "", NotFound(path, slices.Sorted(maps.Keys(m)))
}

// ChainLoader tries each loader in order, returning the first template
// found. Errors other than [ErrTemplateNotFound] stop the search.
type ChainLoader []Loader

// Load returns the source from the first loader that has path.
func (c ChainLoader) Load(ctx context.Context, path string) (string, error) {
	var last error

	for _, l := range c {
		src, err := l.Load(ctx, path)
		if err == nil {
			return src, nil
		}

		if !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}

		last = err
	}

	if last == nil {
		last = NotFound(path, nil)
	}

	return "", last
}

// DirLoader serves templates from files found in a list of search
// directories. Earlier directories take precedence.
type DirLoader struct {
	fs   afero.Fs
	dirs []string
}

// NewDirLoader returns a loader searching dirs on fsys.
// A nil fsys uses the operating system's filesystem; no dirs searches the
// working directory.
func NewDirLoader(fsys afero.Fs, dirs ...string) *DirLoader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	return &DirLoader{fs: fsys, dirs: slices.Clone(dirs)}
}

// Fs returns the filesystem searched by d.
func (d *DirLoader) Fs() afero.Fs { return d.fs }

// Dirs returns the search directories in precedence order.
func (d *DirLoader) Dirs() []string { return slices.Clone(d.dirs) }

// Load returns the content of the first file named name in the search
// directories. Names use forward slashes.
func (d *DirLoader) Load(ctx context.Context, name string) (string, error) {
	rel := filepath.FromSlash(path.Clean("/" + name))[1:]
	if rel == "" {
		return "", NotFound(name, nil)
	}

	for _, dir := range d.dirs {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		b, err := afero.ReadFile(d.fs, filepath.Join(dir, rel))
		if err == nil {
			return string(b), nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return "", ErrLoad.Wrap(err).With(slog.String("path", name))
		}
	}

	names, _ := d.Names(ctx)

	return "", NotFound(name, names)
}

// Names returns the slash-separated path of every regular file beneath the
// search directories, relative to the directory containing it.
func (d *DirLoader) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, dir := range d.dirs {
		err := afero.Walk(d.fs, dir, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}

				return err
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}

			seen[filepath.ToSlash(rel)] = struct{}{}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return slices.Sorted(maps.Keys(seen)), nil
}

// NotFound returns an error matching [ErrTemplateNotFound] for path,
// suggesting the closest of candidates.
func NotFound(path string, candidates []string) error {
	s := Suggest(path, candidates, 3)

	cause := strconv.Quote(path)
	if len(s) > 0 {
		q := make([]string, len(s))
		for i, name := range s {
			q[i] = strconv.Quote(name)
		}

		cause = fmt.Sprintf("%s (did you mean %s?)", cause, strings.Join(q, ", "))
	}

	return ErrTemplateNotFound.Wrap(errors.New(cause)).With(
		slog.String("path", path),
		slog.Any("suggestions", s),
	)
}

// Suggest returns up to limit entries of candidates that fuzzily match
// name, best match first.
func Suggest(name string, candidates []string, limit int) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}

	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		// Fall back to matching on the base name only.
		matches = fuzzy.Find(path.Base(name), candidates)
	}

	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}

		if m.Str != name {
			out = append(out, m.Str)
		}
	}

	return out
}
