package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
	"github.com/ardnew/twine/store"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey     struct{}
	searchPathKey struct{}
	storePathKey  struct{}
)

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by WithOutput, or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithSearchPath returns a new context.Context containing the directories
// templates are loaded from, in priority order.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

// searchPathFrom returns the directories stored by WithSearchPath, or the
// working directory.
func searchPathFrom(ctx context.Context) []string {
	if dirs, ok := ctx.Value(searchPathKey{}).([]string); ok && len(dirs) > 0 {
		return dirs
	}

	return []string{"."}
}

// WithStorePath returns a new context.Context naming the SQLite template
// store consulted ahead of the search path. An empty path disables it.
func WithStorePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, storePathKey{}, path)
}

func storePathFrom(ctx context.Context) string {
	path, _ := ctx.Value(storePathKey{}).(string)

	return path
}

// openStore opens the template store named in ctx.
func openStore(ctx context.Context) (*store.Store, error) {
	path := storePathFrom(ctx)
	if path == "" {
		return nil, ErrNoStore
	}

	return store.Open(ctx, path, store.WithLogger(log.Default()))
}

// sources are the places templates are loaded from: the template store,
// if one is configured, ahead of the search path.
type sources struct {
	store *store.Store
	dirs  *lang.DirLoader
}

// openSources opens the template sources named in ctx. The caller must
// close them.
func openSources(ctx context.Context) (*sources, error) {
	src := &sources{dirs: lang.NewDirLoader(nil, searchPathFrom(ctx)...)}

	if storePathFrom(ctx) == "" {
		return src, nil
	}

	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	src.store = s

	return src, nil
}

func (s *sources) loader() lang.Loader {
	if s.store == nil {
		return s.dirs
	}

	return lang.ChainLoader{s.store, s.dirs}
}

func (s *sources) close(ctx context.Context) {
	if s.store == nil {
		return
	}

	if err := s.store.Close(); err != nil {
		log.WarnContext(ctx, "close template store", slog.Any("error", err))
	}
}

// names returns the templates selected by the patterns in every search
// directory, followed by every template in the store. Each name appears
// once, at its first occurrence.
func (s *sources) names(ctx context.Context, patterns []string) ([]string, error) {
	var names []string

	for _, dir := range s.dirs.Dirs() {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}

		fsys := afero.NewIOFS(afero.NewBasePathFs(s.dirs.Fs(), abs))

		for _, pattern := range patterns {
			matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, lang.WrapError(err).With(slog.String("pattern", pattern))
			}

			for _, m := range matches {
				if !slices.Contains(names, m) {
					names = append(names, m)
				}
			}
		}
	}

	if s.store != nil {
		stored, err := s.store.Names(ctx)
		if err != nil {
			return nil, err
		}

		for _, name := range stored {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	return names, nil
}

// newEngine returns an engine over loader configured for command use.
func newEngine(loader lang.Loader, maxDepth int, opts ...lang.Option) *lang.Engine {
	return lang.NewEngine(loader, append([]lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(maxDepth),
	}, opts...)...)
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openInput opens the named file, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueInputs returns paths with duplicate files removed, comparing
// resolved device/inode pairs. All occurrences of "-" (and of any name that
// refers to stdin) collapse into a single "-" placed last.
func uniqueInputs(paths []string) ([]string, error) {
	var (
		out      = make([]string, 0, len(paths))
		seen     = make(map[fileKey]struct{})
		names    = make(map[string]struct{})
		hasStdin bool
	)

	stdinKey, stdinOK := fileKey{}, false
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, stdinOK = makeFileKey(info)
	}

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, ErrReadData.Wrap(err).With(slog.String("file", path))
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, ErrReadData.Wrap(err).With(slog.String("file", path))
		}

		if key, ok := makeFileKey(info); ok {
			if stdinOK && key == stdinKey {
				hasStdin = true

				continue
			}

			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		} else {
			abs, _ := filepath.Abs(resolved)
			if _, dup := names[abs]; dup {
				continue
			}

			names[abs] = struct{}{}
		}

		out = append(out, path)
	}

	if hasStdin {
		out = append(out, stdinSource)
	}

	return out, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
