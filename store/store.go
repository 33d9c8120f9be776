package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	name       TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	hash       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Entry describes a stored template.
type Entry struct {
	Name    string
	Hash    string
	Size    int
	Updated time.Time
}

// Store is a SQLite table of named template sources.
// It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger log.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens or creates the database at dataSource and ensures its schema.
// The name ":memory:" opens a private in-memory database.
func Open(ctx context.Context, dataSource string, opts ...Option) (*Store, error) {
	db, err := openDB(dataSource)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("source", dataSource))
	}

	// A single connection serializes writers and keeps :memory: databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, ErrOpen.Wrap(err).With(slog.String("source", dataSource))
	}

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.DebugContext(ctx, "opened template store",
		slog.String("source", dataSource),
		slog.String("driver", driverName),
	)

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores src under name, replacing any previous source. The source must
// parse; resolution against other templates is deferred until load.
func (s *Store) Put(ctx context.Context, name, src string) error {
	return s.put(ctx, s.db, name, src)
}

func (s *Store) put(ctx context.Context, db execer, name, src string) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}

	if _, err := lang.Parse(ctx, src); err != nil {
		return ErrInvalidTemplate.Wrap(err).With(slog.String("name", key))
	}

	hash := fmt.Sprintf("%016x", xxh3.HashString(src))

	_, err = db.ExecContext(ctx, `
INSERT INTO templates (name, source, hash, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	source = excluded.source,
	hash = excluded.hash,
	updated_at = excluded.updated_at
WHERE templates.hash != excluded.hash`,
		key, src, hash, time.Now().UnixMilli())
	if err != nil {
		return ErrQuery.Wrap(err).With(slog.String("name", key))
	}

	s.logger.DebugContext(ctx, "stored template",
		slog.String("name", key),
		slog.String("hash", hash),
		slog.Int("size", len(src)),
	)

	return nil
}

// Load implements [lang.Loader].
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	key, err := cleanName(name)
	if err != nil {
		return "", err
	}

	var src string

	err = s.db.QueryRowContext(ctx,
		`SELECT source FROM templates WHERE name = ?`, key).Scan(&src)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", s.notFound(ctx, key)
	case err != nil:
		return "", ErrQuery.Wrap(err).With(slog.String("name", key))
	}

	return src, nil
}

// Delete removes the template stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, key)
	if err != nil {
		return ErrQuery.Wrap(err).With(slog.String("name", key))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return s.notFound(ctx, key)
	}

	return nil
}

// Names returns the names of all stored templates in order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	return names, nil
}

// List describes all stored templates ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, hash, length(source), updated_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var entries []Entry

	for rows.Next() {
		var (
			e       Entry
			updated int64
		)

		if err := rows.Scan(&e.Name, &e.Hash, &e.Size, &updated); err != nil {
			return nil, ErrQuery.Wrap(err)
		}

		e.Updated = time.UnixMilli(updated)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	return entries, nil
}

// Import stores every file in fsys matching the doublestar pattern under
// its slash-separated path. Files that fail to read or parse are skipped
// and reported together; the rest are committed in one transaction.
func (s *Store) Import(ctx context.Context, fsys fs.FS, pattern string) (int, error) {
	if pattern == "" {
		pattern = "**"
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, ErrQuery.Wrap(err).With(slog.String("pattern", pattern))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ErrQuery.Wrap(err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		skipped error
		count   int
	)

	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			skipped = multierror.Append(skipped, lang.ErrReadInput.Wrap(err))

			continue
		}

		err = s.put(ctx, tx, name, string(data))
		if errors.Is(err, ErrInvalidTemplate) {
			skipped = multierror.Append(skipped, err)

			continue
		}

		if err != nil {
			return 0, err
		}

		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, ErrQuery.Wrap(err)
	}

	s.logger.DebugContext(ctx, "imported templates",
		slog.String("pattern", pattern),
		slog.Int("count", count),
		slog.Int("matches", len(matches)),
	)

	return count, skipped
}

func (s *Store) notFound(ctx context.Context, name string) error {
	names, err := s.Names(ctx)
	if err != nil {
		names = nil
	}

	return lang.NotFound(name, names)
}

// cleanName normalizes a template name to a slash-separated relative path.
func cleanName(name string) (string, error) {
	key := path.Clean("/" + strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))[1:]
	if key == "" {
		return "", ErrInvalidName.With(slog.String("name", name))
	}

	return key, nil
}
