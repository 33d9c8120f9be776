package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// parseCache maps the xxh3 hash of template source to its parse result.
//
//nolint:gochecknoglobals
var parseCache sync.Map

type cacheEntry struct {
	once sync.Once
	src  string
	tmpl Template
	err  error
}

// Parse parses template source, reusing the result of any earlier parse of
// identical source. Each call returns an independent copy of the tree.
func Parse(ctx context.Context, src string, opts ...Option) (Template, error) {
	cfg := makeConfig(opts...)

	return cfg.parse(ctx, src)
}

// ParseReader reads all of r and parses it as with [Parse].
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// ClearCache discards every cached parse result.
func ClearCache() {
	parseCache.Clear()
}

func (c config) parse(ctx context.Context, src string) (Template, error) {
	if c.noCache {
		return parse(ctx, src, c.logger)
	}

	key := xxh3.HashString(src)

	v, hit := parseCache.LoadOrStore(key, &cacheEntry{src: src})
	e, _ := v.(*cacheEntry)

	c.logger.TraceContext(ctx, "parse cache lookup",
		slog.String("hash", strconv.FormatUint(key, 16)),
		slog.Bool("hit", hit),
	)

	if e == nil || e.src != src {
		return parse(ctx, src, c.logger)
	}

	e.once.Do(func() {
		e.tmpl, e.err = parse(ctx, src, c.logger)
	})

	if e.err != nil {
		return nil, e.err
	}

	return Clone(e.tmpl), nil
}
