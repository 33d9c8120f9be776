package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/twine/cli/cmd/repl"
	"github.com/ardnew/twine/log"
)

// Repl starts an interactive template playground.
type Repl struct {
	DataFlags `embed:""`

	Patterns []string `default:"**/*.twig,**/*.html" help:"Doublestar patterns selecting templates offered for completion." name:"pattern" sep:","`
	MaxDepth int      `default:"${maxDepth}"          help:"Maximum inheritance and include depth."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openSources(ctx)
	if err != nil {
		return err
	}
	defer src.close(ctx)

	data, err := r.Value(ctx)
	if err != nil {
		return err
	}

	session := &repl.Session{
		Engine: newEngine(src.loader(), r.MaxDepth),
		Data:   data,
		Templates: func(ctx context.Context) ([]string, error) {
			return src.names(ctx, r.Patterns)
		},
		Assign: assign,
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("cache", cacheDir),
		slog.Int("keys", len(data.Keys())),
	)

	return repl.Run(ctx, session, cacheDir, log.Default())
}
