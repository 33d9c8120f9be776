package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

// Check parses and resolves every matching template, reporting all failures
// together.
type Check struct {
	Patterns []string `arg:"" default:"**/*.twig,**/*.html" help:"Doublestar patterns selecting templates in each search directory." name:"pattern" optional:""`
	MaxDepth int      `default:"${maxDepth}"                help:"Maximum inheritance and include depth."`
	Quiet    bool     `help:"Report failures only." short:"q"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openSources(ctx)
	if err != nil {
		return err
	}
	defer src.close(ctx)

	names, err := src.names(ctx, c.Patterns)
	if err != nil {
		return err
	}

	var (
		e      = newEngine(src.loader(), c.MaxDepth)
		w      = outputFrom(ctx)
		st     = newStyler(w)
		errs   *multierror.Error
		failed int
	)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.check(ctx, e, name); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			failed++

			fmt.Fprintf(w, "%s %s %s\n", st.fail("FAIL"), st.name(name), st.err(err.Error()))

			continue
		}

		if !c.Quiet {
			fmt.Fprintf(w, "%s %s\n", st.ok("ok  "), st.name(name))
		}
	}

	if !c.Quiet {
		fmt.Fprintln(w, st.hint(fmt.Sprintf("%d checked, %d failed", len(names), failed)))
	}

	log.DebugContext(ctx, "checked templates",
		slog.Int("checked", len(names)),
		slog.Int("failed", failed),
	)

	if err := errs.ErrorOrNil(); err != nil {
		return ErrCheckFailed.Wrap(err).With(
			slog.Int("checked", len(names)),
			slog.Int("failed", failed),
		)
	}

	return nil
}

// check resolves the template at name and loads every template it includes.
func (c *Check) check(ctx context.Context, e *lang.Engine, name string) error {
	m, err := e.Resolve(ctx, name)
	if err != nil {
		return err
	}

	var errs *multierror.Error

	for _, path := range includes(m.Children, nil) {
		src, err := e.Loader().Load(ctx, path)
		if err == nil {
			_, err = lang.Parse(ctx, src)
		}

		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("include %q: %w", path, err))
		}
	}

	return errs.ErrorOrNil()
}

// includes appends the distinct include paths found in nodes, including
// those inside every link of a block's override chain.
func includes(nodes []lang.Content, paths []string) []string {
	for _, n := range nodes {
		b, ok := n.(*lang.Block)
		if !ok {
			continue
		}

		if inc, ok := b.Tag.(lang.Include); ok && !slices.Contains(paths, inc.Path) {
			paths = append(paths, inc.Path)
		}

		for _, link := range b.Chain() {
			paths = includes(link.Children, paths)
		}
	}

	return paths
}
