package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

// Fmt prints a template's syntax tree in the chosen format.
type Fmt struct {
	Tree Tree `cmd:"" default:"withargs" help:"Print as an outline tree (default)."`
	AST  AST  `cmd:""                    help:"Print as an indented node listing."`
	JSON JSON `cmd:""                    help:"Print as JSON."`
	YAML YAML `cmd:""                    help:"Print as YAML."`
}

// fmtSource selects the template printed by a fmt subcommand.
type fmtSource struct {
	Resolve  bool   `help:"Print the template with inheritance resolved." short:"r"`
	MaxDepth int    `default:"${maxDepth}" help:"Maximum inheritance depth when resolving."`
	Template string `arg:"" default:"-" help:"Template to print, or '-' to read template text from stdin." name:"template"`
}

// Tree prints a template as an outline tree.
type Tree struct{ fmtSource }

// Run executes the tree command.
func (f *Tree) Run(ctx context.Context) error { return f.run(ctx, "tree", 0) }

// AST prints a template as an indented node listing.
type AST struct {
	fmtSource

	Indent int `default:"2" help:"Indent width." short:"i"`
}

// Run executes the ast command.
func (f *AST) Run(ctx context.Context) error { return f.run(ctx, "ast", f.Indent) }

// JSON prints a template as JSON.
type JSON struct {
	fmtSource

	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)." short:"i"`
}

// Run executes the json command.
func (f *JSON) Run(ctx context.Context) error { return f.run(ctx, "json", f.Indent) }

// YAML prints a template as YAML.
type YAML struct {
	fmtSource

	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)." short:"i"`
}

// Run executes the yaml command.
func (f *YAML) Run(ctx context.Context) error { return f.run(ctx, "yaml", f.Indent) }

func (f *fmtSource) run(ctx context.Context, format string, indent int) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := f.template(ctx)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	return lang.Format(ctx, outputFrom(ctx), t, format, indent)
}

// template loads, parses, and optionally resolves the selected template.
func (f *fmtSource) template(ctx context.Context) (lang.Template, error) {
	sources, err := openSources(ctx)
	if err != nil {
		return nil, err
	}
	defer sources.close(ctx)

	loader := sources.loader()
	e := newEngine(loader, f.MaxDepth)

	var src string

	if f.Template == stdinSource {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, lang.ErrReadInput.Wrap(err)
		}

		src = string(data)

		if f.Resolve {
			return e.ResolveString(ctx, src)
		}
	} else {
		if f.Resolve {
			return e.Resolve(ctx, f.Template)
		}

		if src, err = loader.Load(ctx, f.Template); err != nil {
			return nil, lang.ErrLoad.Wrap(err)
		}
	}

	return lang.Parse(ctx, src, lang.WithLogger(log.Default()))
}
