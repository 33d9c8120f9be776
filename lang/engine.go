package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Engine loads, resolves, and renders templates by path.
// It is safe for concurrent use.
type Engine struct {
	loader Loader
	opts   []Option
	cfg    config
}

// NewEngine returns an engine loading templates through loader.
func NewEngine(loader Loader, opts ...Option) *Engine {
	return &Engine{
		loader: loader,
		opts:   opts,
		cfg:    makeConfig(opts...),
	}
}

// Loader returns the loader templates are read from.
func (e *Engine) Loader() Loader { return e.loader }

// Resolve loads the template at path and resolves its inheritance.
func (e *Engine) Resolve(ctx context.Context, path string) (*Module, error) {
	return e.cfg.resolve(ctx, e.loader, path)
}

// Environment returns a fresh environment whose root context is the
// engine's globals and whose base scope exposes data. Data shadows globals.
func (e *Engine) Environment(data any) *Environment {
	env := NewEnvironment(e.cfg.globals)
	env.Push(Scope{Overlay: ValueOf(data)})

	return env
}

// Render resolves the template at path and renders it against data, which
// is converted with [ValueOf].
func (e *Engine) Render(ctx context.Context, path string, data any) (string, error) {
	var sb strings.Builder

	if err := e.Execute(ctx, &sb, path, data); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Execute is like [Engine.Render] but writes output to w. Output already
// written when a fatal error occurs is not retracted.
func (e *Engine) Execute(ctx context.Context, w io.Writer, path string, data any) error {
	start := time.Now()

	m, err := e.Resolve(ctx, path)
	if err != nil {
		return err
	}

	if err := RenderTo(ctx, w, m, e.Environment(data), e.loader, e.opts...); err != nil {
		return err
	}

	e.cfg.logger.DebugContext(ctx, "rendered",
		slog.String("path", path),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// RenderText renders like [Engine.Render] but never fails: a fatal error is
// reported by returning its message in place of the output.
func (e *Engine) RenderText(ctx context.Context, path string, data any) string {
	out, err := e.Render(ctx, path, data)
	if err != nil {
		e.cfg.logger.ErrorContext(ctx, "render failed",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return err.Error()
	}

	return out
}

// ResolveString parses src and resolves its inheritance through the
// engine's loader.
func (e *Engine) ResolveString(ctx context.Context, src string) (*Module, error) {
	t, err := e.cfg.parse(ctx, src)
	if err != nil {
		return nil, err
	}

	return e.cfg.resolveTemplate(ctx, e.loader, "<string>", t)
}

// RenderString parses src and renders it against data. Extends and include
// tags in src are resolved through the engine's loader.
func (e *Engine) RenderString(ctx context.Context, src string, data any) (string, error) {
	m, err := e.ResolveString(ctx, src)
	if err != nil {
		return "", err
	}

	return Render(ctx, m, e.Environment(data), e.loader, e.opts...)
}
