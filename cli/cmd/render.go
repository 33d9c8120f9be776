package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/natefinch/atomic"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

// Render resolves a template and renders it against a data context.
type Render struct {
	DataFlags `embed:""`

	Template     string `arg:""                 help:"Template to render, or '-' to read template text from stdin." name:"template"`
	Output       string `                       help:"Write output to FILE atomically instead of standard output."   placeholder:"FILE" short:"o" type:"path"`
	Sanitize     bool   `                       help:"Sanitize rendered HTML with a user-generated-content policy."`
	InlineErrors bool   `                       help:"Render fatal errors as output text instead of failing."`
	MaxDepth     int    `default:"${maxDepth}"  help:"Maximum inheritance and include depth."`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
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

	out, err := r.render(ctx, newEngine(src.loader(), r.MaxDepth), data)

	failed := err != nil
	if failed {
		if !r.InlineErrors {
			return err
		}

		log.ErrorContext(ctx, "render failed",
			slog.String("template", r.Template),
			slog.Any("error", err),
		)

		out = err.Error()
	}

	if r.Sanitize {
		out = bluemonday.UGCPolicy().Sanitize(out)
	}

	return r.write(ctx, out, failed)
}

func (r *Render) render(ctx context.Context, e *lang.Engine, data lang.Value) (string, error) {
	if r.Template != stdinSource {
		return e.Render(ctx, r.Template, data)
	}

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err)
	}

	return e.RenderString(ctx, string(src), data)
}

func (r *Render) write(ctx context.Context, out string, failed bool) error {
	if r.Output != "" {
		if err := atomic.WriteFile(r.Output, strings.NewReader(out)); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
		}

		log.DebugContext(ctx, "wrote output",
			slog.String("file", r.Output),
			slog.Int("size", len(out)),
		)

		return nil
	}

	w := outputFrom(ctx)
	st := newStyler(w)

	text := out
	if failed {
		text = st.err(out)
	}

	if st.color && !strings.HasSuffix(out, "\n") {
		text += "\n"
	}

	if _, err := io.WriteString(w, text); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
