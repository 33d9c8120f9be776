package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// MissingParent is rendered in place of a parent marker that no overridden
// block was bound to.
const MissingParent = "MISSING PARENT BLOCK"

// Render renders a resolved module against env and returns the output.
// Includes are loaded through loader, which may be nil if the module has
// none.
//
// Unresolved variables render as empty text and include failures render
// their error message inline. A loop over a value that is not a list aborts
// the render with [ErrNotIterable].
func Render(
	ctx context.Context,
	m *Module,
	env *Environment,
	loader Loader,
	opts ...Option,
) (string, error) {
	var sb strings.Builder

	err := RenderTo(ctx, &sb, m, env, loader, opts...)

	return sb.String(), err
}

// RenderTo is like [Render] but writes output to w as it is produced.
func RenderTo(
	ctx context.Context,
	w io.Writer,
	m *Module,
	env *Environment,
	loader Loader,
	opts ...Option,
) error {
	if m == nil {
		return nil
	}

	if env == nil {
		env = NewEnvironment(Value{})
	}

	r := &renderer{
		ctx:    ctx,
		cfg:    makeConfig(opts...),
		loader: loader,
		env:    env,
		w:      w,
	}

	return r.contents(m.Children)
}

type renderer struct {
	ctx    context.Context
	cfg    config
	loader Loader
	env    *Environment
	w      io.Writer
	depth  int
}

func (r *renderer) write(s string) error {
	if s == "" {
		return nil
	}

	_, err := io.WriteString(r.w, s)

	return err
}

func (r *renderer) contents(nodes []Content) error {
	for _, n := range nodes {
		if err := r.content(n); err != nil {
			return err
		}
	}

	return nil
}

func (r *renderer) content(n Content) error {
	switch n := n.(type) {
	case Text:
		return r.write(string(n))

	case Var:
		s, _ := r.env.Get(string(n))

		return r.write(s)

	case *ParentMarker:
		if n.Block == nil {
			return r.write(MissingParent)
		}

		return r.block(n.Block)

	case *Block:
		return r.block(n)

	default:
		return nil
	}
}

func (r *renderer) block(b *Block) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	r.env.Push(Scope{})
	defer r.env.Pop()

	switch tag := b.Tag.(type) {
	case Named:
		return r.contents(b.Children)

	case Loop:
		coll, found := r.env.GetValue(tag.Collection)

		items, ok := coll.Items()
		if !ok {
			kind := "undefined"
			if found {
				kind = coll.Kind().String()
			}

			return ErrNotIterable.
				Wrap(fmt.Errorf("%q is %s", tag.Collection, kind)).
				With(slog.String("collection", tag.Collection))
		}

		for _, item := range items {
			r.env.Set(tag.Item, item)

			if err := r.contents(b.Children); err != nil {
				return err
			}
		}

		return nil

	case Include:
		return r.include(tag.Path)

	default:
		return nil
	}
}

func (r *renderer) include(path string) error {
	if r.depth >= r.cfg.maxDepth {
		return r.inline(path, ErrMaxDepthExceeded.
			Wrap(fmt.Errorf("include %q", path)).
			With(slog.Int("max", r.cfg.maxDepth)))
	}

	t, err := r.cfg.load(r.ctx, r.loader, path)
	if err != nil {
		return r.inline(path, err)
	}

	switch t := t.(type) {
	case *Module:
		r.depth++
		defer func() { r.depth-- }()

		return r.contents(t.Children)

	case *Extends:
		return r.write(fmt.Sprintf("[cannot include %q: it extends %q]", path, t.Parent))

	default:
		return nil
	}
}

// inline writes a failed include's error message as output.
func (r *renderer) inline(path string, err error) error {
	r.cfg.logger.WarnContext(r.ctx, "include failed",
		slog.String("path", path),
		slog.Any("error", err),
	)

	return r.write(err.Error())
}
