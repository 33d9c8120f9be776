package lang

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Resolve loads the template at path and, if it extends another template,
// merges the block overrides of every level into the root [Module] at the
// top of the chain.
//
// The returned module has no inheritance left except the Parent links of
// overridden blocks, which parent markers follow at render time.
func Resolve(ctx context.Context, loader Loader, path string, opts ...Option) (*Module, error) {
	cfg := makeConfig(opts...)

	return cfg.resolve(ctx, loader, path)
}

// load fetches and parses one template.
func (c config) load(ctx context.Context, loader Loader, path string) (Template, error) {
	if loader == nil {
		loader = MapLoader(nil)
	}

	src, err := loader.Load(ctx, path)
	if err != nil {
		return nil, ErrLoad.Wrap(fmt.Errorf("%s: %w", path, err)).
			With(slog.String("path", path))
	}

	t, err := c.parse(ctx, src)
	if err != nil {
		return nil, ErrLoad.Wrap(fmt.Errorf("%s: %w", path, err)).
			With(slog.String("path", path))
	}

	return t, nil
}

func (c config) resolve(ctx context.Context, loader Loader, path string) (*Module, error) {
	t, err := c.load(ctx, loader, path)
	if err != nil {
		return nil, err
	}

	return c.resolveTemplate(ctx, loader, path, t)
}

// resolveTemplate resolves the inheritance chain of t, a template already
// parsed from the source named path.
func (c config) resolveTemplate(
	ctx context.Context,
	loader Loader,
	path string,
	t Template,
) (*Module, error) {
	var err error

	overrides := make(map[string]*Block)
	chain := []string{path}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch tt := t.(type) {
		case *Module:
			if len(overrides) > 0 {
				r := resolver{overrides: overrides, applied: make(map[string]bool)}
				r.apply(tt.Children)

				for _, name := range slices.Sorted(maps.Keys(overrides)) {
					if !r.applied[name] {
						c.logger.DebugContext(ctx, "override dropped",
							slog.String("block", name),
							slog.String("root", chain[len(chain)-1]),
						)
					}
				}
			}

			c.logger.TraceContext(ctx, "resolved",
				slog.Any("chain", chain),
				slog.Int("overrides", len(overrides)),
			)

			return tt, nil

		case *Extends:
			for _, name := range slices.Sorted(maps.Keys(tt.Blocks)) {
				b := tt.Blocks[name]

				if head, ok := overrides[name]; ok {
					attachParent(head, b)
				} else {
					overrides[name] = b
				}
			}

			if slices.Contains(chain, tt.Parent) {
				return nil, ErrExtendsCycle.
					Wrap(fmt.Errorf("%q extends %q", chain[len(chain)-1], tt.Parent)).
					With(slog.Any("chain", append(chain, tt.Parent)))
			}

			if len(chain) > c.maxDepth {
				return nil, ErrMaxDepthExceeded.
					With(slog.Int("max", c.maxDepth), slog.Any("chain", chain))
			}

			chain = append(chain, tt.Parent)

			if t, err = c.load(ctx, loader, tt.Parent); err != nil {
				return nil, err
			}

		default:
			return nil, ErrLoad.Wrap(fmt.Errorf("%s: unexpected template %T", path, t))
		}
	}
}

// attachParent appends ancestor to the override chain starting at b and
// binds the unset parent markers of the chain's former last element to it.
func attachParent(b, ancestor *Block) {
	last := b.Last()
	last.Parent = ancestor
	bindMarkers(last.Children, ancestor)
}

// bindMarkers binds unset parent markers among nodes to target. Nested named
// blocks own their markers and are skipped.
func bindMarkers(nodes []Content, target *Block) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ParentMarker:
			if n.Block == nil {
				n.Block = target
			}

		case *Block:
			if _, named := n.Name(); !named {
				bindMarkers(n.Children, target)
			}
		}
	}
}

type resolver struct {
	overrides map[string]*Block
	applied   map[string]bool
}

// apply replaces named blocks among nodes with their override chains.
// Blocks nested inside any link of a chain, or inside blocks that are not
// overridden, are visited as well.
func (r *resolver) apply(nodes []Content) {
	for i, n := range nodes {
		b, ok := n.(*Block)
		if !ok {
			continue
		}

		if name, ok := b.Name(); ok && !r.applied[name] {
			if head, ok := r.overrides[name]; ok {
				r.applied[name] = true

				attachParent(head, b)
				nodes[i] = head

				for _, link := range head.Chain() {
					r.apply(link.Children)
				}

				continue
			}
		}

		r.apply(b.Children)
	}
}
