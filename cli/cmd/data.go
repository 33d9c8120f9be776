package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

// DataFlags assembles the data context of a render from files and assignments.
type DataFlags struct {
	Data []string `help:"YAML or JSON data file merged into the context, or '-' for stdin. Later files take precedence." placeholder:"FILE" short:"D"`
	Set  []string `help:"Bind NAME (a dotted path) to the value of expression EXPR, evaluated against the data loaded so far." placeholder:"NAME=EXPR" short:"s"`
}

// Value decodes and merges the data files in order, then applies each
// assignment in order.
func (d *DataFlags) Value(ctx context.Context) (lang.Value, error) {
	files, err := uniqueInputs(d.Data)
	if err != nil {
		return lang.Value{}, err
	}

	var v lang.Value

	for _, file := range files {
		next, err := decodeFile(file)
		if err != nil {
			return lang.Value{}, err
		}

		v = lang.Merge(v, next)
	}

	for _, set := range d.Set {
		if v, err = assign(ctx, v, set); err != nil {
			return lang.Value{}, err
		}
	}

	return v, nil
}

func decodeFile(path string) (lang.Value, error) {
	r, err := openInput(path)
	if err != nil {
		return lang.Value{}, ErrReadData.Wrap(err).With(slog.String("file", path))
	}
	defer r.Close()

	v, err := lang.DecodeData(r)
	if err != nil {
		return lang.Value{}, ErrReadData.Wrap(err).With(slog.String("file", path))
	}

	return v, nil
}

// assign evaluates the expression of a NAME=EXPR assignment with the
// native form of v as its environment and binds the result at NAME.
func assign(ctx context.Context, v lang.Value, set string) (lang.Value, error) {
	name, src, ok := strings.Cut(set, "=")
	name, src = strings.TrimSpace(name), strings.TrimSpace(src)

	if !ok || name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return lang.Value{}, ErrInvalidAssignment.With(slog.String("set", set))
	}

	env, _ := v.Native().(map[string]any)
	if env == nil {
		env = map[string]any{}
	}

	out, err := expr.Eval(src, env)
	if err != nil {
		return lang.Value{}, ErrEvalExpr.Wrap(err).With(
			slog.String("name", name),
			slog.String("expr", src),
		)
	}

	log.TraceContext(ctx, "assigned data value",
		slog.String("name", name),
		slog.Any("value", out),
	)

	return v.With(name, lang.ValueOf(out)), nil
}
