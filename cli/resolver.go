package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads YAML config files.
//
// Top-level keys name flags of any command, spelled with hyphens or
// underscores. A mapping keyed by a command name holds flags of that
// command, nested for subcommands, and takes precedence:
//
//	log-level: debug
//	dir: [~/templates]
//	render:
//	  sanitize: true
//	fmt:
//	  json:
//	    indent: 4
//
// Command-line flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, ErrInvalidConfig.Wrap(err)
	}

	return config(doc), nil
}

// config implements [kong.Resolver] for decoded YAML.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	var node *kong.Node
	if parent != nil {
		node = parent.Node()
	}

	for n := node; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		if v, ok := r.section(n).lookup(flag.Name); ok {
			return v, nil
		}
	}

	if v, ok := r.lookup(flag.Name); ok {
		return v, nil
	}

	return nil, nil
}

// section returns the mapping holding the flags of command n.
func (r config) section(n *kong.Node) config {
	if n == nil || n.Type != kong.CommandNode {
		return r
	}

	outer := r.section(n.Parent)
	if outer == nil {
		return nil
	}

	inner, _ := outer[n.Name].(map[string]any)

	return config(inner)
}

func (r config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := r[key]; ok {
			if _, isSection := v.(map[string]any); isSection {
				continue
			}

			return scalar(v), true
		}
	}

	return nil, false
}

// scalar converts numbers to strings for Kong's mappers.
func scalar(v any) any {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = scalar(e)
		}

		return out
	default:
		return v
	}
}
