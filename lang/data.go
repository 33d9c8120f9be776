package lang

import (
	"bytes"
	"io"
	"maps"
	"strings"

	"github.com/goccy/go-yaml"
)

// DecodeData decodes a YAML or JSON document into a [Value].
// An empty document decodes to null.
func DecodeData(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, ErrReadInput.Wrap(err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Value{}, ErrInvalidData.Wrap(err)
	}

	return ValueOf(v), nil
}

// Merge combines two values. Maps are merged recursively with entries of
// over taking precedence; any other combination yields over, unless over
// is null.
func Merge(base, over Value) Value {
	if over.IsNull() {
		return base
	}

	if base.kind != KindMap || over.kind != KindMap {
		return over
	}

	dict := make(map[string]Value, len(base.dict)+len(over.dict))
	maps.Copy(dict, base.dict)

	for k, v := range over.dict {
		dict[k] = Merge(dict[k], v)
	}

	return Value{kind: KindMap, dict: dict}
}

// With returns a copy of v with the dotted path bound to x, creating
// intermediate maps as needed. Non-map values along the path are replaced.
func (v Value) With(path string, x Value) Value {
	head, rest, nested := strings.Cut(path, ".")

	if nested {
		child, _ := v.Field(head)
		x = child.With(rest, x)
	}

	dict := make(map[string]Value, len(v.dict)+1)
	if v.kind == KindMap {
		maps.Copy(dict, v.dict)
	}

	dict[head] = x

	return Value{kind: KindMap, dict: dict}
}
