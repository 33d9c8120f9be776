package lang

import (
	"encoding/json"
	"maps"
	"slices"
)

// ToMap converts a template into plain Go values suitable for encoding.
func ToMap(t Template) map[string]any {
	switch t := t.(type) {
	case *Module:
		return map[string]any{"module": contentsNative(t.Children)}

	case *Extends:
		blocks := make(map[string]any, len(t.Blocks))
		for name, b := range t.Blocks {
			blocks[name] = blockNative(b)
		}

		return map[string]any{"extends": t.Parent, "blocks": blocks}

	default:
		return nil
	}
}

// MarshalJSON implements [json.Marshaler].
func (m *Module) MarshalJSON() ([]byte, error) { return json.Marshal(ToMap(m)) }

// MarshalJSON implements [json.Marshaler].
func (x *Extends) MarshalJSON() ([]byte, error) { return json.Marshal(ToMap(x)) }

func contentsNative(nodes []Content) []any {
	out := make([]any, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			out = append(out, map[string]any{"text": string(n)})
		case Var:
			out = append(out, map[string]any{"var": string(n)})
		case *ParentMarker:
			out = append(out, map[string]any{"parent": n.Block != nil})
		case *Block:
			out = append(out, blockNative(n))
		}
	}

	return out
}

func blockNative(b *Block) map[string]any {
	m := make(map[string]any, 4)

	switch tag := b.Tag.(type) {
	case Named:
		m["block"] = tag.Name
	case Loop:
		m["for"] = tag.Item
		m["in"] = tag.Collection
	case Include:
		m["include"] = tag.Path
	case Unrecognized:
		m["unrecognized"] = tag.Directive
	}

	if len(b.Children) > 0 {
		m["children"] = contentsNative(b.Children)
	}

	if b.Parent != nil {
		m["overrides"] = blockNative(b.Parent)
	}

	return m
}

// sortedBlocks returns the blocks of an extends template ordered by name.
func sortedBlocks(x *Extends) []*Block {
	out := make([]*Block, 0, len(x.Blocks))
	for _, name := range slices.Sorted(maps.Keys(x.Blocks)) {
		out = append(out, x.Blocks[name])
	}

	return out
}
