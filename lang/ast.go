package lang

import "maps"

// Template is the result of parsing one source file: either a [*Module]
// or an [*Extends].
type Template interface {
	template()
}

// Module is a standalone template rendered directly.
type Module struct {
	Children []Content
}

// Extends is a template declaring a parent. Only its top-level named blocks
// are kept; they override same-named blocks of the parent.
type Extends struct {
	Parent string
	Blocks map[string]*Block
}

func (*Module) template()  {}
func (*Extends) template() {}

// Content is one node of template content: [Text], [Var], [*Block], or
// [*ParentMarker].
type Content interface {
	content()
}

// Text is literal output.
type Text string

// Var is a variable interpolation holding a dotted lookup path.
type Var string

// ParentMarker renders the content a block overrides.
// Block is nil until inheritance resolution binds the marker.
type ParentMarker struct {
	Block *Block
}

// Block is a control block. Parent links a named block to the block it
// overrides; chains are built during inheritance resolution.
type Block struct {
	Tag      BlockTag
	Children []Content
	Parent   *Block
}

func (Text) content()          {}
func (Var) content()           {}
func (*ParentMarker) content() {}
func (*Block) content()        {}

// BlockTag selects the behavior of a [Block]: [Named], [Loop], [Include],
// or [Unrecognized].
type BlockTag interface {
	blockTag()
}

// Named is an overridable region.
type Named struct {
	Name string
}

// Loop repeats its children once per element of Collection, binding each
// element to Item.
type Loop struct {
	Item       string
	Collection string
}

// Include renders another template in place.
type Include struct {
	Path string
}

// Unrecognized is any tag the parser does not understand. It renders
// nothing.
type Unrecognized struct {
	Directive string
}

func (Named) blockTag()        {}
func (Loop) blockTag()         {}
func (Include) blockTag()      {}
func (Unrecognized) blockTag() {}

// Name returns the name of a named block.
func (b *Block) Name() (string, bool) {
	n, ok := b.Tag.(Named)

	return n.Name, ok
}

// Last returns the final block of the override chain starting at b.
func (b *Block) Last() *Block {
	for b.Parent != nil {
		b = b.Parent
	}

	return b
}

// Chain returns every block of the override chain starting at b.
func (b *Block) Chain() []*Block {
	var c []*Block
	for ; b != nil; b = b.Parent {
		c = append(c, b)
	}

	return c
}

// Clone returns a deep copy of t. Parent links and parent markers in the
// copy refer to copied blocks.
func Clone(t Template) Template {
	c := cloner{}

	switch t := t.(type) {
	case *Module:
		if t == nil {
			return (*Module)(nil)
		}

		return &Module{Children: c.contents(t.Children)}

	case *Extends:
		if t == nil {
			return (*Extends)(nil)
		}

		blocks := make(map[string]*Block, len(t.Blocks))
		for name, b := range maps.All(t.Blocks) {
			blocks[name] = c.block(b)
		}

		return &Extends{Parent: t.Parent, Blocks: blocks}

	default:
		return t
	}
}

type cloner map[*Block]*Block

func (c cloner) block(b *Block) *Block {
	if b == nil {
		return nil
	}

	if d, ok := c[b]; ok {
		return d
	}

	d := &Block{Tag: b.Tag}
	c[b] = d

	d.Children = c.contents(b.Children)
	d.Parent = c.block(b.Parent)

	return d
}

func (c cloner) contents(nodes []Content) []Content {
	if nodes == nil {
		return nil
	}

	out := make([]Content, len(nodes))

	for i, n := range nodes {
		switch n := n.(type) {
		case *Block:
			out[i] = c.block(n)
		case *ParentMarker:
			out[i] = &ParentMarker{Block: c.block(n.Block)}
		default:
			out[i] = n
		}
	}

	return out
}
