package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xlab/treeprint"
)

// Formats lists the names accepted by [Format].
var Formats = []string{"tree", "ast", "json", "yaml"}

// Format writes t to w in the named format with the given indent width.
// An indent of zero selects the most compact form the format supports.
func Format(ctx context.Context, w io.Writer, t Template, format string, indent int) error {
	switch strings.ToLower(format) {
	case "tree":
		return FormatTree(ctx, w, t)
	case "ast":
		return FormatAST(ctx, w, t, indent)
	case "json":
		return FormatJSON(ctx, w, t, indent)
	case "yaml", "yml":
		return FormatYAML(ctx, w, t, indent)
	default:
		return ErrInvalidFormat.Wrap(fmt.Errorf("%q (expected one of %s)",
			format, strings.Join(Formats, ", ")))
	}
}

// FormatTree writes t as an indented tree.
func FormatTree(_ context.Context, w io.Writer, t Template) error {
	_, err := io.WriteString(w, Tree(t))

	return err
}

// FormatAST writes t as an indented node listing, one node per line.
// Indent values less than 1 default to 2.
func FormatAST(_ context.Context, w io.Writer, t Template, indent int) error {
	if indent < 1 {
		indent = 2
	}

	d := dumper{indent: strings.Repeat(" ", indent)}

	switch t := t.(type) {
	case *Module:
		d.line(0, "Module")
		d.contents(1, t.Children)

	case *Extends:
		d.line(0, "Extends "+strconv.Quote(t.Parent))

		for _, b := range sortedBlocks(t) {
			d.block(1, b)
		}
	}

	_, err := io.WriteString(w, d.sb.String())

	return err
}

type dumper struct {
	sb     strings.Builder
	indent string
}

func (d *dumper) line(depth int, s string) {
	d.sb.WriteString(strings.Repeat(d.indent, depth))
	d.sb.WriteString(s)
	d.sb.WriteByte('\n')
}

func (d *dumper) contents(depth int, nodes []Content) {
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			d.line(depth, "Text "+strconv.Quote(string(n)))
		case Var:
			d.line(depth, "Var "+string(n))
		case *ParentMarker:
			d.line(depth, "Parent")
		case *Block:
			d.block(depth, n)
		}
	}
}

func (d *dumper) block(depth int, b *Block) {
	for i, link := range b.Chain() {
		prefix := "Block"
		if i > 0 {
			prefix = "Overrides"
		}

		switch tag := link.Tag.(type) {
		case Named:
			d.line(depth, prefix+" "+tag.Name)
		case Loop:
			d.line(depth, "For "+tag.Item+" in "+tag.Collection)
		case Include:
			d.line(depth, "Include "+strconv.Quote(tag.Path))
		case Unrecognized:
			d.line(depth, "Unrecognized "+strconv.Quote(tag.Directive))
		}

		d.contents(depth+1, link.Children)
		depth++
	}
}

// FormatJSON writes t as JSON.
func FormatJSON(_ context.Context, w io.Writer, t Template, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToMap(t), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToMap(t))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes t as YAML.
func FormatYAML(_ context.Context, w io.Writer, t Template, indent int) error {
	opts := []yaml.EncodeOption{yaml.Flow(indent <= 0)}
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	}

	data, err := yaml.MarshalWithOptions(ToMap(t), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Tree returns a human-readable outline of t.
func Tree(t Template) string {
	var root treeprint.Tree

	switch t := t.(type) {
	case *Module:
		root = treeprint.NewWithRoot("module")
		treeContents(root, t.Children)

	case *Extends:
		root = treeprint.NewWithRoot("extends " + strconv.Quote(t.Parent))
		for _, b := range sortedBlocks(t) {
			treeBlock(root, b)
		}

	default:
		return ""
	}

	return root.String()
}

func treeContents(branch treeprint.Tree, nodes []Content) {
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			branch.AddNode("text " + strconv.Quote(string(n)))
		case Var:
			branch.AddNode("var " + string(n))
		case *ParentMarker:
			if n.Block == nil {
				branch.AddNode("parent()")
			} else {
				name, _ := n.Block.Name()
				branch.AddNode("parent() -> " + name)
			}
		case *Block:
			treeBlock(branch, n)
		}
	}
}

func treeBlock(branch treeprint.Tree, b *Block) {
	var label string

	switch tag := b.Tag.(type) {
	case Named:
		label = "block " + tag.Name
	case Loop:
		label = "for " + tag.Item + " in " + tag.Collection
	case Include:
		label = "include " + strconv.Quote(tag.Path)
	case Unrecognized:
		label = "unrecognized " + strconv.Quote(tag.Directive)
	}

	if depth := len(b.Chain()); depth > 1 {
		label += " (" + strconv.Itoa(depth-1) + " overridden)"
	}

	sub := branch.AddBranch(label)
	treeContents(sub, b.Children)
}
