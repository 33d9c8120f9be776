package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/twine/log"
)

// ParseString parses template source without consulting the parse cache.
//
// Parse errors are terminal: the first malformed construct aborts the parse
// and the returned *[Error] carries its [Position] and a source snippet.
func ParseString(ctx context.Context, src string, opts ...Option) (Template, error) {
	cfg := makeConfig(opts...)

	return parse(ctx, src, cfg.logger)
}

func parse(ctx context.Context, src string, logger log.Logger) (Template, error) {
	p := &parser{
		ctx:    ctx,
		input:  src,
		line:   1,
		col:    1,
		logger: logger,
		names:  make(map[string]Position),
	}

	t, err := p.parseTemplate()
	if err != nil {
		return nil, WrapError(err).WithSource(src)
	}

	switch t := t.(type) {
	case *Extends:
		logger.TraceContext(ctx, "parse complete",
			slog.String("extends", t.Parent),
			slog.Int("blocks", len(t.Blocks)),
		)

	case *Module:
		logger.TraceContext(ctx, "parse complete",
			slog.Int("nodes", len(t.Children)),
			slog.Int("named_blocks", len(p.names)),
		)
	}

	return t, nil
}

// parser holds the scanning state for one source.
type parser struct {
	ctx    context.Context
	input  string
	pos    int
	line   int
	col    int
	logger log.Logger
	names  map[string]Position
}

type mark struct{ pos, line, col int }

func (p *parser) mark() mark { return mark{p.pos, p.line, p.col} }

func (p *parser) reset(m mark) { p.pos, p.line, p.col = m.pos, m.line, m.col }

func (p *parser) parseTemplate() (Template, error) {
	start := p.mark()

	p.skipWhitespace()

	if parent, ok := p.parseExtends(); ok {
		children, err := p.parseContents("", p.position())
		if err != nil {
			return nil, err
		}

		blocks := make(map[string]*Block)

		for _, c := range children {
			if b, ok := c.(*Block); ok {
				if name, ok := b.Name(); ok {
					blocks[name] = b
				}
			}
		}

		return &Extends{Parent: parent, Blocks: blocks}, nil
	}

	p.reset(start)

	children, err := p.parseContents("", p.position())
	if err != nil {
		return nil, err
	}

	return &Module{Children: children}, nil
}

// parseExtends consumes an extends tag at the current position. On failure
// the position is left undefined and the caller must reset.
func (p *parser) parseExtends() (string, bool) {
	if p.peekN(2) != "{%" {
		return "", false
	}

	body, err := p.scanTag()
	if err != nil {
		return "", false
	}

	keyword, rest := splitKeyword(body)
	if keyword != "extends" {
		return "", false
	}

	return unquote(rest)
}

// parseContents parses content until the end tag named closer is consumed,
// or until end of input when closer is empty. open locates the enclosing
// block for error reporting.
func (p *parser) parseContents(closer string, open Position) ([]Content, error) {
	var nodes []Content

	appendText := func(s string) {
		if s == "" {
			return
		}

		if n := len(nodes); n > 0 {
			if prev, ok := nodes[n-1].(Text); ok {
				nodes[n-1] = prev + Text(s)

				return
			}
		}

		nodes = append(nodes, Text(s))
	}

	for !p.eof() {
		pos := p.position()

		switch p.peekN(2) {
		case "{{":
			body, err := p.scanVar()
			if err != nil {
				return nil, err
			}

			if body == "parent()" {
				nodes = append(nodes, &ParentMarker{})
			} else {
				nodes = append(nodes, Var(body))
			}

		case "{%":
			body, err := p.scanTag()
			if err != nil {
				return nil, err
			}

			keyword, rest := splitKeyword(body)

			if closer != "" && keyword == closer {
				return nodes, nil
			}

			node, err := p.parseControl(body, keyword, rest, pos)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, node)

		default:
			appendText(p.scanText())
		}
	}

	if closer != "" {
		return nil, ErrUnterminatedBlock.WithPosition(open).
			With(slog.String("expected", closer))
	}

	return nodes, nil
}

func (p *parser) parseControl(
	body, keyword, rest string,
	pos Position,
) (Content, error) {
	if body == "parent()" {
		return &ParentMarker{}, nil
	}

	unrecognized := func() (Content, error) {
		p.logger.TraceContext(p.ctx, "unrecognized tag",
			slog.String("directive", body),
			slog.Any("pos", pos),
		)

		return &Block{Tag: Unrecognized{Directive: body}}, nil
	}

	switch keyword {
	case "block":
		name := rest
		if s, ok := unquote(rest); ok {
			name = s
		}

		if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
			return unrecognized()
		}

		if first, dup := p.names[name]; dup {
			return nil, ErrDuplicateBlock.WithPosition(pos).With(
				slog.String("name", name),
				slog.String("first", first.String()),
			)
		}

		p.names[name] = pos

		children, err := p.parseContents("endblock", pos)
		if err != nil {
			return nil, err
		}

		return &Block{Tag: Named{Name: name}, Children: children}, nil

	case "for":
		// A malformed header is a single unrecognized tag. Its body is
		// parsed as sibling content and the matching endfor becomes another
		// unrecognized tag.
		f := strings.Fields(rest)
		if len(f) != 3 || f[1] != "in" {
			return unrecognized()
		}

		children, err := p.parseContents("endfor", pos)
		if err != nil {
			return nil, err
		}

		return &Block{
			Tag:      Loop{Item: f[0], Collection: f[2]},
			Children: children,
		}, nil

	case "include":
		path, ok := unquote(rest)
		if !ok {
			return unrecognized()
		}

		return &Block{Tag: Include{Path: path}}, nil

	default:
		return unrecognized()
	}
}

// scanVar consumes "{{ ... }}" and returns the trimmed interior.
func (p *parser) scanVar() (string, error) {
	pos := p.position()

	end := strings.Index(p.input[p.pos+2:], "}}")
	if end < 0 {
		return "", ErrUnterminatedVariable.WithPosition(pos)
	}

	body := p.input[p.pos+2 : p.pos+2+end]
	p.advanceTo(p.pos + 2 + end + 2)

	return strings.TrimSpace(body), nil
}

// scanTag consumes "{% ... %}" and returns the trimmed interior.
// Quoted strings inside the tag may contain "%}". A quote left open to the
// end of input is treated as a literal character, and the tag then ends at
// its first "%}".
func (p *parser) scanTag() (string, error) {
	pos := p.position()

	p.advance()
	p.advance()

	start := p.pos
	m := p.mark()

	for !p.eof() {
		switch ch := p.peek(); {
		case ch == '"' || ch == '\'':
			quote := p.position()

			if !p.skipString(ch) {
				return p.scanTagPlain(m, quote)
			}

		case p.peekN(2) == "%}":
			body := p.input[start:p.pos]

			p.advance()
			p.advance()

			return strings.TrimSpace(body), nil

		default:
			p.advance()
		}
	}

	return "", ErrUnterminatedTag.WithPosition(pos)
}

// scanTagPlain rewinds to the tag interior at m and consumes through the
// first "%}", ignoring quotes.
func (p *parser) scanTagPlain(m mark, quote Position) (string, error) {
	end := strings.Index(p.input[m.pos:], "%}")
	if end < 0 {
		return "", ErrUnexpectedEndOfInput.WithPosition(quote).
			With(slog.String("context", "quoted string"))
	}

	p.reset(m)

	body := p.input[m.pos : m.pos+end]
	p.advanceTo(m.pos + end + 2)

	return strings.TrimSpace(body), nil
}

// scanText consumes literal text up to the next '{' after the current
// position. A leading '{' is always consumed.
func (p *parser) scanText() string {
	start := p.pos

	if p.peek() == '{' {
		p.advance()
	}

	for !p.eof() && p.peek() != '{' {
		p.advance()
	}

	return p.input[start:p.pos]
}

// skipString consumes a quoted string and reports whether it was closed.
func (p *parser) skipString(quote rune) bool {
	p.advance()

	for !p.eof() {
		ch := p.peek()
		p.advance()

		if ch == quote {
			return true
		}
	}

	return false
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return p.input[p.pos:]
	}

	return p.input[p.pos : p.pos+n]
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size

	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) advanceTo(offset int) {
	for p.pos < offset && !p.eof() {
		p.advance()
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

// splitKeyword splits a tag body into its first word and the trimmed rest.
func splitKeyword(body string) (string, string) {
	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		return body, ""
	}

	return body[:i], strings.TrimSpace(body[i:])
}

// unquote strips matching single or double quotes from s.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}

	if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
		inner := s[1 : len(s)-1]
		if strings.IndexByte(inner, q) >= 0 {
			return "", false
		}

		return inner, true
	}

	return "", false
}
