package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Sentinel errors. Test with [errors.Is].
var (
	ErrUnterminatedBlock    = NewError("unterminated block")
	ErrUnterminatedVariable = NewError("unterminated variable")
	ErrUnterminatedTag      = NewError("unterminated tag")
	ErrUnexpectedEndOfInput = NewError("unexpected end of input")
	ErrDuplicateBlock       = NewError("duplicate block name")
	ErrReadInput            = NewError("failed to read input")
	ErrLoad                 = NewError("failed to load template")
	ErrTemplateNotFound     = NewError("template not found")
	ErrExtendsCycle         = NewError("inheritance cycle")
	ErrMaxDepthExceeded     = NewError("maximum depth exceeded")
	ErrNotIterable          = NewError("value is not iterable")
	ErrInvalidData          = NewError("invalid data")
	ErrInvalidFormat        = NewError("invalid format")
)

// Position identifies a location in template source.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether the position was set.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// LogValue implements [slog.LogValuer].
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}

// Error is an error with optional cause, source position, and structured
// attributes for logging. Methods never modify the receiver, so sentinel
// values can be refined freely.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	pos   Position
	src   string
	base  *Error
}

// NewError creates an Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an *Error, returning it unchanged if it
// already is one.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error formats the message as "<msg>: <cause>", prefixed by the source
// position when one is known.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is e or the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for x := e; x != nil; x = x.base {
		if x == t {
			return true
		}
	}

	return false
}

// Position returns the source position attached with [Error.WithPosition].
func (e *Error) Position() Position { return e.pos }

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.Any("pos", e.pos))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.derive()
	c.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.derive()
	c.pos = pos

	return c
}

// WithSource returns a copy of e that renders a snippet of src pointing at
// its position in [Error.Snippet].
func (e *Error) WithSource(src string) *Error {
	c := e.derive()
	c.src = src

	return c
}

// Snippet returns the source line containing the error position followed by
// a caret under the offending column, or "" if either is unknown.
func (e *Error) Snippet() string {
	if e.src == "" || !e.pos.IsValid() {
		return ""
	}

	lines := strings.Split(e.src, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.pos.Line)

	var sb strings.Builder

	sb.WriteString("  " + num + " | " + lines[e.pos.Line-1] + "\n")
	sb.WriteString(strings.Repeat(" ", len(num)+5+max(e.pos.Column-1, 0)))
	sb.WriteString("^\n")

	return sb.String()
}

func (e *Error) derive() *Error {
	c := *e
	c.base = e

	return &c
}
