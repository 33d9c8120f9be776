package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals
var (
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes colorized records, either as space-separated
// key=value pairs or as an indented object with one field per line.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	format Format
	attrs  []slog.Attr
	group  string
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, format: format}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.prefix(name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	fields = append(fields, h.qualify(own)...)

	var buf bytes.Buffer

	switch h.format {
	case FormatJSON:
		buf.WriteString("{\n")

		n := 0

		for _, a := range fields {
			if a.Equal(slog.Attr{}) {
				continue
			}

			if n > 0 {
				buf.WriteString(",\n")
			}

			n++

			buf.WriteString("  ")
			buf.WriteString(keyStyle.Render(a.Key))
			buf.WriteString(": ")
			buf.WriteString(styleValue(a.Value))
		}

		buf.WriteString("\n}\n")

	default:
		for _, a := range fields {
			if a.Equal(slog.Attr{}) {
				continue
			}

			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(keyStyle.Render(a.Key))
			buf.WriteByte('=')
			buf.WriteString(styleValue(a.Value))
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) prefix(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}

// qualify flattens group values and applies the handler's group prefix and
// ReplaceAttr function.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	var walk func(prefix string, as []slog.Attr)

	walk = func(prefix string, as []slog.Attr) {
		for _, a := range as {
			a.Value = a.Value.Resolve()

			key := a.Key
			if prefix != "" {
				key = prefix + "." + key
			}

			if a.Value.Kind() == slog.KindGroup {
				walk(key, a.Value.Group())

				continue
			}

			a.Key = key
			out = append(out, h.replace(a))
		}
	}

	walk(h.group, attrs)

	return out
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func styleValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numberStyle.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return durationStyle.Render(v.Duration().String())

	case slog.KindTime:
		return timeStyle.Render(v.Time().String())

	case slog.KindAny:
		if l, ok := v.Any().(slog.Level); ok {
			name := strings.ToUpper(Level(l).String())
			if s, ok := levelStyle[Level(l)]; ok {
				return s.Render(name)
			}

			return name
		}

		if err, ok := v.Any().(error); ok {
			return falseStyle.Render(err.Error())
		}

		return stringStyle.Render(fmt.Sprint(v.Any()))

	default:
		return stringStyle.Render(v.String())
	}
}
