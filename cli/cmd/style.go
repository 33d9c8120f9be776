package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// styler decorates command output when it is written to a terminal.
type styler struct{ color bool }

func newStyler(w io.Writer) styler {
	f, ok := w.(*os.File)
	if !ok {
		return styler{}
	}

	fd := f.Fd()

	return styler{color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}

	return style.Render(text)
}

func (s styler) ok(text string) string   { return s.render(okStyle, text) }
func (s styler) fail(text string) string { return s.render(failStyle, text) }
func (s styler) err(text string) string  { return s.render(errorStyle, text) }
func (s styler) hint(text string) string { return s.render(hintStyle, text) }
func (s styler) name(text string) string { return s.render(nameStyle, text) }
