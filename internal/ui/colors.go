package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the palette used by the command line output.
var Styles = NewPalette("#1DB954", "#04B575", "#FF5F5F", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	box   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// Box draws a rounded border around s.
func (p *Palette) Box(s string) string { return p.box.Render(s) }

// Banner renders the heading printed before a transfer.
func (p *Palette) Banner(title, subtitle string) string {
	return p.Box(fmt.Sprintf("%s\n%s", p.Title(title), p.Help(subtitle)))
}

// Field renders an aligned "label: value" line.
func (p *Palette) Field(label string, value any) string {
	return fmt.Sprintf("%-14s %v", label+":", value)
}
