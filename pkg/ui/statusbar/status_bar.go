package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/macropower/folio/pkg/ui/theme"
	"github.com/macropower/folio/pkg/version"
)

const helpText = " ? Help "

type Style int

const (
	StyleNormal Style = iota
	StyleSuccess
	StyleError
)

// Renderer renders the one line status bar below the pages.
type Renderer struct {
	theme   *theme.Theme
	message string
	width   int
	style   Style
}

type Opt func(r *Renderer)

// WithMessage replaces the note with a status message.
func WithMessage(message string, style Style) Opt {
	return func(r *Renderer) {
		r.message = message
		r.style = style
	}
}

func NewRenderer(t *theme.Theme, width int, opts ...Opt) *Renderer {
	r := &Renderer{theme: t, width: max(0, width)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render lays out the logo, the note (or status message), the reading
// position and the help hint across the full width.
func (r *Renderer) Render(note, position string) string {
	logo := r.theme.Logo.Render(fmt.Sprintf(" folio %s ", version.GetVersion()))
	pos := r.noteStyle(r.theme.StatusBarPos).Render(" " + position + " ")
	help := r.noteStyle(r.theme.StatusBarPos).Render(helpText)

	if r.message != "" {
		note = r.message
	}

	note = strings.TrimSpace(strings.ReplaceAll(note, "\n", " "))

	avail := max(0, r.width-ansi.StringWidth(logo)-ansi.StringWidth(pos)-ansi.StringWidth(help))
	note = ansi.Truncate(" "+note+" ", avail, theme.Ellipsis)
	note += strings.Repeat(" ", avail-ansi.StringWidth(note))

	bar := logo + r.noteStyle(r.theme.StatusBar).Render(note) + pos + help

	return ansi.Truncate(bar, r.width, "")
}

func (r *Renderer) noteStyle(base lipgloss.Style) lipgloss.Style {
	switch r.style {
	case StyleSuccess:
		return r.theme.StatusBarMessage
	case StyleError:
		return r.theme.StatusBarError
	default:
		return base
	}
}
