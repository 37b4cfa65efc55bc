// Package theme derives the reader's terminal styles from chroma styles, so
// any chroma style name (or a custom one registered from configuration) can
// color the pages.
package theme

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const Ellipsis = "…"

var (
	ErrInvalidName    = errors.New("invalid theme name")
	ErrRegisterStyles = errors.New("register styles")

	Default = New("github")
	Night   = New("github-dark")
)

type Theme struct {
	// Page colors the text of the sub-pages, including the background.
	Page        lipgloss.Style
	Heading     lipgloss.Style
	Subtle      lipgloss.Style
	Selected    lipgloss.Style
	SelectedDim lipgloss.Style
	Help        lipgloss.Style
	Logo        lipgloss.Style
	ErrorTitle  lipgloss.Style

	StatusBar        lipgloss.Style
	StatusBarPos     lipgloss.Style
	StatusBarMessage lipgloss.Style
	StatusBarError   lipgloss.Style

	Name   string
	Chroma *chroma.Style
}

// New builds a theme from a chroma style name. "dark", "light" and "auto"
// (or empty) pick a github variant; unknown names fall back to chroma's
// fallback style.
func New(name string) *Theme {
	cs := lookup(resolve(name))

	fg := cs.fg(chroma.Background)
	bg := cs.bg(chroma.Background)
	accent := cs.fg(chroma.NameTag)

	return &Theme{
		Page:        lipgloss.NewStyle().Foreground(fg).Background(bg),
		Heading:     lipgloss.NewStyle().Foreground(accent).Background(bg).Bold(true),
		Subtle:      lipgloss.NewStyle().Foreground(cs.fg(chroma.Comment)),
		Selected:    lipgloss.NewStyle().Foreground(accent),
		SelectedDim: lipgloss.NewStyle().Foreground(cs.fgShade(chroma.NameTag, 0.3)),
		Help: lipgloss.NewStyle().
			Foreground(cs.fgShade(chroma.Background, 0.2)).
			Background(cs.bgShade(chroma.Background, 0.2)),
		Logo: lipgloss.NewStyle().
			Foreground(bg).
			Background(accent).
			Bold(true),
		ErrorTitle: lipgloss.NewStyle().
			Foreground(fg).
			Background(cs.fg(chroma.GenericDeleted)),

		StatusBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(cs.bgShade(chroma.Background, 0.1)),
		StatusBarPos: lipgloss.NewStyle().
			Foreground(fg).
			Background(cs.bgShade(chroma.Background, 0.15)),
		StatusBarMessage: lipgloss.NewStyle().
			Foreground(bg).
			Background(cs.fgShade(chroma.NameTag, 0.15)),
		StatusBarError: lipgloss.NewStyle().
			Foreground(fg).
			Background(cs.fg(chroma.GenericDeleted)),

		Name:   cs.style.Name,
		Chroma: cs.style,
	}
}

// Register adds a chroma style under name so [New] can find it.
func Register(name string, entries chroma.StyleEntries) error {
	if name == "" {
		return ErrInvalidName
	}

	s, err := chroma.NewStyle(name, entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterStyles, err)
	}

	styles.Register(s)

	return nil
}

type chromaStyle struct {
	style *chroma.Style
}

func lookup(name string) chromaStyle {
	s := styles.Get(name)
	if s == nil {
		s = styles.Fallback
	}

	return chromaStyle{style: s}
}

func (cs chromaStyle) fg(t chroma.TokenType) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(t).Colour.String()) //nolint:misspell // Chroma naming.
}

func (cs chromaStyle) bg(t chroma.TokenType) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(t).Background.String())
}

func (cs chromaStyle) fgShade(t chroma.TokenType, factor float64) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(t).Colour.BrightenOrDarken(factor).String()) //nolint:misspell // Chroma naming.
}

func (cs chromaStyle) bgShade(t chroma.TokenType, factor float64) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(t).Background.BrightenOrDarken(factor).String())
}

func resolve(name string) string {
	switch name {
	case "dark":
		return "github-dark"
	case "light":
		return "github"
	case "auto", "":
		return autoStyle()
	}

	return name
}

func autoStyle() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return "github"
	}

	if termenv.HasDarkBackground() {
		return "github-dark"
	}

	return "github"
}
