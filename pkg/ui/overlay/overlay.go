// Package overlay draws a box over the middle of a rendered view, e.g. to
// show an error without leaving the page.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/cellbuf"

	"github.com/macropower/folio/pkg/ui/theme"
)

const (
	defaultMinOverlayWidth = 16
	// Rows kept free above and below the box.
	verticalMargin = 2
)

type Overlay struct {
	theme *theme.Theme

	width, height int

	// Minimum width of the overlay.
	minWidth int
}

type OverlayOpt func(*Overlay)

// WithMinWidth sets the minimum width of the overlay (in cells).
func WithMinWidth(minWidth int) OverlayOpt {
	return func(o *Overlay) {
		o.minWidth = minWidth
	}
}

func New(t *theme.Theme, opts ...OverlayOpt) *Overlay {
	o := &Overlay{
		theme:    t,
		minWidth: defaultMinOverlayWidth,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// SetTheme is used when switching between day and night.
func (o *Overlay) SetTheme(t *theme.Theme) {
	o.theme = t
}

// SetSize sets the size of the view on which the overlay is placed.
func (o *Overlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Place draws fg, wrapped to a fraction of the view width and framed by
// style, centered on top of bg. Content taller than the view is cut with a
// hint.
func (o *Overlay) Place(bg, fg string, widthFraction float64, style lipgloss.Style) string {
	overlayWidth := clamp(int(float64(o.width)*widthFraction), o.minWidth, o.width)
	textWidth := max(1, overlayWidth-style.GetHorizontalFrameSize())

	fgLines, _ := getLines(cellbuf.Wrap(fg, textWidth, " /-"))

	maxHeight := o.height - 2*verticalMargin - style.GetVerticalFrameSize()
	if maxHeight < 1 {
		fgLines = nil
	} else if len(fgLines) > maxHeight {
		hint := ansi.Truncate("message truncated; see the log", textWidth, theme.Ellipsis)
		fgLines = append(fgLines[:max(0, maxHeight-2)], "", o.theme.Subtle.Render(hint))
	}

	box := style.Width(overlayWidth).Render(strings.Join(fgLines, "\n"))

	boxLines, boxWidth := getLines(box)
	bgLines, bgWidth := getLines(bg)

	x := clamp(bgWidth-boxWidth, 0, bgWidth) / 2
	y := clamp(len(bgLines)-len(boxLines), 0, len(bgLines)) / 2

	var b strings.Builder

	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}

		if i < y || i >= y+len(boxLines) {
			b.WriteString(bgLine)
			continue
		}

		left := ansi.Truncate(bgLine, x, "")
		b.WriteString(left)
		b.WriteString(strings.Repeat(" ", x-ansi.StringWidth(left)))

		boxLine := boxLines[i-y]
		b.WriteString(boxLine)

		b.WriteString(ansi.TruncateLeft(bgLine, x+ansi.StringWidth(boxLine), ""))
	}

	return b.String()
}

func clamp(v, lower, upper int) int {
	return min(max(v, lower), upper)
}

// Split a string into lines, additionally returning the size of the widest line.
func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0

	for _, l := range lines {
		widest = max(widest, ansi.StringWidth(l))
	}

	return lines, widest
}
