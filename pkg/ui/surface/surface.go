// Package surface lays out a section as a horizontal strip of pages and
// renders the window the pager has scrolled to.
package surface

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/ui/theme"
)

// minMarginWidth is the page width from which pages get side margins.
const minMarginWidth = 24

// Surface holds the laid out pages of one section. One cell is one pixel
// for the pager.
type Surface struct {
	theme   *theme.Theme
	section book.Section

	// plain holds the unstyled lines of each page, styled the rendered rows.
	plain  [][]string
	styled [][]string

	width  int
	height int
	offset int
}

func New(t *theme.Theme) *Surface {
	return &Surface{theme: t}
}

// SetTheme restyles the pages, e.g. when night mode is toggled.
func (s *Surface) SetTheme(t *theme.Theme) {
	s.theme = t
	s.layout()
}

// SetSize sets the size of one page in cells.
func (s *Surface) SetSize(width, height int) {
	s.width = max(0, width)
	s.height = max(0, height)
	s.layout()
}

func (s *Surface) SetContent(section book.Section) {
	s.section = section
	s.offset = 0
	s.layout()
}

func (s *Surface) Width() int { return s.width }

func (s *Surface) Height() int { return s.height }

func (s *Surface) PageCount() int { return len(s.plain) }

// PixelWidthOfPages returns the width of count pages in cells.
func (s *Surface) PixelWidthOfPages(count int) int {
	return count * s.width
}

// ScrollTo moves the visible window to x cells into the strip. Pages only
// scroll horizontally, so y is ignored.
func (s *Surface) ScrollTo(x, _ int) {
	limit := s.PixelWidthOfPages(max(s.PageCount()-1, 0))
	s.offset = min(max(x, 0), limit)
}

// Offset returns the horizontal scroll offset in cells.
func (s *Surface) Offset() int { return s.offset }

// PageText returns the plain text of page i.
func (s *Surface) PageText(i int) string {
	if i < 0 || i >= len(s.plain) {
		return ""
	}

	lines := make([]string, 0, len(s.plain[i]))
	for _, l := range s.plain[i] {
		lines = append(lines, strings.TrimRight(l, " "))
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// View renders the visible window, which spans at most two adjacent pages.
func (s *Surface) View() string {
	if s.width == 0 || s.height == 0 {
		return ""
	}

	blank := s.theme.Page.Render(strings.Repeat(" ", s.width))

	if len(s.styled) == 0 {
		rows := make([]string, s.height)
		for i := range rows {
			rows[i] = blank
		}

		return strings.Join(rows, "\n")
	}

	first := s.offset / s.width
	shift := s.offset - first*s.width

	rows := make([]string, s.height)
	for y := range rows {
		row := s.styled[first][y]
		if shift > 0 && first+1 < len(s.styled) {
			row += s.styled[first+1][y]
		}

		rows[y] = ansi.Cut(row, shift, shift+s.width)
	}

	return strings.Join(rows, "\n")
}

func (s *Surface) layout() {
	s.plain, s.styled = nil, nil

	if s.width == 0 || s.height == 0 || s.theme == nil {
		s.offset = 0
		return
	}

	margin := 0
	if s.width >= minMarginWidth {
		margin = 2
	}

	textWidth := s.width - 2*margin

	type line struct {
		text    string
		heading bool
	}

	var lines []line

	if title := strings.TrimSpace(s.section.Title); title != "" {
		for _, l := range wrapText(title, textWidth) {
			lines = append(lines, line{text: l, heading: true})
		}

		lines = append(lines, line{})
	}

	for i, p := range s.section.Paragraphs {
		if i > 0 {
			lines = append(lines, line{})
		}

		for _, l := range wrapText(p, textWidth) {
			lines = append(lines, line{text: l})
		}
	}

	indent := strings.Repeat(" ", margin)

	for start := 0; start < len(lines); start += s.height {
		// A page never starts with the blank line between paragraphs.
		for start < len(lines) && lines[start].text == "" && !lines[start].heading {
			start++
		}

		if start >= len(lines) {
			break
		}

		end := min(start+s.height, len(lines))

		plain := make([]string, s.height)
		styled := make([]string, s.height)

		for y := range s.height {
			var l line
			if start+y < end {
				l = lines[start+y]
			}

			text := padding.String(indent+l.text, uint(s.width)) //nolint:gosec // Width is non-negative.
			plain[y] = text

			if l.heading {
				styled[y] = s.theme.Page.Render(indent) +
					s.theme.Heading.Render(l.text) +
					s.theme.Page.Render(strings.Repeat(" ", s.width-margin-ansi.StringWidth(l.text)))
			} else {
				styled[y] = s.theme.Page.Render(text)
			}
		}

		s.plain = append(s.plain, plain)
		s.styled = append(s.styled, styled)
	}

	s.ScrollTo(s.offset, 0)
}

// wrapText word wraps text to width, hard wrapping words that are longer
// than a line.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	wrapped := wrap.String(wordwrap.String(text, width), width)

	return strings.Split(wrapped, "\n")
}
