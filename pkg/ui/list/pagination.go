package list

import (
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/x/ansi"

	"github.com/macropower/folio/pkg/ui/theme"
)

func newListPaginator(t *theme.Theme) paginator.Model {
	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = t.Selected.Render("•")
	p.InactiveDot = t.Subtle.Render("◦")
	p.KeyMap = paginator.KeyMap{}

	return p
}

func (m ListModel) paginationView() string {
	if m.paginator.TotalPages <= 1 {
		return "\n"
	}

	pagination := m.paginator.View()

	// If the dot pagination is wider than available space, use arabic numerals.
	if ansi.StringWidth(pagination) > m.cm.Width-listViewHorizontalPadding {
		p := m.paginator
		p.Type = paginator.Arabic
		pagination = p.View()
	}

	return m.cm.Theme.Subtle.
		PaddingLeft(2).
		PaddingBottom(1).
		Render(pagination)
}
