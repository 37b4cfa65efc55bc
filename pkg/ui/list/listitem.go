package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/macropower/folio/pkg/ui/theme"
)

// listItemDisplayState represents the visual state of a list item.
type listItemDisplayState struct {
	gutter string
	title  string
	desc   string
}

func (m ListModel) itemsView() string {
	items := m.visibleItems()

	var b strings.Builder

	if len(items) == 0 {
		if m.FilterState == Filtering {
			b.WriteString("  " + m.cm.Theme.Subtle.Render("No results."))
		} else {
			b.WriteString("  " + m.cm.Theme.Subtle.Render("Nothing to see here."))
		}

		return indent(b.String(), listIndent)
	}

	start, end := m.paginator.GetSliceBounds(len(items))
	pageItems := items[start:end]

	for i, it := range pageItems {
		m.listItemView(&b, i, it)

		if i != len(pageItems)-1 {
			b.WriteString("\n")
			if !m.compact {
				b.WriteString("\n")
			}
		}
	}

	return indent(b.String(), listIndent)
}

func (m ListModel) listItemView(b *strings.Builder, index int, it Item) {
	var (
		t = m.cm.Theme

		truncateTo = max(0, m.cm.Width-listViewHorizontalPadding*2)

		title = ansi.Truncate(it.Title, truncateTo, theme.Ellipsis)
		desc  = ansi.Truncate(it.Desc, truncateTo, theme.Ellipsis)

		isSelected         = index == m.cursor
		isFiltering        = m.FilterState == Filtering
		singleFilteredItem = isFiltering && len(m.visibleItems()) == 1
		filterValue        = m.filterInput.Value()

		// While typing a filter nothing is highlighted, unless one item is
		// left, since pressing enter will open it.
		shouldHighlight = (isSelected && !isFiltering) || singleFilteredItem
	)

	var state listItemDisplayState
	if shouldHighlight {
		state = listItemDisplayState{
			gutter: t.Selected.Render("│"),
			title:  styleFilteredText(title, filterValue, t.Selected, t.Selected.Underline(true)),
			desc:   styleFilteredText(desc, filterValue, t.SelectedDim, t.SelectedDim.Underline(true)),
		}
	} else {
		plain := lipgloss.NewStyle()
		state = listItemDisplayState{
			gutter: " ",
			title:  styleFilteredText(title, filterValue, plain, plain.Underline(true)),
			desc:   styleFilteredText(desc, filterValue, t.Subtle, t.Subtle.Underline(true)),
		}

		if isFiltering && filterValue == "" {
			state.title = t.Subtle.Render(title)
		}
	}

	if m.compact {
		fmt.Fprintf(b, "%s %s", state.gutter, state.title)
		if desc != "" {
			fmt.Fprintf(b, " %s", state.desc)
		}

		return
	}

	fmt.Fprintf(b, "%s %s\n", state.gutter, state.title)
	fmt.Fprintf(b, "%s %s", state.gutter, state.desc)
}

// styleFilteredText underlines the runes of haystack that match needles.
func styleFilteredText(haystack, needles string, defaultStyle, matchedStyle lipgloss.Style) string {
	if needles == "" {
		return defaultStyle.Render(haystack)
	}

	normalized := normalizeOrKeep(haystack)

	matches := fuzzy.Find(normalizeOrKeep(needles), []string{normalized})
	if len(matches) == 0 || normalized != haystack {
		// Match indexes refer to the normalized text.
		return defaultStyle.Render(haystack)
	}

	matched := map[int]bool{}
	for _, i := range matches[0].MatchedIndexes {
		matched[i] = true
	}

	b := strings.Builder{}
	for i, r := range haystack {
		if matched[i] {
			b.WriteString(matchedStyle.Render(string(r)))
		} else {
			b.WriteString(defaultStyle.Render(string(r)))
		}
	}

	return b.String()
}
