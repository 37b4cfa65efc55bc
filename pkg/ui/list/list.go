// Package list is a paginated, fuzzy filterable picker. The reader uses it
// for the table of contents and the font picker.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/statusbar"
)

const (
	listIndent                = 1
	listViewTopPadding        = 1 // Padding at the top of the list view.
	listViewBottomPadding     = 4 // Header gap, pagination and status bar.
	listViewHorizontalPadding = 6
)

// Item is one entry of the list.
type Item struct {
	// Value is handed back in [SelectedMsg].
	Value any
	Title string
	Desc  string
}

func (i Item) filterValue() string {
	return i.Title + " " + i.Desc
}

type (
	// SelectedMsg is sent when an item is opened.
	SelectedMsg struct {
		Item Item
		ID   string
	}
	// ClosedMsg is sent when the list is dismissed without a selection.
	ClosedMsg struct {
		ID string
	}
)

// FilterState is the current filtering state of the list.
type FilterState int

const (
	Unfiltered    FilterState = iota // No filter set.
	Filtering                        // User is actively setting a filter.
	FilterApplied                    // A filter is applied and user is not editing filter.
)

type ListModel struct {
	cm           *common.CommonModel
	helpRenderer *statusbar.HelpRenderer
	keyHandler   *KeyHandler

	// The master set of items.
	items []Item

	// Items matching the filter. Only used while a filter is set.
	filtered []Item

	filterInput textinput.Model
	paginator   paginator.Model

	id   string
	noun string

	cursor      int
	FilterState FilterState
	helpHeight  int
	ShowHelp    bool
	compact     bool
}

type Config struct {
	CommonModel *common.CommonModel
	KeyBinds    *KeyBinds
	// ID tags the messages of this list.
	ID string
	// Noun names the items in the header, e.g. "fonts".
	Noun    string
	Compact bool
}

func NewModel(c Config) ListModel {
	t := c.CommonModel.Theme

	si := textinput.New()
	si.Prompt = "Find:"
	si.PromptStyle = t.Selected.MarginRight(1)
	si.Cursor.Style = t.Selected.MarginRight(1)

	kh := NewKeyHandler(c.KeyBinds, c.CommonModel.KeyBinds)

	return ListModel{
		cm:           c.CommonModel,
		id:           c.ID,
		noun:         c.Noun,
		compact:      c.Compact,
		filterInput:  si,
		paginator:    newListPaginator(t),
		helpRenderer: statusbar.NewHelpRenderer(t, kh.help()),
		keyHandler:   kh,
	}
}

func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	if m.FilterState == Filtering {
		return m.keyHandler.HandleFilteringMode(m, msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.keyHandler.HandleBrowsing(m, msg)
	}

	return m, nil
}

func (m ListModel) View() string {
	top := lipgloss.JoinVertical(
		lipgloss.Top,
		m.headerView(),
		m.itemsView(),
	)

	bottomParts := []string{
		lipgloss.PlaceHorizontal(m.cm.Width, lipgloss.Left, m.paginationView()),
		m.statusBarView(),
	}
	if m.ShowHelp {
		bottomParts = append(bottomParts, m.helpView())
	}

	bottom := lipgloss.JoinVertical(lipgloss.Top, bottomParts...)

	availableHeight := max(0, m.cm.Height-lipgloss.Height(top))

	return lipgloss.JoinVertical(lipgloss.Top,
		top,
		lipgloss.PlaceVertical(availableHeight, lipgloss.Bottom, bottom),
	)
}

// SetItems replaces the items and clears the filter.
func (m *ListModel) SetItems(items []Item) {
	m.items = items
	m.ResetFiltering()
	m.cursor = 0
	m.paginator.Page = 0
	m.updatePagination()
}

// Items returns the items currently shown.
func (m ListModel) Items() []Item {
	return m.visibleItems()
}

// Select moves the cursor to items[index], clearing any filter.
func (m *ListModel) Select(index int) {
	if m.FilterState != Unfiltered {
		m.ResetFiltering()
	}

	if index < 0 || index >= len(m.items) {
		return
	}

	m.paginator.Page = index / m.paginator.PerPage
	m.cursor = index % m.paginator.PerPage
}

// Selected returns the item under the cursor.
func (m ListModel) Selected() (Item, bool) {
	i := m.paginator.Page*m.paginator.PerPage + m.cursor

	items := m.visibleItems()
	if i < 0 || i >= len(items) {
		return Item{}, false
	}

	return items[i], true
}

func (m ListModel) FilterApplied() bool {
	return m.FilterState != Unfiltered
}

func (m *ListModel) SetSize(width, height int) {
	m.cm.Width = width
	m.cm.Height = height

	if m.ShowHelp && m.helpHeight == 0 {
		m.helpHeight = m.helpRenderer.Height(width)
	}

	m.filterInput.Width = width - listViewHorizontalPadding*2 - ansi.StringWidth(m.filterInput.Prompt)

	m.updatePagination()
}

func (m *ListModel) toggleHelp() {
	m.ShowHelp = !m.ShowHelp
	m.SetSize(m.cm.Width, m.cm.Height)
}

func (m *ListModel) ResetFiltering() {
	m.FilterState = Unfiltered
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.filtered = nil

	m.updatePagination()
}

func (m ListModel) itemHeight() int {
	if m.compact {
		return 1
	}

	return 3
}

// updatePagination fits the pages to the height and the visible items.
func (m *ListModel) updatePagination() {
	helpHeight := 0
	if m.ShowHelp {
		helpHeight = m.helpHeight
	}

	availableHeight := m.cm.Height -
		helpHeight -
		listViewTopPadding -
		listViewBottomPadding

	if !m.compact {
		// The last item needs no gap below it.
		availableHeight++
	}

	m.paginator.PerPage = max(1, availableHeight/m.itemHeight())

	if items := len(m.visibleItems()); items < 1 {
		m.paginator.SetTotalPages(1)
	} else {
		m.paginator.SetTotalPages(items)
	}

	// Make sure the page stays in bounds.
	if m.paginator.Page >= m.paginator.TotalPages-1 {
		m.paginator.Page = max(0, m.paginator.TotalPages-1)
	}

	m.enforcePaginationBounds()
}

func (m ListModel) visibleItems() []Item {
	if m.FilterState != Unfiltered {
		return m.filtered
	}

	return m.items
}

func (m ListModel) open(item Item) tea.Cmd {
	id := m.id

	return func() tea.Msg {
		return SelectedMsg{ID: id, Item: item}
	}
}

func (m ListModel) close() tea.Cmd {
	id := m.id

	return func() tea.Msg {
		return ClosedMsg{ID: id}
	}
}

func (m *ListModel) itemsOnPage() int {
	return m.paginator.ItemsOnPage(len(m.visibleItems()))
}

func (m *ListModel) moveCursorUp() {
	m.cursor--
	if m.cursor < 0 && m.paginator.Page == 0 {
		// Stop.
		m.cursor = 0

		return
	}

	if m.cursor >= 0 {
		return
	}

	// Go to previous page.
	m.paginator.PrevPage()

	m.cursor = m.itemsOnPage() - 1
}

func (m *ListModel) moveCursorDown() {
	itemsOnPage := m.itemsOnPage()

	m.cursor++
	if m.cursor < itemsOnPage {
		return
	}

	if !m.paginator.OnLastPage() {
		m.paginator.NextPage()
		m.cursor = 0

		return
	}

	m.cursor = max(0, itemsOnPage-1)
}

func (m *ListModel) enforcePaginationBounds() {
	itemsOnPage := m.itemsOnPage()
	if m.cursor > itemsOnPage-1 {
		m.cursor = max(0, itemsOnPage-1)
	}
}

func (m ListModel) helpView() string {
	return m.helpRenderer.Render(m.cm.Width)
}

func (m ListModel) headerView() string {
	var header string

	switch m.FilterState {
	case Filtering:
		header = m.filterInput.View()
	case FilterApplied:
		header = m.cm.Theme.Subtle.Render(fmt.Sprintf("%d %s", len(m.items), m.noun)) +
			m.cm.Theme.Subtle.Render(" │ ") +
			m.cm.Theme.Selected.Render(fmt.Sprintf("%d “%s”", len(m.filtered), m.filterInput.Value()))
	default:
		header = m.cm.Theme.Subtle.Render(fmt.Sprintf("%d %s", len(m.items), m.noun))
	}

	return lipgloss.NewStyle().
		Padding(listViewTopPadding, listIndent+2, 1).
		Render(header)
}

func (m ListModel) statusBarView() string {
	progress := fmt.Sprintf("%d/%d", m.paginator.Page+1, m.paginator.TotalPages)

	return m.cm.GetStatusBar().Render(m.noun, progress)
}

// startFiltering initializes the filtering mode.
func (m *ListModel) startFiltering() tea.Cmd {
	m.filtered = m.items
	m.paginator.Page = 0
	m.cursor = 0

	m.FilterState = Filtering
	m.filterInput.CursorEnd()
	m.filterInput.Focus()
	m.updatePagination()

	return textinput.Blink
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}

	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}

	return b.String()
}

// Restyle applies the current theme of the common model, e.g. after night
// mode was toggled.
func (m *ListModel) Restyle() {
	t := m.cm.Theme

	m.filterInput.PromptStyle = t.Selected.MarginRight(1)
	m.filterInput.Cursor.Style = t.Selected.MarginRight(1)
	m.paginator.ActiveDot = t.Selected.Render("•")
	m.paginator.InactiveDot = t.Subtle.Render("◦")
	m.helpRenderer = statusbar.NewHelpRenderer(t, m.keyHandler.help())
}
