package list

import (
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/ui/common"
)

type KeyBinds struct {
	Up       *keys.Bind `yaml:"up,omitempty"`
	Down     *keys.Bind `yaml:"down,omitempty"`
	Open     *keys.Bind `yaml:"open,omitempty"`
	Find     *keys.Bind `yaml:"find,omitempty"`
	Home     *keys.Bind `yaml:"home,omitempty"`
	End      *keys.Bind `yaml:"end,omitempty"`
	PageUp   *keys.Bind `yaml:"pageUp,omitempty"`
	PageDown *keys.Bind `yaml:"pageDown,omitempty"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.Default(&kb.Up,
		keys.NewBind("move up",
			keys.New("up", keys.WithAlias("↑")),
			keys.New("k"),
		))
	keys.Default(&kb.Down,
		keys.NewBind("move down",
			keys.New("down", keys.WithAlias("↓")),
			keys.New("j"),
		))
	keys.Default(&kb.Open,
		keys.NewBind("open",
			keys.New("enter", keys.WithAlias("↵")),
		))
	keys.Default(&kb.Find,
		keys.NewBind("find",
			keys.New("/"),
		))
	keys.Default(&kb.Home,
		keys.NewBind("go to start",
			keys.New("home"),
			keys.New("g"),
		))
	keys.Default(&kb.End,
		keys.NewBind("go to end",
			keys.New("end"),
			keys.New("G"),
		))
	keys.Default(&kb.PageUp,
		keys.NewBind("page up",
			keys.New("pgup"),
			keys.New("left", keys.WithAlias("←")),
			keys.New("b"),
		))
	keys.Default(&kb.PageDown,
		keys.NewBind("page down",
			keys.New("pgdown", keys.WithAlias("pgdn")),
			keys.New("right", keys.WithAlias("→")),
			keys.New("f"),
		))
}

func (kb *KeyBinds) GetKeyBinds() []keys.Bind {
	return []keys.Bind{
		*kb.Up,
		*kb.Down,
		*kb.Open,
		*kb.Find,
		*kb.Home,
		*kb.End,
		*kb.PageUp,
		*kb.PageDown,
	}
}

// KeyHandler provides key handling for the list.
type KeyHandler struct {
	kb  *KeyBinds
	ckb *common.KeyBinds
}

func NewKeyHandler(kb *KeyBinds, ckb *common.KeyBinds) *KeyHandler {
	return &KeyHandler{
		kb:  kb,
		ckb: ckb,
	}
}

func (h *KeyHandler) help() *keys.Help {
	kbr := &keys.Help{}
	kbr.AddColumn(
		*h.kb.Up,
		*h.kb.Down,
		*h.kb.PageUp,
		*h.kb.PageDown,
	)
	kbr.AddColumn(
		*h.kb.Open,
		*h.kb.Find,
		*h.kb.Home,
		*h.kb.End,
	)
	kbr.AddColumn(
		*h.ckb.Escape,
		*h.ckb.Help,
		*h.ckb.Quit,
	)

	return kbr
}

// HandleBrowsing handles key events while no filter is being edited.
func (h *KeyHandler) HandleBrowsing(m ListModel, msg tea.KeyMsg) (ListModel, tea.Cmd) {
	key := msg.String()
	numItems := len(m.visibleItems())

	switch {
	case h.kb.Up.Match(key):
		m.moveCursorUp()

	case h.kb.Down.Match(key):
		m.moveCursorDown()

	case h.kb.PageUp.Match(key):
		m.paginator.PrevPage()
		m.enforcePaginationBounds()

	case h.kb.PageDown.Match(key):
		m.paginator.NextPage()
		m.enforcePaginationBounds()

	case h.kb.Home.Match(key):
		m.paginator.Page = 0
		m.cursor = 0

	case h.kb.End.Match(key):
		m.paginator.Page = m.paginator.TotalPages - 1
		m.cursor = max(0, m.paginator.ItemsOnPage(numItems)-1)

	case h.kb.Open.Match(key):
		if item, ok := m.Selected(); ok {
			return m, m.open(item)
		}

	case h.kb.Find.Match(key):
		cmd := m.startFiltering()

		return m, cmd

	case h.ckb.Escape.Match(key):
		if m.FilterApplied() {
			m.ResetFiltering()
			return m, nil
		}

		return m, m.close()

	case h.ckb.Help.Match(key):
		m.toggleHelp()
	}

	return m, nil
}

// HandleFilteringMode handles events while the filter is being edited.
func (h *KeyHandler) HandleFilteringMode(m ListModel, msg tea.Msg) (ListModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		key := keyMsg.String()

		// Printable keys always go to the input, even when bound.
		if utf8.RuneCountInString(key) > 1 {
			switch {
			case h.ckb.Escape.Match(key):
				m.ResetFiltering()
				return m, nil

			case h.kb.Up.Match(key), h.kb.Down.Match(key), h.kb.Open.Match(key):
				return h.applyFilter(m)
			}
		}
	}

	return h.updateFilterInput(m, msg)
}

// applyFilter leaves the filter input. A single match is opened directly.
func (h *KeyHandler) applyFilter(m ListModel) (ListModel, tea.Cmd) {
	visible := m.visibleItems()

	switch {
	case len(visible) == 0, m.filterInput.Value() == "":
		m.ResetFiltering()

		return m, nil

	case len(visible) == 1:
		item := visible[0]
		m.ResetFiltering()

		return m, m.open(item)
	}

	m.filterInput.Blur()
	m.FilterState = FilterApplied

	return m, nil
}

// updateFilterInput updates the filter input and refilters when it changed.
func (h *KeyHandler) updateFilterInput(m ListModel, msg tea.Msg) (ListModel, tea.Cmd) {
	current := m.filterInput.Value()

	var cmd tea.Cmd

	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != current {
		m.filtered = filterItems(m.items, m.filterInput.Value())
		m.paginator.Page = 0
		m.cursor = 0
		m.updatePagination()
	}

	return m, cmd
}
