// Package bookmarks lists the bookmarks of the open book.
package bookmarks

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/list"
)

const listID = "bookmarks"

type (
	// SelectedMsg reports the bookmark to open.
	SelectedMsg struct {
		Bookmark state.Bookmark
	}
	// ClosedMsg is sent when the list is dismissed.
	ClosedMsg struct{}

	loadedMsg struct {
		book  string
		marks []state.Bookmark
		// Cursor position to keep, e.g. after a removal.
		cursor int
	}
)

type KeyBinds struct {
	Remove *keys.Bind `yaml:"remove,omitempty"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.Default(&kb.Remove,
		keys.NewBind("remove bookmark",
			keys.New("x"),
			keys.New("delete", keys.WithAlias("del")),
		))
}

func (kb *KeyBinds) GetKeyBinds() []keys.Bind {
	return []keys.Bind{
		*kb.Remove,
	}
}

type Model struct {
	list  list.ListModel
	store *state.Store
	kb    *KeyBinds
	now   func() time.Time
	book  string
}

type Config struct {
	CommonModel  *common.CommonModel
	ListKeyBinds *list.KeyBinds
	KeyBinds     *KeyBinds
	Store        *state.Store
	// Clock is "now" for the relative dates. Defaults to [time.Now].
	Clock func() time.Time
}

func NewModel(c Config) Model {
	now := c.Clock
	if now == nil {
		now = time.Now
	}

	return Model{
		store: c.Store,
		kb:    c.KeyBinds,
		now:   now,
		list: list.NewModel(list.Config{
			CommonModel: c.CommonModel,
			KeyBinds:    c.ListKeyBinds,
			ID:          listID,
			Noun:        "bookmarks",
		}),
	}
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.list.FilterState == list.Filtering }

// Load reads the bookmarks of book in the background.
func (m *Model) Load(book string) tea.Cmd {
	m.book = book

	return m.read(0)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.book != m.book {
			return m, nil
		}

		m.list.SetItems(m.items(msg.marks))
		m.list.Select(min(msg.cursor, len(msg.marks)-1))

		return m, nil

	case list.SelectedMsg:
		if msg.ID != listID {
			return m, nil
		}

		mark := msg.Item.Value.(state.Bookmark)

		return m, func() tea.Msg { return SelectedMsg{Bookmark: mark} }

	case list.ClosedMsg:
		if msg.ID != listID {
			return m, nil
		}

		return m, func() tea.Msg { return ClosedMsg{} }

	case tea.KeyMsg:
		if !m.Filtering() && m.kb.Remove.Match(msg.String()) {
			return m, m.remove()
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Restyle picks up a theme change.
func (m *Model) Restyle() {
	m.list.Restyle()
}

func (m Model) remove() tea.Cmd {
	item, ok := m.list.Selected()
	if !ok || m.store == nil {
		return nil
	}

	mark := item.Value.(state.Bookmark)
	cursor := 0

	for i, it := range m.list.Items() {
		if it.Value.(state.Bookmark).ID == mark.ID {
			cursor = i
		}
	}

	store := m.store
	read := m.read(cursor)

	return func() tea.Msg {
		err := store.RemoveBookmark(mark.ID)
		if err != nil {
			return common.ErrMsg{Err: err}
		}

		return read()
	}
}

func (m Model) read(cursor int) tea.Cmd {
	store, book := m.store, m.book

	return func() tea.Msg {
		if store == nil {
			return loadedMsg{book: book}
		}

		marks, err := store.Bookmarks(book)
		if err != nil {
			return common.ErrMsg{Err: fmt.Errorf("read bookmarks: %w", err)}
		}

		return loadedMsg{book: book, marks: marks, cursor: cursor}
	}
}

func (m Model) items(marks []state.Bookmark) []list.Item {
	now := m.now()
	items := make([]list.Item, 0, len(marks))

	for _, b := range marks {
		items = append(items, list.Item{
			Title: b.Label,
			Desc: fmt.Sprintf("section %d, page %d · %s", b.Section+1, b.Page+1,
				humanize.RelTime(b.Created, now, "ago", "from now")),
			Value: b,
		})
	}

	return items
}
