// Package fontpicker lists the fonts found on the system, in the user's font
// directories and in the bundled assets, and reports the chosen one.
package fontpicker

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/fonts"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/list"
)

const listID = "fonts"

type (
	// SelectedMsg reports the chosen font and a file that holds it.
	SelectedMsg struct {
		Entry fonts.Entry
		Path  string
	}
	// ClosedMsg is sent when the picker is dismissed.
	ClosedMsg struct{}

	loadedMsg struct {
		families map[fonts.Entry]string
		entries  []fonts.Entry
	}
)

type Model struct {
	finder  *fonts.Finder
	cm      *common.CommonModel
	list    list.ListModel
	current string
	entries []fonts.Entry
	loaded  bool
}

type Config struct {
	CommonModel *common.CommonModel
	KeyBinds    *list.KeyBinds
	Finder      *fonts.Finder
	// Current is the key of the font in use.
	Current string
}

func NewModel(c Config) Model {
	return Model{
		finder:  c.Finder,
		cm:      c.CommonModel,
		current: c.Current,
		list: list.NewModel(list.Config{
			CommonModel: c.CommonModel,
			KeyBinds:    c.KeyBinds,
			ID:          listID,
			Noun:        "fonts",
		}),
	}
}

// Load scans the font sources in the background.
func (m Model) Load() tea.Cmd {
	finder := m.finder

	return func() tea.Msg {
		if finder == nil {
			return loadedMsg{}
		}

		entries := finder.List()
		families := make(map[fonts.Entry]string, len(entries))

		for _, e := range entries {
			family, err := finder.Family(e)
			if err != nil {
				slog.Debug("read font family",
					slog.String("key", e.Key),
					slog.Any("error", err),
				)

				continue
			}

			families[e] = family
		}

		return loadedMsg{entries: entries, families: families}
	}
}

func (m Model) Loaded() bool { return m.loaded }

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.list.FilterState == list.Filtering }

// SetCurrent marks key as the font in use.
func (m *Model) SetCurrent(key string) {
	m.current = key
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		m.entries = msg.entries
		m.list.SetItems(m.items(msg.families))

		for i, e := range m.entries {
			if e.Key == m.current {
				m.list.Select(i)
				break
			}
		}

		return m, nil

	case list.SelectedMsg:
		if msg.ID != listID {
			return m, nil
		}

		return m, m.resolve(msg.Item.Value.(fonts.Entry))

	case list.ClosedMsg:
		if msg.ID != listID {
			return m, nil
		}

		return m, func() tea.Msg { return ClosedMsg{} }
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

// Restyle picks up a theme change, e.g. night mode.
func (m *Model) Restyle() {
	m.list.Restyle()
}

func (m Model) items(families map[fonts.Entry]string) []list.Item {
	items := make([]list.Item, 0, len(m.entries))

	for _, e := range m.entries {
		desc := e.Source.String()
		if family, ok := families[e]; ok && family != "" {
			desc = fmt.Sprintf("%s · %s", family, desc)
		}

		if e.Key == m.current {
			desc += " · current"
		}

		items = append(items, list.Item{Title: e.Key, Desc: desc, Value: e})
	}

	return items
}

func (m Model) resolve(e fonts.Entry) tea.Cmd {
	finder := m.finder

	return func() tea.Msg {
		path, err := finder.Resolve(e)
		if err != nil {
			return common.ErrMsg{Err: fmt.Errorf("resolve font %q: %w", e.Key, err)}
		}

		return SelectedMsg{Entry: e, Path: path}
	}
}
