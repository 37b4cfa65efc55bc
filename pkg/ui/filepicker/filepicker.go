// Package filepicker browses directories for books and reports the chosen
// file.
package filepicker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/maruel/natural"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/list"
)

const (
	listID = "library"
	parent = ".."
)

type (
	// SelectedMsg reports the chosen book file.
	SelectedMsg struct {
		Path string
	}
	// ClosedMsg is sent when the picker is dismissed.
	ClosedMsg struct{}

	readDirMsg struct {
		dir     string
		entries []Entry
		// Entry to select, empty for the open book.
		selected string
	}
)

// Entry is a directory or a book file.
type Entry struct {
	Name   string
	Format book.Format
	Size   int64
	IsDir  bool
}

type Model struct {
	list    list.ListModel
	dir     string
	current string
}

type Config struct {
	CommonModel *common.CommonModel
	KeyBinds    *list.KeyBinds
	// Dir is the directory shown first.
	Dir string
	// Current is the path of the open book.
	Current string
}

func NewModel(c Config) Model {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		dir = c.Dir
	}

	return Model{
		dir:     dir,
		current: c.Current,
		list: list.NewModel(list.Config{
			CommonModel: c.CommonModel,
			KeyBinds:    c.KeyBinds,
			ID:          listID,
			Noun:        "books",
		}),
	}
}

// Dir returns the directory being shown.
func (m Model) Dir() string { return m.dir }

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.list.FilterState == list.Filtering }

// SetCurrent marks path as the open book.
func (m *Model) SetCurrent(path string) {
	m.current = path
}

// Load reads the current directory in the background.
func (m Model) Load() tea.Cmd {
	return readDir(m.dir, "")
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readDirMsg:
		if msg.dir != m.dir {
			return m, nil
		}

		m.list.SetItems(m.items(msg.entries))
		m.selectEntry(msg.entries, msg.selected)

		return m, nil

	case list.SelectedMsg:
		if msg.ID != listID {
			return m, nil
		}

		return m.open(msg.Item.Value.(Entry))

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

func (m Model) open(e Entry) (Model, tea.Cmd) {
	switch {
	case e.Name == parent:
		return m.goBack()

	case e.IsDir:
		m.dir = filepath.Join(m.dir, e.Name)

		return m, readDir(m.dir, "")
	}

	path := filepath.Join(m.dir, e.Name)

	return m, func() tea.Msg { return SelectedMsg{Path: path} }
}

func (m Model) goBack() (Model, tea.Cmd) {
	child := filepath.Base(m.dir)
	m.dir = filepath.Dir(m.dir)

	return m, readDir(m.dir, child)
}

// selectEntry selects the entry called name, or the open book.
func (m *Model) selectEntry(entries []Entry, name string) {
	for i, e := range entries {
		switch {
		case name != "" && e.Name == name,
			name == "" && filepath.Join(m.dir, e.Name) == m.current:
			m.list.Select(i)
			return
		}
	}
}

func (m Model) items(entries []Entry) []list.Item {
	items := make([]list.Item, 0, len(entries))

	for _, e := range entries {
		var desc string

		switch {
		case e.Name == parent:
			desc = "parent directory"
		case e.IsDir:
			desc = "directory"
		default:
			desc = fmt.Sprintf("%s · %s", e.Format,
				strings.Replace(humanize.Bytes(uint64(max(0, e.Size))), " ", "", 1)) //nolint:gosec // Uses max.
		}

		if filepath.Join(m.dir, e.Name) == m.current {
			desc += " · current"
		}

		title := e.Name
		if e.IsDir {
			title += string(filepath.Separator)
		}

		items = append(items, list.Item{Title: title, Desc: desc, Value: e})
	}

	return items
}

func readDir(dir, selected string) tea.Cmd {
	return func() tea.Msg {
		entries, err := ReadDir(os.DirFS(dir))
		if err != nil {
			return common.ErrMsg{Err: fmt.Errorf("read %s: %w", dir, err)}
		}

		if filepath.Dir(dir) != dir {
			entries = append([]Entry{{Name: parent, IsDir: true}}, entries...)
		}

		return readDirMsg{dir: dir, entries: entries, selected: selected}
	}
}

// ReadDir lists the directories and book files at the root of fsys,
// directories first, each in natural order. Hidden entries are skipped.
func ReadDir(fsys fs.FS) ([]Entry, error) {
	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))

	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		isDir := de.IsDir()

		if de.Type()&fs.ModeSymlink != 0 {
			info, err := fs.Stat(fsys, name)
			if err != nil {
				continue
			}

			isDir = info.IsDir()
		}

		if isDir {
			entries = append(entries, Entry{Name: name, IsDir: true})
			continue
		}

		format, err := book.DetectFormat(name)
		if err != nil {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}

		entries = append(entries, Entry{Name: name, Format: format, Size: info.Size()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}

		return natural.Less(entries[i].Name, entries[j].Name)
	})

	return entries, nil
}
