// Package ui provides the main UI for the folio application.
package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/fonts"
	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/ui/bookmarks"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/filepicker"
	"github.com/macropower/folio/pkg/ui/fontpicker"
	"github.com/macropower/folio/pkg/ui/list"
	"github.com/macropower/folio/pkg/ui/overlay"
	"github.com/macropower/folio/pkg/ui/reader"
	"github.com/macropower/folio/pkg/ui/statusbar"
	"github.com/macropower/folio/pkg/ui/theme"
)

const contentsID = "contents"

// Input is the book to show and where reading state lives.
type Input struct {
	Book *book.Book
	// Store keeps reading positions and bookmarks. Optional.
	Store  *state.Store
	Finder *fonts.Finder
	// Path is loaded again on [ReloadMsg] and the reload key.
	Path string
}

// NewProgram returns a new Tea program and a remote control for it.
func NewProgram(cfg *Config, in Input) (*tea.Program, *Remote) {
	slog.Debug("starting folio ui")

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if *cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	m := newModel(cfg, in, reader.NewQueue())

	return tea.NewProgram(m, opts...), NewRemote(m.reader)
}

type (
	// ReloadMsg asks to load the book again, e.g. after it changed on disk.
	ReloadMsg struct{}

	bookLoadedMsg struct {
		book *book.Book
		path string
	}
)

// State is the top-level application State.
type State int

const (
	stateReading State = iota
	stateContents
	stateFonts
	stateLibrary
	stateBookmarks
)

func (s State) String() string {
	return map[State]string{
		stateReading:   "reading",
		stateContents:  "showing contents",
		stateFonts:     "showing fonts",
		stateLibrary:   "showing library",
		stateBookmarks: "showing bookmarks",
	}[s]
}

type model struct {
	err       error
	cm        *common.CommonModel
	overlay   *overlay.Overlay
	kb        *KeyBinds
	day       *theme.Theme
	night     *theme.Theme
	path      string
	reader    reader.Model
	contents  list.ListModel
	fonts     fontpicker.Model
	library   filepicker.Model
	bookmarks bookmarks.Model
	state     State
	isNight   bool
}

func newModel(cfg *Config, in Input, queue *reader.Queue) *model {
	day := theme.New(cfg.Theme)
	night := theme.New(cfg.NightTheme)

	cm := &common.CommonModel{
		Theme:    day,
		KeyBinds: cfg.KeyBinds.Common,
	}
	if *cfg.Night {
		cm.Theme = night
	}

	readerModel := reader.NewModel(reader.Config{
		CommonModel:   cm,
		KeyBinds:      cfg.KeyBinds.Reader,
		Book:          in.Book,
		Store:         in.Store,
		Queue:         queue,
		Font:          cfg.Font,
		PagerOptions:  cfg.Paging.Options(),
		FrameInterval: *cfg.Paging.FrameInterval,
		DragThrough:   *cfg.Paging.DragThrough,
		Bookmarks:     *cfg.ShowBookmarks,
	})

	contentsModel := list.NewModel(list.Config{
		CommonModel: cm,
		KeyBinds:    cfg.KeyBinds.List,
		ID:          contentsID,
		Noun:        "sections",
		Compact:     true,
	})

	fontsModel := fontpicker.NewModel(fontpicker.Config{
		CommonModel: cm,
		KeyBinds:    cfg.KeyBinds.List,
		Finder:      in.Finder,
		Current:     readerModel.Font(),
	})

	libraryModel := filepicker.NewModel(filepicker.Config{
		CommonModel: cm,
		KeyBinds:    cfg.KeyBinds.List,
		Dir:         filepath.Dir(in.Book.Path),
		Current:     in.Book.Path,
	})

	bookmarksModel := bookmarks.NewModel(bookmarks.Config{
		CommonModel:  cm,
		ListKeyBinds: cfg.KeyBinds.List,
		KeyBinds:     cfg.KeyBinds.Bookmarks,
		Store:        in.Store,
	})

	return &model{
		cm:        cm,
		overlay:   overlay.New(cm.Theme),
		kb:        cfg.KeyBinds,
		day:       day,
		night:     night,
		path:      in.Path,
		reader:    readerModel,
		contents:  contentsModel,
		fonts:     fontsModel,
		library:   libraryModel,
		bookmarks: bookmarksModel,
		state:     stateReading,
		isNight:   *cfg.Night,
	}
}

func (m *model) Init() tea.Cmd {
	return m.reader.Init()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.err != nil {
			// Any key dismisses the error.
			m.err = nil

			return m, nil
		}

		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}

	// Window size is received when starting up and on every resize.
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case reader.OpenContentsMsg:
		m.openContents()

	case reader.OpenFontsMsg:
		m.state = stateFonts
		if !m.fonts.Loaded() {
			cmds = append(cmds, m.fonts.Load())
		}

	case reader.OpenLibraryMsg:
		m.state = stateLibrary
		cmds = append(cmds, m.library.Load())

	case reader.OpenBookmarksMsg:
		m.state = stateBookmarks
		cmds = append(cmds, m.bookmarks.Load(m.reader.Position().Book))

	case reader.ToggleNightMsg:
		cmds = append(cmds, m.toggleNight())

	case list.SelectedMsg:
		if msg.ID == contentsID {
			m.reader.GotoSection(msg.Item.Value.(int))
			m.state = stateReading
		}

	case list.ClosedMsg:
		if msg.ID == contentsID {
			m.state = stateReading
		}

	case fontpicker.SelectedMsg:
		m.state = stateReading
		m.reader.SetFont(msg.Entry.Key)
		m.fonts.SetCurrent(msg.Entry.Key)

		slog.Info("font selected",
			slog.String("key", msg.Entry.Key),
			slog.String("path", msg.Path),
		)

		cmds = append(cmds, m.cm.SendStatusMessage("font: "+msg.Entry.Key, statusbar.StyleSuccess))

	case fontpicker.ClosedMsg:
		m.state = stateReading

	case bookmarks.SelectedMsg:
		m.state = stateReading
		m.reader.GotoPage(msg.Bookmark.Section, msg.Bookmark.Page)

		slog.Debug("bookmark opened",
			slog.Int("section", msg.Bookmark.Section),
			slog.Int("page", msg.Bookmark.Page),
		)

	case bookmarks.ClosedMsg:
		m.state = stateReading

	case filepicker.SelectedMsg:
		m.state = stateReading
		cmds = append(cmds, loadBook(msg.Path))

	case filepicker.ClosedMsg:
		m.state = stateReading

	case ReloadMsg:
		cmds = append(cmds, m.loadBook())

	case bookLoadedMsg:
		if msg.book.Key != m.reader.Position().Book {
			m.path = msg.path
			m.library.SetCurrent(msg.book.Path)
			cmds = append(cmds, m.reader.OpenBook(msg.book))

			slog.Info("book opened", slog.String("path", msg.book.Path))

			break
		}

		m.reader.SetBook(msg.book)
		cmds = append(cmds, m.cm.SendStatusMessage("reloaded "+msg.book.Title, statusbar.StyleSuccess))

	case common.StatusMessageTimeoutMsg:
		m.cm.ClearStatusMessage()

	case common.ErrMsg:
		slog.Error("error", slog.Any("error", msg.Err))

		m.err = msg.Err
	}

	// Always pass messages to the other models so we can keep them
	// updated, even if the user isn't currently viewing them.
	cmds = append(cmds, m.updateChildModels(msg)...)

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	var s string

	switch m.state {
	case stateContents:
		s = m.contents.View()
	case stateFonts:
		s = m.fonts.View()
	case stateLibrary:
		s = m.library.View()
	case stateBookmarks:
		s = m.bookmarks.View()
	default:
		s = m.reader.View()
	}

	if m.err != nil {
		errorOverlayStyle := m.cm.Theme.Help.
			Align(lipgloss.Left).
			Padding(1)

		s = m.overlay.Place(s, m.errorView(), 2.0/3.0, errorOverlayStyle)
	}

	return strings.TrimRight(s, " \n")
}

func (m *model) errorView() string {
	return lipgloss.JoinVertical(lipgloss.Top,
		m.cm.Theme.ErrorTitle.Padding(0, 1).Render("ERROR"),
		lipgloss.NewStyle().Padding(1, 0).Render(m.err.Error()),
	)
}

// handleGlobalKeys handles keys that work across all views.
func (m *model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()

	// Always allow suspend to work regardless of current focus.
	if m.kb.Common.Suspend.Match(key) {
		return tea.Suspend, true
	}

	switch {
	case m.matchAction(m.kb.Common.Quit, key):
		return tea.Quit, true

	case m.matchAction(m.kb.Common.Reload, key):
		return m.loadBook(), true
	}

	return nil, false
}

func (m *model) matchAction(kb *keys.Bind, key string) bool {
	if m.isTextInputFocused() && utf8.RuneCountInString(key) == 1 {
		return false
	}

	return kb.Match(key)
}

func (m *model) isTextInputFocused() bool {
	switch m.state {
	case stateContents:
		return m.contents.FilterState == list.Filtering
	case stateFonts:
		return m.fonts.Filtering()
	case stateLibrary:
		return m.library.Filtering()
	case stateBookmarks:
		return m.bookmarks.Filtering()
	}

	return false
}

// updateChildModels hands input to the visible model and everything else
// to all models.
func (m *model) updateChildModels(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd

	input := false

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		input = true
	}

	if !input || m.state == stateReading {
		var cmd tea.Cmd

		m.reader, cmd = m.reader.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !input || m.state == stateContents {
		var cmd tea.Cmd

		m.contents, cmd = m.contents.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !input || m.state == stateFonts {
		var cmd tea.Cmd

		m.fonts, cmd = m.fonts.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !input || m.state == stateLibrary {
		var cmd tea.Cmd

		m.library, cmd = m.library.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !input || m.state == stateBookmarks {
		var cmd tea.Cmd

		m.bookmarks, cmd = m.bookmarks.Update(msg)
		cmds = append(cmds, cmd)
	}

	return cmds
}

// handleWindowResize handles terminal window resize events.
func (m *model) handleWindowResize(msg tea.WindowSizeMsg) {
	m.cm.Width = msg.Width
	m.cm.Height = msg.Height
	m.reader.SetSize(msg.Width, msg.Height)
	m.contents.SetSize(msg.Width, msg.Height)
	m.fonts.SetSize(msg.Width, msg.Height)
	m.library.SetSize(msg.Width, msg.Height)
	m.bookmarks.SetSize(msg.Width, msg.Height)
	m.overlay.SetSize(msg.Width, msg.Height)
}

func (m *model) openContents() {
	titles := m.reader.Sections().Titles()

	items := make([]list.Item, 0, len(titles))
	for i, title := range titles {
		items = append(items, list.Item{
			Title: title,
			Desc:  fmt.Sprintf("section %d", i+1),
			Value: i,
		})
	}

	m.contents.SetItems(items)
	m.contents.Select(m.reader.Sections().CurrentIndex())
	m.state = stateContents
}

func (m *model) toggleNight() tea.Cmd {
	m.isNight = !m.isNight

	m.cm.Theme = m.day
	if m.isNight {
		m.cm.Theme = m.night
	}

	m.overlay.SetTheme(m.cm.Theme)
	m.reader.Restyle()
	m.contents.Restyle()
	m.fonts.Restyle()
	m.library.Restyle()
	m.bookmarks.Restyle()

	slog.Debug("theme changed", slog.String("theme", m.cm.Theme.Name))

	if m.isNight {
		return m.cm.SendStatusMessage("night mode", statusbar.StyleNormal)
	}

	return m.cm.SendStatusMessage("day mode", statusbar.StyleNormal)
}

func (m *model) loadBook() tea.Cmd {
	return loadBook(m.path)
}

func loadBook(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return nil
		}

		b, err := book.Load(path)
		if err != nil {
			return common.ErrMsg{Err: fmt.Errorf("load %s: %w", path, err)}
		}

		return bookLoadedMsg{book: b, path: path}
	}
}
