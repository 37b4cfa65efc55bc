// Package reader is the Bubble Tea model that shows a book one sub-page at a
// time. Mouse drags and flings move between sub-pages and, at either end of
// a section, between sections.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/paging"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/sections"
	"github.com/macropower/folio/pkg/ui/statusbar"
	"github.com/macropower/folio/pkg/ui/surface"
)

const (
	statusBarHeight      = 1
	DefaultFrameInterval = 16 * time.Millisecond
)

type (
	// OpenContentsMsg asks for the table of contents.
	OpenContentsMsg struct{}
	// OpenFontsMsg asks for the font picker.
	OpenFontsMsg struct{}
	// OpenLibraryMsg asks for the book browser.
	OpenLibraryMsg struct{}
	// OpenBookmarksMsg asks for the bookmarks of the open book.
	OpenBookmarksMsg struct{}
	// ToggleNightMsg asks to switch between the day and night themes.
	ToggleNightMsg struct{}

	frameMsg struct{}
)

// Position describes where the reader is.
type Position struct {
	Book         string  `json:"book"`
	Title        string  `json:"title"`
	SectionTitle string  `json:"sectionTitle"`
	Section      int     `json:"section"`
	Sections     int     `json:"sections"`
	Page         int     `json:"page"`
	Pages        int     `json:"pages"`
	Offset       float64 `json:"offset"`
}

type Model struct {
	cm           *common.CommonModel
	helpRenderer *statusbar.HelpRenderer
	keyHandler   *KeyHandler

	surface  *surface.Surface
	pager    *paging.Pager
	sections *sections.Sections
	queue    *Queue
	drag     *dragThrough
	session  *session

	// Saved position, opened on the first layout.
	resume *state.Position
	now    func() time.Time
	frame  time.Duration

	helpHeight int
	opened     bool
	animating  bool
	ShowHelp   bool
}

type Config struct {
	CommonModel *common.CommonModel
	KeyBinds    *KeyBinds
	Book        *book.Book
	// Store keeps the reading position. Optional.
	Store *state.Store
	// Queue runs posted tasks. A new one is created when nil.
	Queue *Queue
	// Clock stamps pointer events. Defaults to [time.Now].
	Clock func() time.Time
	// Font is the key of the font in use. A saved font wins when empty.
	Font string
	// Pager options, e.g. fling threshold or settle frames.
	PagerOptions  []paging.Option
	FrameInterval time.Duration
	DragThrough   bool
	// Bookmarks enables the bookmark keys.
	Bookmarks bool
}

func NewModel(c Config) Model {
	queue := c.Queue
	if queue == nil {
		queue = NewQueue()
	}

	now := c.Clock
	if now == nil {
		now = time.Now
	}

	frame := c.FrameInterval
	if frame <= 0 {
		frame = DefaultFrameInterval
	}

	s := &session{store: c.Store, book: c.Book.Key, font: c.Font}
	drag := &dragThrough{enabled: c.DragThrough}
	surf := surface.New(c.CommonModel.Theme)

	secs := sections.New(c.Book, surf,
		sections.WithPoster(queue),
		sections.OnChange(func(int) { s.save() }),
	)

	opts := append([]paging.Option{
		paging.WithPoster(queue),
		paging.WithOuter(secs),
		paging.WithInterceptor(drag),
		paging.OnPageSelected(func(int) { s.save() }),
	}, c.PagerOptions...)

	pager := paging.NewPager(surf, opts...)
	secs.Attach(pager)

	s.sections = secs
	s.pager = pager

	kh := NewKeyHandler(c.KeyBinds, c.CommonModel.KeyBinds)
	kh.bookmarks = c.Bookmarks

	m := Model{
		cm:           c.CommonModel,
		helpRenderer: statusbar.NewHelpRenderer(c.CommonModel.Theme, kh.help()),
		keyHandler:   kh,
		surface:      surf,
		pager:        pager,
		sections:     secs,
		queue:        queue,
		drag:         drag,
		session:      s,
		now:          now,
		frame:        frame,
	}

	m.resume = s.load()

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.queue.Wait()}

	if m.resume != nil {
		cmds = append(cmds, m.cm.SendStatusMessage(m.resume.Resume(m.now()), statusbar.StyleNormal))
	}

	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.keyHandler.HandleKeys(m, msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		cmd := m.animate()

		return m, cmd

	case drainMsg:
		m.queue.Drain()
		cmd := m.animate()

		return m, tea.Batch(m.queue.Wait(), cmd)

	case frameMsg:
		if m.pager.Step() {
			return m, m.tick()
		}

		m.animating = false
		cmd := m.animate()

		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Top,
		m.surface.View(),
		m.statusBarView(),
		m.helpView(),
	)
}

func (m Model) statusBarView() string {
	note := m.dragNote()
	if note == "" {
		note = m.sections.Current().Label(m.sections.CurrentIndex())
	}

	if m.sections.Len() == 0 {
		note = "empty book"
	}

	return m.cm.GetStatusBar().Render(note, m.positionText())
}

func (m Model) positionText() string {
	pages := m.pager.PageCount()
	if pages == 0 {
		return "-"
	}

	return fmt.Sprintf("%d/%d · page %d/%d",
		m.sections.CurrentIndex()+1, m.sections.Len(),
		m.pager.CurrentIndex()+1, pages)
}

func (m Model) helpView() string {
	if !m.ShowHelp {
		return ""
	}

	return m.helpRenderer.Render(m.cm.Width)
}

// SetSize lays the current section out again. The first call opens the
// saved position.
func (m *Model) SetSize(w, h int) {
	height := h - statusBarHeight

	if m.ShowHelp {
		m.helpHeight = m.helpRenderer.Height(w)
		height -= m.helpHeight
	}

	m.surface.SetSize(w, max(0, height))
	m.pager.SetWidth(w)

	if m.opened {
		m.sections.Reload(nil)
		return
	}

	m.opened = true

	section, page := 0, 0
	if m.resume != nil {
		section, page = m.resume.Section, m.resume.Page
	}

	m.sections.Open(section, page)
}

func (m *Model) toggleHelp() {
	m.ShowHelp = !m.ShowHelp
	m.SetSize(m.cm.Width, m.cm.Height)
}

// SetBook replaces the book, e.g. after the file changed on disk. The
// current section and page are kept where they still exist.
func (m *Model) SetBook(b *book.Book) {
	m.session.book = b.Key
	m.sections.Reload(b)
}

// OpenBook switches to another book at its saved position, or its first
// page. The position in the previous book is saved first.
func (m *Model) OpenBook(b *book.Book) tea.Cmd {
	m.session.save()
	m.session.book = b.Key
	m.resume = m.session.load()

	// Nothing is saved until the new book is open.
	m.session.book = ""
	m.sections.Reload(b)
	m.session.book = b.Key

	section, page := 0, 0
	if m.resume != nil {
		section, page = m.resume.Section, m.resume.Page
	}

	m.sections.Open(section, page)

	if m.resume != nil {
		return m.cm.SendStatusMessage(m.resume.Resume(m.now()), statusbar.StyleNormal)
	}

	return m.cm.SendStatusMessage("opened "+b.Title, statusbar.StyleSuccess)
}

// SetFont records key as the font in use.
func (m *Model) SetFont(key string) {
	m.session.font = key
	m.session.save()
}

func (m Model) Font() string { return m.session.font }

// Restyle picks up a theme change.
func (m *Model) Restyle() {
	m.surface.SetTheme(m.cm.Theme)
	m.helpRenderer = statusbar.NewHelpRenderer(m.cm.Theme, m.keyHandler.help())
}

// GotoSection opens the first page of section index. The switch is posted,
// like every other programmatic move.
func (m Model) GotoSection(index int) {
	m.GotoPage(index, 0)
}

// GotoPage opens page of section, both clamped. Like [Model.GotoSection]
// the move is posted.
func (m Model) GotoPage(section, page int) {
	secs := m.sections

	m.pager.After(func() {
		secs.Open(section, page)
	})
}

// Position reports the current position. It must be called from Update.
func (m Model) Position() Position {
	b := m.sections.Book()

	return Position{
		Book:         b.Key,
		Title:        b.Title,
		SectionTitle: m.sections.Current().Label(m.sections.CurrentIndex()),
		Section:      m.sections.CurrentIndex(),
		Sections:     m.sections.Len(),
		Page:         m.pager.CurrentIndex(),
		Pages:        m.pager.PageCount(),
		Offset:       m.pager.Position(),
	}
}

func (m Model) Pager() *paging.Pager { return m.pager }

func (m Model) Sections() *sections.Sections { return m.sections }

func (m Model) Queue() *Queue { return m.queue }

func (m Model) Surface() *surface.Surface { return m.surface }

// animate starts the settle frames unless they are already running.
func (m *Model) animate() tea.Cmd {
	if m.animating || !m.pager.Settling() {
		return nil
	}

	m.animating = true

	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// session persists the reading position.
type session struct {
	store    *state.Store
	sections *sections.Sections
	pager    *paging.Pager
	book     string
	font     string
}

func (s *session) load() *state.Position {
	if s.store == nil {
		return nil
	}

	pos, err := s.store.Load(s.book)
	if errors.Is(err, state.ErrNoPosition) {
		return nil
	} else if err != nil {
		slog.Warn("load reading position",
			slog.String("book", s.book),
			slog.Any("error", err),
		)

		return nil
	}

	if s.font == "" {
		s.font = pos.Font
	}

	return &pos
}

func (s *session) save() {
	if s.store == nil || s.sections == nil || s.pager == nil || s.book == "" {
		return
	}

	err := s.store.Save(state.Position{
		Book:    s.book,
		Font:    s.font,
		Section: s.sections.CurrentIndex(),
		Page:    s.pager.CurrentIndex(),
	})
	if err != nil {
		slog.Warn("save reading position",
			slog.String("book", s.book),
			slog.Any("error", err),
		)
	}
}
