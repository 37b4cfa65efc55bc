package reader

import (
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/statusbar"
)

type KeyBinds struct {
	Copy *keys.Bind `yaml:"copy,omitempty"`

	// Navigation.
	NextPage    *keys.Bind `yaml:"next-page,omitempty"`
	PrevPage    *keys.Bind `yaml:"prev-page,omitempty"`
	First       *keys.Bind `yaml:"first,omitempty"`
	Last        *keys.Bind `yaml:"last,omitempty"`
	NextSection *keys.Bind `yaml:"next-section,omitempty"`
	PrevSection *keys.Bind `yaml:"prev-section,omitempty"`

	// Views.
	Contents *keys.Bind `yaml:"contents,omitempty"`
	Fonts    *keys.Bind `yaml:"fonts,omitempty"`
	Library  *keys.Bind `yaml:"library,omitempty"`
	Night    *keys.Bind `yaml:"night,omitempty"`

	// Bookmarks.
	Bookmark  *keys.Bind `yaml:"bookmark,omitempty"`
	Bookmarks *keys.Bind `yaml:"bookmarks,omitempty"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.Default(&kb.Copy,
		keys.NewBind("copy page",
			keys.New("c"),
		))
	keys.Default(&kb.NextPage,
		keys.NewBind("next page",
			keys.New("right", keys.WithAlias("→")),
			keys.New("l"),
			keys.New(" ", keys.WithAlias("space")),
			keys.New("pgdown", keys.WithAlias("pgdn")),
		))
	keys.Default(&kb.PrevPage,
		keys.NewBind("previous page",
			keys.New("left", keys.WithAlias("←")),
			keys.New("h"),
			keys.New("pgup"),
		))
	keys.Default(&kb.First,
		keys.NewBind("first page",
			keys.New("home"),
			keys.New("g"),
		))
	keys.Default(&kb.Last,
		keys.NewBind("last page",
			keys.New("end"),
			keys.New("G"),
		))
	keys.Default(&kb.NextSection,
		keys.NewBind("next section",
			keys.New("]"),
			keys.New("n"),
		))
	keys.Default(&kb.PrevSection,
		keys.NewBind("previous section",
			keys.New("["),
			keys.New("p"),
		))
	keys.Default(&kb.Contents,
		keys.NewBind("contents",
			keys.New("t"),
		))
	keys.Default(&kb.Fonts,
		keys.NewBind("fonts",
			keys.New("f"),
		))
	keys.Default(&kb.Library,
		keys.NewBind("open book",
			keys.New("o"),
		))
	keys.Default(&kb.Night,
		keys.NewBind("night mode",
			keys.New("N"),
		))
	keys.Default(&kb.Bookmark,
		keys.NewBind("bookmark page",
			keys.New("m"),
		))
	keys.Default(&kb.Bookmarks,
		keys.NewBind("bookmarks",
			keys.New("B"),
		))
}

func (kb *KeyBinds) GetKeyBinds() []keys.Bind {
	return []keys.Bind{
		*kb.Copy,
		*kb.NextPage,
		*kb.PrevPage,
		*kb.First,
		*kb.Last,
		*kb.NextSection,
		*kb.PrevSection,
		*kb.Contents,
		*kb.Fonts,
		*kb.Library,
		*kb.Night,
		*kb.Bookmark,
		*kb.Bookmarks,
	}
}

// KeyHandler provides key handling for the reader.
type KeyHandler struct {
	kb  *KeyBinds
	ckb *common.KeyBinds
	// Bookmark keys are ignored unless set.
	bookmarks bool
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
		*h.kb.NextPage,
		*h.kb.PrevPage,
		*h.kb.First,
		*h.kb.Last,
	)
	kbr.AddColumn(
		*h.kb.NextSection,
		*h.kb.PrevSection,
		*h.kb.Contents,
		*h.kb.Copy,
	)
	kbr.AddColumn(
		*h.kb.Library,
		*h.kb.Fonts,
		*h.kb.Night,
		*h.ckb.Reload,
		*h.ckb.Quit,
	)

	if h.bookmarks {
		kbr.AddColumn(
			*h.kb.Bookmark,
			*h.kb.Bookmarks,
		)
	}

	return kbr
}

// HandleKeys handles key events while reading.
func (h *KeyHandler) HandleKeys(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	switch {
	case h.kb.NextPage.Match(key):
		m.pager.Advance(1)

	case h.kb.PrevPage.Match(key):
		m.pager.Advance(-1)

	case h.kb.First.Match(key):
		m.pager.JumpToFirst()

	case h.kb.Last.Match(key):
		m.pager.JumpToLast()

	case h.kb.NextSection.Match(key):
		m.GotoSection(m.sections.CurrentIndex() + 1)

	case h.kb.PrevSection.Match(key):
		m.GotoSection(m.sections.CurrentIndex() - 1)

	case h.kb.Copy.Match(key):
		return m, m.copyPage()

	case h.kb.Contents.Match(key):
		return m, func() tea.Msg { return OpenContentsMsg{} }

	case h.kb.Fonts.Match(key):
		return m, func() tea.Msg { return OpenFontsMsg{} }

	case h.kb.Library.Match(key):
		return m, func() tea.Msg { return OpenLibraryMsg{} }

	case h.kb.Night.Match(key):
		return m, func() tea.Msg { return ToggleNightMsg{} }

	case h.bookmarks && h.kb.Bookmark.Match(key):
		return m, m.addBookmark()

	case h.bookmarks && h.kb.Bookmarks.Match(key):
		return m, func() tea.Msg { return OpenBookmarksMsg{} }

	case h.ckb.Help.Match(key):
		m.toggleHelp()
	}

	cmd := m.animate()

	return m, cmd
}

func (m Model) copyPage() tea.Cmd {
	text := m.surface.PageText(m.pager.CurrentIndex())

	// Copy using OSC 52.
	termenv.Copy(text)
	// Copy using native system clipboard.
	_ = clipboard.WriteAll(text) //nolint:errcheck // Can be ignored.

	return m.cm.SendStatusMessage("copied page", statusbar.StyleSuccess)
}

func (m Model) addBookmark() tea.Cmd {
	store := m.session.store
	if store == nil {
		return m.cm.SendStatusMessage("bookmarks need the state database", statusbar.StyleError)
	}

	pos := m.Position()

	_, err := store.AddBookmark(state.Bookmark{
		Book:    pos.Book,
		Section: pos.Section,
		Page:    pos.Page,
		Label:   pos.SectionTitle,
		Created: m.now(),
	})
	if err != nil {
		slog.Warn("add bookmark", slog.String("book", pos.Book), slog.Any("error", err))

		return m.cm.SendStatusMessage("bookmark failed", statusbar.StyleError)
	}

	return m.cm.SendStatusMessage(
		fmt.Sprintf("bookmarked page %d of %s", pos.Page+1, pos.SectionTitle),
		statusbar.StyleSuccess,
	)
}
