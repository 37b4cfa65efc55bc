package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/ui/bookmarks"
	"github.com/macropower/folio/pkg/ui/filepicker"
	"github.com/macropower/folio/pkg/ui/reader"
	"github.com/macropower/folio/pkg/uitest"
)

const testMarkdown = `## One

a

b

## Two

c

d

## Three

e
`

func testConfig() *Config {
	frames := 0
	c := &Config{
		Theme:  "github",
		Paging: &Paging{SettleFrames: &frames},
	}
	c.EnsureDefaults()

	return c
}

func testInput(t *testing.T) Input {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.md")
	require.NoError(t, os.WriteFile(path, []byte(testMarkdown), 0o600))

	b, err := book.Load(path)
	require.NoError(t, err)

	return Input{Book: b, Path: path}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestProgram(t *testing.T) {
	t.Parallel()

	uitest.SetupColorProfile()

	m := newModel(testConfig(), testInput(t), reader.NewQueue())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 3))

	uitest.WaitForText(t, tm.Output(), "1/3 · page 1/3", time.Second)

	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	uitest.WaitForText(t, tm.Output(), "1/3 · page 2/3", time.Second)

	tm.Send(runes("t"))
	uitest.WaitForText(t, tm.Output(), "sections", time.Second)

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	uitest.WaitForText(t, tm.Output(), "3/3 · page 1/2", time.Second)

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(*model)
	require.True(t, ok)
	assert.Equal(t, stateReading, final.state)
	assert.Equal(t, 2, final.reader.Position().Section)
}

func TestNightMode(t *testing.T) {
	t.Parallel()

	m := newModel(testConfig(), testInput(t), reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})

	day := m.cm.Theme

	m.Update(reader.ToggleNightMsg{})
	assert.True(t, m.isNight)
	assert.Same(t, m.night, m.cm.Theme)
	assert.NotSame(t, day, m.cm.Theme)

	m.Update(reader.ToggleNightMsg{})
	assert.False(t, m.isNight)
	assert.Same(t, day, m.cm.Theme)
}

func TestContentsFilterKeepsQuit(t *testing.T) {
	t.Parallel()

	m := newModel(testConfig(), testInput(t), reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m.Update(reader.OpenContentsMsg{})
	require.Equal(t, stateContents, m.state)

	m.Update(runes("/"))
	require.True(t, m.isTextInputFocused())

	// "q" is typed into the filter instead of quitting.
	_, handled := m.handleGlobalKeys(runes("q"))
	assert.False(t, handled)

	m.Update(runes("q"))
	assert.Equal(t, stateContents, m.state)
	assert.True(t, m.isTextInputFocused())

	_, handled = m.handleGlobalKeys(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, handled)
}

func TestReload(t *testing.T) {
	t.Parallel()

	in := testInput(t)
	m := newModel(testConfig(), in, reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})

	require.NoError(t, os.WriteFile(in.Path, []byte("## Only\n\nx\n"), 0o600))

	msg := m.loadBook()()
	require.IsType(t, bookLoadedMsg{}, msg)

	m.Update(msg)
	m.reader.Queue().Drain()

	assert.Equal(t, 1, m.reader.Position().Sections)

	require.NoError(t, os.Remove(in.Path))
	m.Update(m.loadBook()())

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "ERROR")

	// Any key dismisses the error.
	m.Update(runes("x"))
	assert.NoError(t, m.err)
}

func TestLibrary(t *testing.T) {
	t.Parallel()

	in := testInput(t)
	other := filepath.Join(filepath.Dir(in.Path), "other.md")
	require.NoError(t, os.WriteFile(other, []byte("## Alpha\n\nq\n"), 0o600))

	m := newModel(testConfig(), in, reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.reader.Queue().Drain()

	m.Update(reader.OpenLibraryMsg{})
	require.Equal(t, stateLibrary, m.state)

	m.Update(m.library.Load()())
	assert.Contains(t, m.View(), "other.md")

	m.Update(filepicker.SelectedMsg{Path: other})
	require.Equal(t, stateReading, m.state)

	m.Update(loadBook(other)())
	m.reader.Queue().Drain()

	pos := m.reader.Position()
	assert.Equal(t, other, pos.Book)
	assert.Equal(t, "Alpha", pos.SectionTitle)
	assert.Equal(t, other, m.path)

	// Reloading now reads the opened book.
	require.NoError(t, os.WriteFile(other, []byte("## Alpha\n\nq\n\n## Beta\n\nr\n"), 0o600))
	m.Update(m.loadBook()())
	m.reader.Queue().Drain()

	assert.Equal(t, 2, m.reader.Position().Sections)
}

func TestBookmarks(t *testing.T) {
	t.Parallel()

	store, err := state.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	in := testInput(t)
	in.Store = store

	m := newModel(testConfig(), in, reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.reader.Queue().Drain()

	m.Update(runes("n"))
	m.reader.Queue().Drain()
	m.Update(runes("m"))

	marks, err := store.Bookmarks(in.Book.Key)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, "Two", marks[0].Label)

	m.Update(reader.OpenBookmarksMsg{})
	require.Equal(t, stateBookmarks, m.state)

	m.Update(m.bookmarks.Load(in.Book.Key)())
	assert.Contains(t, m.View(), "section 2, page 1")

	m.Update(runes("g"))
	m.reader.Queue().Drain()
	require.Equal(t, 1, m.reader.Position().Section, "list keys do not reach the reader")

	m.Update(bookmarks.ClosedMsg{})
	require.Equal(t, stateReading, m.state)

	m.reader.GotoSection(0)
	m.reader.Queue().Drain()

	m.Update(bookmarks.SelectedMsg{Bookmark: marks[0]})
	m.reader.Queue().Drain()

	assert.Equal(t, stateReading, m.state)
	assert.Equal(t, 1, m.reader.Position().Section)
	assert.Equal(t, 0, m.reader.Position().Page)
}

func TestBookmarksHidden(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	*cfg.ShowBookmarks = false

	m := newModel(cfg, testInput(t), reader.NewQueue())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.reader.Queue().Drain()

	m.Update(runes("B"))
	m.Update(runes("m"))

	assert.Equal(t, stateReading, m.state)
	assert.Empty(t, m.cm.StatusMessage.Message)
}

func TestRemote(t *testing.T) {
	t.Parallel()

	queue := reader.NewQueue()
	m := newModel(testConfig(), testInput(t), queue)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	queue.Drain()

	r := NewRemote(m.reader)

	r.GotoSection(1)
	r.JumpToLast()
	queue.Drain()

	done := make(chan reader.Position)

	go func() {
		pos, err := r.Position(t.Context())
		assert.NoError(t, err)
		done <- pos
	}()

	require.Eventually(t, func() bool { return queue.Len() > 0 }, time.Second, time.Millisecond)
	queue.Drain()

	pos := <-done
	assert.Equal(t, 1, pos.Section)
	assert.Equal(t, 2, pos.Page)
	assert.Equal(t, "Two", pos.SectionTitle)
	assert.Equal(t, 3, pos.Sections)

	r.JumpToFirst()
	r.Seek(1.5)
	queue.Drain()

	assert.Equal(t, 0, m.reader.Position().Page)
	assert.Equal(t, 120, m.reader.Surface().Offset())

	r.JumpTo(1)
	queue.Drain()
	assert.Equal(t, 1, m.reader.Position().Page)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.Position(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRemotePositionAfterGotoSection(t *testing.T) {
	t.Parallel()

	queue := reader.NewQueue()
	m := newModel(testConfig(), testInput(t), queue)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	queue.Drain()

	r := NewRemote(m.reader)

	r.JumpToLast()
	queue.Drain()
	require.Equal(t, 2, m.reader.Position().Page)

	r.GotoSection(2)

	done := make(chan reader.Position)

	go func() {
		pos, err := r.Position(t.Context())
		assert.NoError(t, err)
		done <- pos
	}()

	require.Eventually(t, func() bool { return queue.Len() > 1 }, time.Second, time.Millisecond)
	queue.Drain()

	pos := <-done
	assert.Equal(t, 2, pos.Section)
	assert.Equal(t, 0, pos.Page)
}
