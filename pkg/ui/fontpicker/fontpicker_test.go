package fontpicker_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/fonts"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/fontpicker"
	"github.com/macropower/folio/pkg/ui/list"
	"github.com/macropower/folio/pkg/ui/theme"
)

func newPicker(t *testing.T, current string) fontpicker.Model {
	t.Helper()

	root := t.TempDir()
	userDir := filepath.Join(root, "user")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "Mono.ttf"), goregular.TTF, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "Broken.ttf"), []byte("nope"), 0o600))

	finder := fonts.NewFinder(
		fonts.WithSystemDirs(),
		fonts.WithUserDirs(userDir),
		fonts.WithAssets(fstest.MapFS{"fonts/Bundled.ttf": {Data: goregular.TTF}}),
		fonts.WithCacheDir(filepath.Join(root, "cache")),
	)

	ckb := &common.KeyBinds{}
	ckb.EnsureDefaults()

	kb := &list.KeyBinds{}
	kb.EnsureDefaults()

	m := fontpicker.NewModel(fontpicker.Config{
		CommonModel: &common.CommonModel{Theme: theme.Default, KeyBinds: ckb},
		KeyBinds:    kb,
		Finder:      finder,
		Current:     current,
	})
	m.SetSize(80, 24)

	m, _ = m.Update(m.Load()())
	require.True(t, m.Loaded())

	return m
}

// send feeds msg and every message its commands produce back into m.
func send(m fontpicker.Model, msg tea.Msg) (fontpicker.Model, tea.Msg) {
	for range 4 {
		var cmd tea.Cmd

		m, cmd = m.Update(msg)
		if cmd == nil {
			return m, nil
		}

		msg = cmd()
		switch msg.(type) {
		case fontpicker.SelectedMsg, fontpicker.ClosedMsg, common.ErrMsg:
			return m, msg
		}
	}

	return m, msg
}

func TestView(t *testing.T) {
	t.Parallel()

	m := newPicker(t, "Mono")
	view := ansi.Strip(m.View())

	assert.Contains(t, view, "3 fonts")
	assert.Contains(t, view, "Go · user · current")
	assert.Contains(t, view, "Go · asset")
	assert.Contains(t, view, "Broken")
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		current  string
		wantKey  string
		wantFile string
	}{
		"preselects the current font": {
			current:  "Mono",
			wantKey:  "Mono",
			wantFile: "Mono.ttf",
		},
		"asset fonts are copied out": {
			current:  "Bundled",
			wantKey:  "Bundled",
			wantFile: "Bundled.ttf",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := newPicker(t, tc.current)

			_, msg := send(m, tea.KeyMsg{Type: tea.KeyEnter})
			require.IsType(t, fontpicker.SelectedMsg{}, msg)

			sel := msg.(fontpicker.SelectedMsg)
			assert.Equal(t, tc.wantKey, sel.Entry.Key)
			assert.Equal(t, tc.wantFile, filepath.Base(sel.Path))
			assert.FileExists(t, sel.Path)
		})
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	m := newPicker(t, "")

	_, msg := send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, fontpicker.ClosedMsg{}, msg)
}
