package ui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/ui"
)

func TestConfigEnsureDefaults(t *testing.T) {
	t.Parallel()

	c := &ui.Config{}
	c.EnsureDefaults()

	assert.Equal(t, "auto", c.Theme)
	assert.Equal(t, "github-dark", c.NightTheme)
	assert.False(t, *c.Night)
	assert.True(t, *c.EnableMouse)
	assert.True(t, *c.ShowBookmarks)
	assert.InDelta(t, 1000.0, *c.Paging.FlingThreshold, 0)
	assert.Equal(t, 500*time.Millisecond, *c.Paging.LongPressDelay)
	assert.False(t, *c.Paging.DragThrough)
	assert.Len(t, c.Paging.Options(), 5)
	require.NoError(t, c.KeyBinds.Validate())
}

func TestConfigKeepsValues(t *testing.T) {
	t.Parallel()

	frames := 2
	c := &ui.Config{
		Theme:  "dracula",
		Paging: &ui.Paging{SettleFrames: &frames},
	}
	c.EnsureDefaults()

	assert.Equal(t, "dracula", c.Theme)
	assert.Equal(t, 2, *c.Paging.SettleFrames)
	assert.Equal(t, 8, *c.Paging.TouchSlop)
}

func TestKeyBindsValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		modify func(kb *ui.KeyBinds)
		err    bool
	}{
		"defaults": {
			modify: func(*ui.KeyBinds) {},
		},
		"reader key shadows quit": {
			modify: func(kb *ui.KeyBinds) {
				bind := keys.NewBind("copy page", keys.New("q"))
				kb.Reader.Copy = &bind
			},
			err: true,
		},
		"bookmark removal shadows a list key": {
			modify: func(kb *ui.KeyBinds) {
				bind := keys.NewBind("remove bookmark", keys.New("j"))
				kb.Bookmarks.Remove = &bind
			},
			err: true,
		},
		"same key in reader and list": {
			modify: func(kb *ui.KeyBinds) {
				bind := keys.NewBind("find", keys.New("c"))
				kb.List.Find = &bind
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			kb := &ui.KeyBinds{}
			kb.EnsureDefaults()
			tc.modify(kb)

			err := kb.Validate()
			if tc.err {
				require.ErrorIs(t, err, keys.ErrDuplicateKey)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRegisterThemes(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		themes map[string]*ui.ThemeConfig
		err    bool
	}{
		"valid": {
			themes: map[string]*ui.ThemeConfig{
				"folio-test-paper": {Styles: map[string]string{
					"Background": "#3b2f2f bg:#f4ecd8",
					"NameTag":    "#8b4513",
				}},
			},
		},
		"unknown token type": {
			themes: map[string]*ui.ThemeConfig{
				"folio-test-bad": {Styles: map[string]string{"Paper": "#ffffff"}},
			},
			err: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := &ui.Config{Themes: tc.themes}

			err := c.RegisterThemes()
			if tc.err {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}
