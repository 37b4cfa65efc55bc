package ui

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/alecthomas/chroma/v2"
	"go.uber.org/multierr"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/paging"
	"github.com/macropower/folio/pkg/ui/bookmarks"
	"github.com/macropower/folio/pkg/ui/common"
	"github.com/macropower/folio/pkg/ui/list"
	"github.com/macropower/folio/pkg/ui/reader"
	"github.com/macropower/folio/pkg/ui/theme"
)

// Config contains TUI-specific configuration.
type Config struct {
	KeyBinds *KeyBinds `yaml:"keybinds,omitempty"`
	Paging   *Paging   `yaml:"paging,omitempty"`
	// Themes are extra chroma styles, usable by name in Theme and NightTheme.
	Themes map[string]*ThemeConfig `yaml:"themes,omitempty"`
	// Theme is a chroma style name, or "auto", "light" or "dark".
	Theme      string `yaml:"theme,omitempty"`
	NightTheme string `yaml:"night-theme,omitempty"`
	// Font is the key of the preferred font. A font picked in the reader
	// is remembered per book and wins over this.
	Font        string `yaml:"font,omitempty"`
	Night       *bool  `yaml:"night,omitempty"`
	EnableMouse *bool  `yaml:"enable-mouse,omitempty"`
	// ShowBookmarks enables the bookmark keys and list.
	ShowBookmarks *bool `yaml:"show-bookmarks,omitempty"`
}

func (c *Config) EnsureDefaults() {
	if c.KeyBinds == nil {
		c.KeyBinds = &KeyBinds{}
	}
	if c.Paging == nil {
		c.Paging = &Paging{}
	}
	if c.Theme == "" {
		c.Theme = "auto"
	}
	if c.NightTheme == "" {
		c.NightTheme = "github-dark"
	}
	if c.Night == nil {
		night := false
		c.Night = &night
	}
	if c.EnableMouse == nil {
		enable := true
		c.EnableMouse = &enable
	}
	setDefault(&c.ShowBookmarks, true)

	c.KeyBinds.EnsureDefaults()
	c.Paging.EnsureDefaults()
}

// Paging tunes the swipe gestures. Distances are in terminal cells.
type Paging struct {
	FlingThreshold   *float64       `yaml:"fling-threshold,omitempty"`
	MinFlingVelocity *float64       `yaml:"min-fling-velocity,omitempty"`
	TouchSlop        *int           `yaml:"touch-slop,omitempty"`
	LongPressDelay   *time.Duration `yaml:"long-press-delay,omitempty"`
	SettleFrames     *int           `yaml:"settle-frames,omitempty"`
	FrameInterval    *time.Duration `yaml:"frame-interval,omitempty"`
	// DragThrough lets a drag past the first or last page pull in the
	// neighboring section.
	DragThrough *bool `yaml:"drag-through,omitempty"`
}

func (p *Paging) EnsureDefaults() {
	setDefault(&p.FlingThreshold, paging.DefaultFlingThreshold)
	setDefault(&p.MinFlingVelocity, paging.DefaultMinFlingVelocity)
	setDefault(&p.TouchSlop, paging.DefaultTouchSlop)
	setDefault(&p.LongPressDelay, paging.DefaultLongPressDelay)
	setDefault(&p.SettleFrames, paging.DefaultSettleFrames)
	setDefault(&p.FrameInterval, reader.DefaultFrameInterval)
	setDefault(&p.DragThrough, false)
}

// Options returns the pager options for the configured values.
func (p *Paging) Options() []paging.Option {
	return []paging.Option{
		paging.WithFlingThreshold(*p.FlingThreshold),
		paging.WithMinFlingVelocity(*p.MinFlingVelocity),
		paging.WithTouchSlop(*p.TouchSlop),
		paging.WithLongPressDelay(*p.LongPressDelay),
		paging.WithSettleFrames(*p.SettleFrames),
	}
}

// ThemeConfig defines a chroma style. Keys are chroma token type names,
// e.g. "Background" or "NameTag"; values are chroma style strings.
type ThemeConfig struct {
	Styles map[string]string `yaml:"styles"`
}

// Entries converts the styles to chroma style entries.
func (tc *ThemeConfig) Entries() (chroma.StyleEntries, error) {
	entries := chroma.StyleEntries{}

	for name, style := range tc.Styles {
		tt, err := chroma.TokenTypeString(name)
		if err != nil {
			return nil, fmt.Errorf("token type %q: %w", name, err)
		}

		entries[tt] = style
	}

	return entries, nil
}

// RegisterThemes registers the configured themes with [theme.Register].
func (c *Config) RegisterThemes() error {
	var errs error

	for _, name := range slices.Sorted(maps.Keys(c.Themes)) {
		entries, err := c.Themes[name].Entries()
		if err == nil {
			err = theme.Register(name, entries)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("theme %q: %w", name, err))
		}
	}

	return errs
}

func setDefault[T any](v **T, def T) {
	if *v == nil {
		*v = &def
	}
}

type KeyBinds struct {
	Common    *common.KeyBinds    `yaml:"common,omitempty"`
	Reader    *reader.KeyBinds    `yaml:"reader,omitempty"`
	List      *list.KeyBinds      `yaml:"list,omitempty"`
	Bookmarks *bookmarks.KeyBinds `yaml:"bookmarks,omitempty"`
}

func (kb *KeyBinds) EnsureDefaults() {
	if kb.Common == nil {
		kb.Common = &common.KeyBinds{}
	}
	if kb.Reader == nil {
		kb.Reader = &reader.KeyBinds{}
	}
	if kb.List == nil {
		kb.List = &list.KeyBinds{}
	}
	if kb.Bookmarks == nil {
		kb.Bookmarks = &bookmarks.KeyBinds{}
	}

	kb.Common.EnsureDefaults()
	kb.Reader.EnsureDefaults()
	kb.List.EnsureDefaults()
	kb.Bookmarks.EnsureDefaults()
}

// Validate reports keys bound twice within a view.
func (kb *KeyBinds) Validate() error {
	return multierr.Combine(
		keys.Validate(kb.Common.GetKeyBinds(), kb.Reader.GetKeyBinds()),
		keys.Validate(kb.Common.GetKeyBinds(), kb.List.GetKeyBinds(), kb.Bookmarks.GetKeyBinds()),
	)
}
