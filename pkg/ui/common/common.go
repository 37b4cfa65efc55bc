// Package common holds state shared by the reader's Bubble Tea models.
package common

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/ui/statusbar"
	"github.com/macropower/folio/pkg/ui/theme"
)

const StatusMessageTimeout = time.Second * 3 // How long to show status messages.

type CommonModel struct {
	Theme              *theme.Theme
	StatusMessageTimer *time.Timer
	KeyBinds           *KeyBinds
	StatusMessage      StatusMessage
	Width              int
	Height             int
	ShowStatusMessage  bool
}

type (
	StatusMessage struct {
		Message string
		Style   statusbar.Style
	}
	StatusMessageTimeoutMsg struct{}
)

func (m *CommonModel) GetStatusBar() *statusbar.Renderer {
	if m.ShowStatusMessage && m.StatusMessage.Message != "" {
		return statusbar.NewRenderer(m.Theme, m.Width,
			statusbar.WithMessage(m.StatusMessage.Message, m.StatusMessage.Style))
	}

	return statusbar.NewRenderer(m.Theme, m.Width)
}

// SendStatusMessage shows msg in the status bar until the timeout.
func (m *CommonModel) SendStatusMessage(msg string, style statusbar.Style) tea.Cmd {
	m.ShowStatusMessage = true
	m.StatusMessage = StatusMessage{
		Message: msg,
		Style:   style,
	}
	if m.StatusMessageTimer != nil {
		m.StatusMessageTimer.Stop()
	}

	m.StatusMessageTimer = time.NewTimer(StatusMessageTimeout)

	return WaitForStatusMessageTimeout(m.StatusMessageTimer)
}

// ClearStatusMessage handles a [StatusMessageTimeoutMsg].
func (m *CommonModel) ClearStatusMessage() {
	m.ShowStatusMessage = false
	m.StatusMessage = StatusMessage{}
}

type ErrMsg struct{ Err error } //nolint:errname // Tea message.

func (e ErrMsg) Error() string { return e.Err.Error() }

func WaitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C

		return StatusMessageTimeoutMsg{}
	}
}

// KeyBinds are available in every view.
type KeyBinds struct {
	Quit    *keys.Bind `yaml:"quit,omitempty"`
	Suspend *keys.Bind `yaml:"suspend,omitempty"`
	Help    *keys.Bind `yaml:"help,omitempty"`
	Escape  *keys.Bind `yaml:"escape,omitempty"`
	Reload  *keys.Bind `yaml:"reload,omitempty"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.Default(&kb.Quit, keys.NewBind("quit", keys.New("q")))
	// Always ensure that ctrl+c is bound to quit.
	kb.Quit.AddKey(keys.New("ctrl+c", keys.WithAlias("⌃c"), keys.Hidden()))

	keys.Default(&kb.Suspend,
		keys.NewBind("suspend",
			keys.New("ctrl+z", keys.WithAlias("⌃z"), keys.Hidden()),
		))
	keys.Default(&kb.Help,
		keys.NewBind("toggle help",
			keys.New("?"),
		))
	keys.Default(&kb.Escape,
		keys.NewBind("go back",
			keys.New("esc"),
		))
	keys.Default(&kb.Reload,
		keys.NewBind("reload book",
			keys.New("R"),
		))
}

func (kb *KeyBinds) GetKeyBinds() []keys.Bind {
	return []keys.Bind{
		*kb.Quit,
		*kb.Suspend,
		*kb.Help,
		*kb.Escape,
		*kb.Reload,
	}
}
