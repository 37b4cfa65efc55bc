package uitest

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"

	tea "github.com/charmbracelet/bubbletea"
)

// SetupColorProfile disables colors, so rendered views compare as plain
// text.
func SetupColorProfile() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Plain strips escape sequences from a rendered view.
func Plain(s string) string {
	return ansi.Strip(s)
}

// BubbleModel is a constraint for Bubble Tea model types that return their
// concrete type from Update instead of [tea.Model].
type BubbleModel[T any] interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (T, tea.Cmd) //nolint:ireturn // Must satisfy [tea.Model].
	View() string
}

// modelAdapter wraps a concrete model type to satisfy [tea.Model].
type modelAdapter[T BubbleModel[T]] struct {
	model T
}

func (a modelAdapter[T]) Init() tea.Cmd {
	return a.model.Init()
}

//nolint:ireturn // Must satisfy [tea.Model].
func (a modelAdapter[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.model.Update(msg)
	return modelAdapter[T]{model: m}, cmd
}

func (a modelAdapter[T]) View() string {
	return a.model.View()
}

// NewTestModel creates a new test model with the given terminal size.
// It accepts models that return their concrete type from Update.
func NewTestModel[T BubbleModel[T]](tb testing.TB, m T, size Size) *teatest.TestModel {
	tb.Helper()

	return teatest.NewTestModel(
		tb, modelAdapter[T]{model: m},
		teatest.WithInitialTermSize(size.Width, size.Height),
	)
}

// WaitForText waits until the plain output contains text.
func WaitForText(tb testing.TB, r io.Reader, text string, timeout time.Duration) {
	tb.Helper()

	teatest.WaitFor(tb, r, func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), text)
	}, teatest.WithDuration(timeout), teatest.WithCheckInterval(10*time.Millisecond))
}

// GetFinalOutput reads all output after the program finishes.
func GetFinalOutput(tb testing.TB, tm *teatest.TestModel, timeout time.Duration) string {
	tb.Helper()

	return string(readAll(tb, tm.FinalOutput(tb, teatest.WithFinalTimeout(timeout))))
}

func readAll(tb testing.TB, r io.Reader) []byte {
	tb.Helper()

	b, err := io.ReadAll(r)
	if err != nil {
		tb.Fatal(err)
	}

	return b
}
