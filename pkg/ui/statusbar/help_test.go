package statusbar_test

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/folio/pkg/keys"
	"github.com/macropower/folio/pkg/ui/statusbar"
	"github.com/macropower/folio/pkg/ui/theme"
)

func TestHelpRenderer(t *testing.T) {
	t.Parallel()

	help := &keys.Help{}
	help.AddColumn(
		keys.NewBind("next page", keys.New("right", keys.WithAlias("→")), keys.New("l")),
		keys.NewBind("quit", keys.New("q"), keys.New("ctrl+c", keys.Hidden())),
	)

	r := statusbar.NewHelpRenderer(theme.Default, help)

	view := ansi.Strip(r.Render(40))
	assert.Contains(t, view, "→/l")
	assert.Contains(t, view, "next page")
	assert.NotContains(t, view, "ctrl+c")

	// Two rows plus vertical padding.
	assert.Equal(t, 4, r.Height(40))
}
