package statusbar_test

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/folio/pkg/ui/statusbar"
	"github.com/macropower/folio/pkg/ui/theme"
)

func TestRenderWidth(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		width int
		want  int
	}{
		"wide":     {width: 100, want: 100},
		"narrow":   {width: 20, want: 20},
		"zero":     {width: 0, want: 0},
		"negative": {width: -5, want: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bar := statusbar.NewRenderer(theme.Default, tc.width).Render("Chapter 1", "2/10")
			assert.Equal(t, tc.want, ansi.StringWidth(bar))
		})
	}
}

func TestRenderContent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts    []statusbar.Opt
		note    string
		want    []string
		notWant []string
	}{
		"note": {
			note: "Chapter 1",
			want: []string{"folio", "Chapter 1", "3 · 2/10", "? Help"},
		},
		"message replaces note": {
			note:    "Chapter 1",
			opts:    []statusbar.Opt{statusbar.WithMessage("Copied page", statusbar.StyleSuccess)},
			want:    []string{"Copied page", "3 · 2/10"},
			notWant: []string{"Chapter 1"},
		},
		"multi line note is flattened": {
			note: "line one\nline two",
			want: []string{"line one line two"},
		},
		"long note is truncated": {
			note: "a very long chapter title that does not fit in the status bar at all",
			want: []string{"…"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bar := statusbar.NewRenderer(theme.Default, 60, tc.opts...).Render(tc.note, "3 · 2/10")
			plain := ansi.Strip(bar)

			for _, s := range tc.want {
				assert.Contains(t, plain, s)
			}

			for _, s := range tc.notWant {
				assert.NotContains(t, plain, s)
			}
		})
	}
}
