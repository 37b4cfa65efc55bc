package surface_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/ui/surface"
	"github.com/macropower/folio/pkg/ui/theme"
)

func newSurface(w, h int, s book.Section) *surface.Surface {
	sf := surface.New(theme.Default)
	sf.SetSize(w, h)
	sf.SetContent(s)

	return sf
}

func TestLayout(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		section book.Section
		width   int
		height  int
		want    []string
	}{
		"title and wrapped paragraphs": {
			section: book.Section{Title: "Title", Paragraphs: []string{"alpha beta gamma", "delta"}},
			width:   10,
			height:  3,
			want:    []string{"Title\n\nalpha beta", "gamma\n\ndelta"},
		},
		"page does not start with a blank line": {
			section: book.Section{Paragraphs: []string{"aaa", "bbb", "ccc"}},
			width:   10,
			height:  3,
			want:    []string{"aaa\n\nbbb", "ccc"},
		},
		"long words are broken": {
			section: book.Section{Paragraphs: []string{"abcdefghijklmnop"}},
			width:   10,
			height:  3,
			want:    []string{"abcdefghij\nklmnop"},
		},
		"wide pages get margins": {
			section: book.Section{Paragraphs: []string{"hi"}},
			width:   30,
			height:  1,
			want:    []string{"  hi"},
		},
		"empty section has no pages": {
			section: book.Section{},
			width:   10,
			height:  3,
		},
		"zero size has no pages": {
			section: book.Section{Paragraphs: []string{"text"}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sf := newSurface(tc.width, tc.height, tc.section)

			var got []string
			for i := range sf.PageCount() {
				got = append(got, sf.PageText(i))
			}

			assert.Equal(t, tc.want, got)
			assert.Empty(t, sf.PageText(-1))
			assert.Empty(t, sf.PageText(len(tc.want)))
		})
	}
}

func TestScrollAndView(t *testing.T) {
	t.Parallel()

	sf := newSurface(10, 3, book.Section{
		Title:      "Title",
		Paragraphs: []string{"alpha beta gamma", "delta"},
	})

	assert.Equal(t, 2, sf.PageCount())
	assert.Equal(t, 20, sf.PixelWidthOfPages(2))

	assert.Equal(t, strings.Join([]string{
		"Title     ",
		"          ",
		"alpha beta",
	}, "\n"), sf.View())

	sf.ScrollTo(5, 99)
	assert.Equal(t, 5, sf.Offset())
	assert.Equal(t, strings.Join([]string{
		"     gamma",
		"          ",
		" betadelta",
	}, "\n"), sf.View())

	sf.ScrollTo(100, 0)
	assert.Equal(t, 10, sf.Offset())
	assert.Equal(t, strings.Join([]string{
		"gamma     ",
		"          ",
		"delta     ",
	}, "\n"), sf.View())

	sf.ScrollTo(-3, 0)
	assert.Equal(t, 0, sf.Offset())
}

func TestResizeKeepsOffsetInRange(t *testing.T) {
	t.Parallel()

	sf := newSurface(10, 1, book.Section{Paragraphs: []string{"one", "two", "three"}})
	assert.Equal(t, 3, sf.PageCount())

	sf.ScrollTo(20, 0)
	assert.Equal(t, 20, sf.Offset())

	sf.SetSize(10, 5)
	assert.Equal(t, 1, sf.PageCount())
	assert.Equal(t, 0, sf.Offset())

	sf.SetContent(book.Section{Paragraphs: []string{"new"}})
	assert.Equal(t, "new", sf.PageText(0))
}

func TestEmptyView(t *testing.T) {
	t.Parallel()

	sf := newSurface(4, 2, book.Section{})

	assert.Equal(t, "    \n    ", sf.View())
	assert.Empty(t, newSurface(0, 0, book.Section{}).View())
}
