// Package sections is the outer paginator of the reader. It moves through
// the sections of a book and loads the current one into the content surface.
package sections

import (
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/paging"
)

// Content is the surface a section is laid out on.
type Content interface {
	SetContent(section book.Section)
	PageCount() int
}

// Inner is the part of the inner pager the sections drive.
type Inner interface {
	CurrentIndex() int
	PageCount() int
	SetPageCount(count int)
	ShowPage(index int)
}

// Sections implements [paging.SectionPager] over the sections of a book.
type Sections struct {
	book     *book.Book
	content  Content
	inner    Inner
	poster   paging.Poster
	logger   *slog.Logger
	onChange func(index int)
	current  int
	loaded   bool
}

var _ paging.SectionPager = (*Sections)(nil)

type Option func(s *Sections)

// WithPoster sets the run loop section loads are posted to.
func WithPoster(p paging.Poster) Option {
	return func(s *Sections) {
		s.poster = p
	}
}

// OnChange registers a callback that runs after a section is loaded.
func OnChange(fn func(index int)) Option {
	return func(s *Sections) {
		s.onChange = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sections) {
		s.logger = logger
	}
}

func New(b *book.Book, content Content, opts ...Option) *Sections {
	s := &Sections{
		book:    b,
		content: content,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.poster == nil {
		s.poster = paging.NewLoop()
	}

	return s
}

// Attach sets the inner pager whose page count follows the loaded section.
func (s *Sections) Attach(inner Inner) {
	s.inner = inner
}

func (s *Sections) Len() int { return len(s.book.Sections) }

func (s *Sections) Book() *book.Book { return s.book }

func (s *Sections) CurrentIndex() int { return s.current }

// Current returns the current section.
func (s *Sections) Current() book.Section {
	if s.current >= len(s.book.Sections) {
		return book.Section{}
	}

	return s.book.Sections[s.current]
}

// SetCurrentIndex switches to section index, clamped to the book. The
// section is loaded from the run loop, so a gesture that triggered the
// switch completes first. Entering a section from its successor opens its
// last page. Terminals cannot animate the switch, so animate is ignored.
func (s *Sections) SetCurrentIndex(index int, _ bool) {
	if len(s.book.Sections) == 0 {
		return
	}

	index = min(max(index, 0), len(s.book.Sections)-1)
	if index == s.current && s.loaded {
		return
	}

	backwards := s.loaded && index < s.current
	s.current = index

	s.poster.Post(func() {
		if s.current != index {
			// Superseded by a later switch.
			return
		}

		s.load()

		if s.inner == nil {
			return
		}

		page := 0
		if backwards {
			page = s.inner.PageCount() - 1
		}

		s.inner.ShowPage(page)
	})
}

// Open loads section index at page, without the backwards rule. It is used
// to resume a saved position.
func (s *Sections) Open(index, page int) {
	if len(s.book.Sections) == 0 {
		return
	}

	s.current = min(max(index, 0), len(s.book.Sections)-1)
	s.load()

	if s.inner != nil {
		s.inner.ShowPage(page)
	}
}

// Reload lays out the current section again, e.g. after a resize or a new
// book. The inner pager keeps its page, clamped to the new page count.
func (s *Sections) Reload(b *book.Book) {
	if b != nil {
		s.book = b
	}

	if len(s.book.Sections) == 0 {
		s.current = 0
		s.content.SetContent(book.Section{})

		if s.inner != nil {
			s.inner.SetPageCount(0)
		}

		return
	}

	s.current = min(s.current, len(s.book.Sections)-1)

	page := 0
	if s.inner != nil {
		page = s.inner.CurrentIndex()
	}

	s.load()

	if s.inner != nil {
		s.inner.ShowPage(page)
	}
}

func (s *Sections) load() {
	s.loaded = true
	s.content.SetContent(s.Current())

	count := s.content.PageCount()
	if s.inner != nil {
		s.inner.SetPageCount(count)
	}

	s.logger.Debug("section loaded",
		slog.Int("index", s.current),
		slog.Int("pages", count),
	)

	if s.onChange != nil {
		s.onChange(s.current)
	}
}

// Titles returns a label per section.
func (s *Sections) Titles() []string {
	return s.book.Titles()
}

// Find returns the indexes of sections whose titles fuzzily match query,
// best match first.
func (s *Sections) Find(query string) []int {
	matches := fuzzy.Find(query, s.Titles())

	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}

	return out
}
