package paging

import (
	"log/slog"
	"math"
	"time"
)

const (
	// DefaultFlingThreshold is the velocity (pixels per second) a release at
	// the first or last page must exceed to move the outer paginator.
	DefaultFlingThreshold = 1000.0
	// DefaultMinFlingVelocity is the slowest release still classified as a fling.
	DefaultMinFlingVelocity = 50.0
	DefaultTouchSlop        = 8
	DefaultLongPressDelay   = 500 * time.Millisecond
	DefaultSettleFrames     = 6
)

// Surface is the rendered content of the current section. It is shared with
// the rest of the reading UI, so the pager only reads its page width and
// pushes scroll offsets into it.
type Surface interface {
	// PixelWidthOfPages returns the width of count sub-pages. Zero means the
	// surface has not been laid out yet.
	PixelWidthOfPages(count int) int
	ScrollTo(x, y int)
}

// SectionPager is the outer paginator that cycles through document sections.
type SectionPager interface {
	CurrentIndex() int
	SetCurrentIndex(index int, animate bool)
}

// Interceptor is the ancestor of the pager that may take over a horizontal
// drag. The pager calls RequestDisallowIntercept on every pointer move.
type Interceptor interface {
	RequestDisallowIntercept(disallow bool)
}

// State is the state of the gesture state machine.
type State int

const (
	StateIdle State = iota
	StatePressed
	StateDragging
	StateSettling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePressed:
		return "pressed"
	case StateDragging:
		return "dragging"
	case StateSettling:
		return "settling"
	}

	return ""
}

// Pager is the inner paginator. See the package documentation.
type Pager struct {
	surface Surface
	outer   SectionPager
	parent  Interceptor
	poster  Poster
	logger  *slog.Logger

	onSelected func(index int)
	onScrolled func(index int, offset float64)

	drag   *dragSession
	settle *settle
	parked []func()

	threshold      float64
	minFling       float64
	longPressDelay time.Duration
	slop           int
	settleFrames   int

	pageCount int
	current   int
	width     int
	pos       float64
	state     State
	last      GestureKind
	scrolling bool
}

// Option configures a [Pager].
type Option func(p *Pager)

// WithPoster sets the run loop that remote commands are posted to.
func WithPoster(poster Poster) Option {
	return func(p *Pager) {
		p.poster = poster
	}
}

// WithOuter sets the outer paginator. Without one, boundary flings fall
// through to a normal settle.
func WithOuter(outer SectionPager) Option {
	return func(p *Pager) {
		p.outer = outer
	}
}

func WithInterceptor(parent Interceptor) Option {
	return func(p *Pager) {
		p.parent = parent
	}
}

func WithFlingThreshold(pxPerSecond float64) Option {
	return func(p *Pager) {
		p.threshold = math.Abs(pxPerSecond)
	}
}

func WithMinFlingVelocity(pxPerSecond float64) Option {
	return func(p *Pager) {
		p.minFling = math.Abs(pxPerSecond)
	}
}

func WithTouchSlop(px int) Option {
	return func(p *Pager) {
		p.slop = max(0, px)
	}
}

func WithLongPressDelay(d time.Duration) Option {
	return func(p *Pager) {
		p.longPressDelay = d
	}
}

// WithSettleFrames sets how many [Pager.Step] calls a settle takes. Zero
// settles instantly.
func WithSettleFrames(frames int) Option {
	return func(p *Pager) {
		p.settleFrames = max(0, frames)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pager) {
		p.logger = logger
	}
}

// OnPageSelected registers a callback for changes of the current index.
func OnPageSelected(fn func(index int)) Option {
	return func(p *Pager) {
		p.onSelected = fn
	}
}

// OnPageScrolled registers a callback for every page-scroll progress
// notification.
func OnPageScrolled(fn func(index int, offset float64)) Option {
	return func(p *Pager) {
		p.onScrolled = fn
	}
}

// NewPager creates a [Pager] that drives surface. A nil surface is accepted;
// scroll synchronization is then skipped with a diagnostic log.
func NewPager(surface Surface, opts ...Option) *Pager {
	p := &Pager{
		surface:        surface,
		threshold:      DefaultFlingThreshold,
		minFling:       DefaultMinFlingVelocity,
		slop:           DefaultTouchSlop,
		longPressDelay: DefaultLongPressDelay,
		settleFrames:   DefaultSettleFrames,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.poster == nil {
		p.poster = NewLoop()
	}

	return p
}

// SetOuter replaces the outer paginator. Nil detaches it.
func (p *Pager) SetOuter(outer SectionPager) {
	p.outer = outer
}

// SetPageCount sets the number of sub-pages and clamps the current index
// into the new range.
func (p *Pager) SetPageCount(count int) {
	count = max(0, count)
	p.pageCount = count

	if count == 0 {
		moved := p.pos != 0 || p.scrolling

		p.current = 0
		p.pos = 0
		p.settle = nil

		// A live drag keeps its state until the pointer is released.
		if p.drag == nil {
			p.state = StateIdle
			p.scrolling = false
		}

		if moved {
			p.syncSurface(0)
		}

		p.logger.Debug("set page count", slog.Int("count", 0))

		return
	}

	if p.current > count-1 {
		p.current = count - 1
	}

	if p.pos > float64(count-1) {
		p.pos = float64(count - 1)
		if p.settle != nil {
			p.settle = nil
			p.state = StateIdle
		}

		p.notify()
	}

	p.logger.Debug("set page count",
		slog.Int("count", count),
		slog.Int("current", p.current),
	)
}

// SetWidth sets the width of one page of the container, used to convert
// drag distance into page offsets.
func (p *Pager) SetWidth(px int) {
	p.width = max(0, px)
}

func (p *Pager) PageCount() int { return p.pageCount }

func (p *Pager) CurrentIndex() int { return p.current }

// IsScrolling reports whether a drag or settle is moving the pages.
func (p *Pager) IsScrolling() bool { return p.scrolling }

func (p *Pager) State() State { return p.state }

// LastGesture returns the classification of the most recent gesture.
func (p *Pager) LastGesture() GestureKind { return p.last }

// Position returns the continuous position in pages.
func (p *Pager) Position() float64 { return p.pos }

// Settling reports whether a settle is waiting for [Pager.Step].
func (p *Pager) Settling() bool { return p.settle != nil }

// selectPage updates the current index and fires the selection callback.
func (p *Pager) selectPage(index int) {
	if index == p.current {
		return
	}

	p.current = index
	p.logger.Debug("page selected", slog.Int("index", index))

	if p.onSelected != nil {
		p.onSelected(index)
	}
}

func (p *Pager) clampIndex(index int) int {
	return min(max(index, 0), max(p.pageCount-1, 0))
}
