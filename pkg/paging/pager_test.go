package paging_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/paging"
)

type fakeSurface struct {
	scrolls   []int
	pageWidth int
}

func (s *fakeSurface) PixelWidthOfPages(count int) int {
	return count * s.pageWidth
}

func (s *fakeSurface) ScrollTo(x, _ int) {
	s.scrolls = append(s.scrolls, x)
}

func (s *fakeSurface) lastX(t *testing.T) int {
	t.Helper()
	require.NotEmpty(t, s.scrolls, "surface was never scrolled")

	return s.scrolls[len(s.scrolls)-1]
}

type outerCall struct {
	index   int
	animate bool
}

type fakeOuter struct {
	calls []outerCall
	index int
}

func (o *fakeOuter) CurrentIndex() int { return o.index }

func (o *fakeOuter) SetCurrentIndex(index int, animate bool) {
	o.calls = append(o.calls, outerCall{index: index, animate: animate})
	o.index = index
}

type fakeParent struct {
	decisions []bool
}

func (f *fakeParent) RequestDisallowIntercept(disallow bool) {
	f.decisions = append(f.decisions, disallow)
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ev(action paging.PointerAction, x int, at time.Duration) paging.PointerEvent {
	return paging.PointerEvent{Action: action, X: x, Time: t0.Add(at)}
}

// newPager returns a pager with pageCount pages of 100 px, parked at index.
func newPager(t *testing.T, pageCount, index int, opts ...paging.Option) (*paging.Pager, *fakeSurface, *paging.Loop) {
	t.Helper()

	surface := &fakeSurface{pageWidth: 100}
	loop := paging.NewLoop()

	opts = append([]paging.Option{
		paging.WithPoster(loop),
		paging.WithTouchSlop(1),
	}, opts...)

	p := paging.NewPager(surface, opts...)
	p.SetWidth(100)
	p.SetPageCount(pageCount)

	if pageCount > 0 {
		p.JumpTo(index)
		loop.Drain()
		require.Equal(t, index, p.CurrentIndex())
	}

	return p, surface, loop
}

// fling drags from x=200 by dx within 62.5ms, giving a velocity of dx*16 px/s.
func fling(p *paging.Pager, dx int) {
	p.HandlePointer(ev(paging.PointerDown, 200, 0))
	p.HandlePointer(ev(paging.PointerMove, 200+dx, 62500*time.Microsecond))
	p.HandlePointer(ev(paging.PointerUp, 200+dx, 62500*time.Microsecond))
}

func settle(p *paging.Pager) {
	for p.Step() {
	}
}

func TestJumpToScrollsSurfaceToPageOffset(t *testing.T) {
	t.Parallel()

	for pageCount := 1; pageCount <= 5; pageCount++ {
		for index := range pageCount {
			t.Run(fmt.Sprintf("%d of %d", index, pageCount), func(t *testing.T) {
				t.Parallel()

				p, surface, loop := newPager(t, pageCount, 0)

				p.JumpTo(index)
				loop.Drain()

				assert.Equal(t, index*100, surface.lastX(t))
				assert.Equal(t, index, p.CurrentIndex())
				assert.False(t, p.IsScrolling())
			})
		}
	}
}

func TestRemoteCommandsArePosted(t *testing.T) {
	t.Parallel()

	p, _, loop := newPager(t, 5, 2)

	p.JumpToLast()
	assert.Equal(t, 2, p.CurrentIndex(), "commands must not run synchronously")
	assert.Equal(t, 1, loop.Len())

	loop.Drain()
	assert.Equal(t, 4, p.CurrentIndex())
}

func TestRemoteCommandsFIFO(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		issue func(p *paging.Pager)
		want  int
	}{
		"last then first index": {
			issue: func(p *paging.Pager) {
				p.JumpToLast()
				p.JumpTo(0)
			},
			want: 0,
		},
		"first then last": {
			issue: func(p *paging.Pager) {
				p.JumpToFirst()
				p.JumpToLast()
			},
			want: 3,
		},
		"above range clamps": {
			issue: func(p *paging.Pager) {
				p.JumpTo(99)
			},
			want: 3,
		},
		"below range clamps": {
			issue: func(p *paging.Pager) {
				p.JumpTo(2)
				p.JumpTo(-7)
			},
			want: 0,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, surface, loop := newPager(t, 4, 1)

			tc.issue(p)
			loop.Drain()

			assert.Equal(t, tc.want, p.CurrentIndex())
			assert.Equal(t, tc.want*100, surface.lastX(t))
		})
	}
}

func TestJumpWithoutPagesIsNoop(t *testing.T) {
	t.Parallel()

	p, surface, loop := newPager(t, 0, 0)

	p.JumpToLast()
	p.JumpTo(3)
	loop.Drain()

	assert.Equal(t, 0, p.CurrentIndex())
	assert.Empty(t, surface.scrolls)
}

func TestInterception(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pageCount int
		index     int
		dx        int
		claimed   bool
	}{
		"first page dragging right": {pageCount: 3, index: 0, dx: 30, claimed: false},
		"first page dragging left":  {pageCount: 3, index: 0, dx: -30, claimed: true},
		"last page dragging left":   {pageCount: 3, index: 2, dx: -30, claimed: false},
		"last page dragging right":  {pageCount: 3, index: 2, dx: 30, claimed: true},
		"middle page dragging left": {pageCount: 3, index: 1, dx: -30, claimed: true},
		"middle page dragging right": {
			pageCount: 3, index: 1, dx: 30, claimed: true,
		},
		"first page no motion": {pageCount: 3, index: 0, dx: 0, claimed: true},
		"single page right":    {pageCount: 1, index: 0, dx: 5, claimed: false},
		"single page left":     {pageCount: 1, index: 0, dx: -5, claimed: false},
		"no pages":             {pageCount: 0, index: 0, dx: -5, claimed: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			parent := &fakeParent{}
			p, _, _ := newPager(t, tc.pageCount, tc.index, paging.WithInterceptor(parent))

			p.HandlePointer(ev(paging.PointerDown, 100, 0))
			p.HandlePointer(ev(paging.PointerMove, 100+tc.dx, 10*time.Millisecond))

			require.Len(t, parent.decisions, 1)
			assert.Equal(t, tc.claimed, parent.decisions[0])
		})
	}
}

func TestInterceptionIsDecidedOnEveryMove(t *testing.T) {
	t.Parallel()

	parent := &fakeParent{}
	p, _, _ := newPager(t, 3, 0, paging.WithInterceptor(parent))

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	p.HandlePointer(ev(paging.PointerMove, 90, 10*time.Millisecond))
	p.HandlePointer(ev(paging.PointerMove, 110, 20*time.Millisecond))

	assert.Equal(t, []bool{true, false}, parent.decisions)
}

func TestBoundaryFlingThreshold(t *testing.T) {
	t.Parallel()

	// fling(p, -125) releases at exactly -2000 px/s.
	tcs := map[string]struct {
		threshold float64
		wantCalls []outerCall
	}{
		"exactly at threshold does not qualify": {
			threshold: 2000,
		},
		"one unit under the velocity qualifies": {
			threshold: 1999,
			wantCalls: []outerCall{{index: 5, animate: true}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			outer := &fakeOuter{index: 4}
			p, _, _ := newPager(t, 3, 2,
				paging.WithOuter(outer),
				paging.WithFlingThreshold(tc.threshold),
			)

			fling(p, -125)
			settle(p)

			assert.Equal(t, tc.wantCalls, outer.calls)
			assert.Equal(t, paging.GestureFling, p.LastGesture())
			assert.Equal(t, 2, p.CurrentIndex())
		})
	}
}

func TestBoundaryFlingAtFirstPage(t *testing.T) {
	t.Parallel()

	outer := &fakeOuter{index: 4}
	p, _, _ := newPager(t, 3, 0, paging.WithOuter(outer), paging.WithFlingThreshold(1000))

	fling(p, 125)

	assert.Equal(t, []outerCall{{index: 3, animate: true}}, outer.calls)
}

func TestBoundaryFlingWithoutOuterSettlesNormally(t *testing.T) {
	t.Parallel()

	p, surface, _ := newPager(t, 3, 2, paging.WithFlingThreshold(1000))

	fling(p, -125)
	settle(p)

	assert.Equal(t, 2, p.CurrentIndex())
	assert.Equal(t, 200, surface.lastX(t))
	assert.False(t, p.IsScrolling())
	assert.Equal(t, paging.StateIdle, p.State())
}

func TestSinglePageFlingFiresOneDirection(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		dx   int
		want []outerCall
	}{
		"leftward advances": {dx: -125, want: []outerCall{{index: 8, animate: true}}},
		"rightward retreats": {dx: 125, want: []outerCall{{index: 6, animate: true}}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			outer := &fakeOuter{index: 7}
			p, _, _ := newPager(t, 1, 0, paging.WithOuter(outer), paging.WithFlingThreshold(1000))

			fling(p, tc.dx)

			assert.Equal(t, tc.want, outer.calls)
		})
	}
}

func TestFlingInsideSectionTargetsAdjacentPage(t *testing.T) {
	t.Parallel()

	outer := &fakeOuter{}
	selected := []int{}
	p, surface, _ := newPager(t, 5, 2,
		paging.WithOuter(outer),
		paging.WithFlingThreshold(1000),
		paging.WithSettleFrames(4),
		paging.OnPageSelected(func(index int) { selected = append(selected, index) }),
	)
	p.SetWidth(400)
	selected = selected[:0]

	// Position 2.3125 on release.
	fling(p, -125)

	assert.Equal(t, 3, p.CurrentIndex(), "index is chosen when the settle starts")
	assert.True(t, p.Settling())
	assert.True(t, p.IsScrolling())

	settle(p)

	assert.Equal(t, 300, surface.lastX(t))
	assert.False(t, p.IsScrolling())
	assert.Equal(t, []int{3}, selected)
	assert.Empty(t, outer.calls)
}

func TestDragReleaseSettlesToNearestPage(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		index int
		dx    int
		want  int
	}{
		"first page dragged right stays": {index: 0, dx: 40, want: 0},
		"under half a page stays":        {index: 0, dx: -40, want: 0},
		"over half a page advances":      {index: 0, dx: -60, want: 1},
		"over half a page back":          {index: 2, dx: 70, want: 1},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, surface, _ := newPager(t, 3, tc.index, paging.WithSettleFrames(3))

			p.HandlePointer(ev(paging.PointerDown, 100, 0))
			assert.Equal(t, paging.StatePressed, p.State())

			p.HandlePointer(ev(paging.PointerMove, 100+tc.dx, 10*time.Millisecond))
			assert.Equal(t, paging.StateDragging, p.State())
			assert.True(t, p.IsScrolling())

			// Hold still long enough for the velocity to decay to zero.
			p.HandlePointer(ev(paging.PointerMove, 100+tc.dx, 400*time.Millisecond))
			p.HandlePointer(ev(paging.PointerUp, 100+tc.dx, 500*time.Millisecond))

			settle(p)

			assert.Equal(t, tc.want, p.CurrentIndex())
			assert.Equal(t, tc.want*100, surface.lastX(t))
			assert.False(t, p.IsScrolling())
			assert.Equal(t, paging.StateIdle, p.State())
			assert.Equal(t, paging.GestureScroll, p.LastGesture())
		})
	}
}

func TestDragPushesTruncatedPixelOffsets(t *testing.T) {
	t.Parallel()

	offsets := []float64{}
	p, surface, _ := newPager(t, 3, 1, paging.OnPageScrolled(func(_ int, offset float64) {
		offsets = append(offsets, offset)
	}))

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	p.HandlePointer(ev(paging.PointerMove, 75, 10*time.Millisecond))

	assert.Equal(t, 125, surface.lastX(t))
	require.NotEmpty(t, offsets)
	assert.InDelta(t, 0.25, offsets[len(offsets)-1], 1e-9)

	p.SetWidth(80)
	p.HandlePointer(ev(paging.PointerMove, 90, 20*time.Millisecond))

	// Position 1.125 on a 100 px page.
	assert.Equal(t, 112, surface.lastX(t))
}

func TestZeroPageWidth(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	loop := paging.NewLoop()
	p := paging.NewPager(surface, paging.WithPoster(loop))
	p.SetPageCount(4)

	p.JumpTo(3)
	loop.Drain()

	assert.Equal(t, 3, p.CurrentIndex())
	assert.Equal(t, 0, surface.lastX(t))

	p.ScrollToPosition(2.5)
	assert.Equal(t, 0, surface.lastX(t))
}

func TestNilSurface(t *testing.T) {
	t.Parallel()

	loop := paging.NewLoop()
	p := paging.NewPager(nil, paging.WithPoster(loop))
	p.SetPageCount(2)

	p.JumpToLast()
	loop.Drain()

	assert.Equal(t, 1, p.CurrentIndex())
	assert.NotPanics(t, func() { p.ScrollToPosition(1) })
}

func TestScrollToPosition(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{pageWidth: 33}
	p := paging.NewPager(surface, paging.WithTouchSlop(1))
	p.SetPageCount(4)
	p.SetWidth(33)

	p.ScrollToPosition(1.5)
	assert.Equal(t, 49, surface.lastX(t))
	assert.Equal(t, 0, p.CurrentIndex())

	p.HandlePointer(ev(paging.PointerDown, 50, 0))
	p.HandlePointer(ev(paging.PointerMove, 40, 10*time.Millisecond))

	n := len(surface.scrolls)
	p.ScrollToPosition(3)
	assert.Len(t, surface.scrolls, n, "precise scrolling is ignored during a drag")
}

func TestNoPagesPressAndRelease(t *testing.T) {
	t.Parallel()

	p, surface, _ := newPager(t, 0, 0)

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	assert.Equal(t, paging.StatePressed, p.State())

	p.HandlePointer(ev(paging.PointerMove, 20, 10*time.Millisecond))
	assert.Equal(t, paging.StatePressed, p.State())

	p.HandlePointer(ev(paging.PointerUp, 20, 20*time.Millisecond))
	assert.Equal(t, paging.StateIdle, p.State())
	assert.Empty(t, surface.scrolls)
	assert.False(t, p.IsScrolling())
}

func TestPressDuringSettleRestartsFromPosition(t *testing.T) {
	t.Parallel()

	p, surface, _ := newPager(t, 4, 0, paging.WithSettleFrames(4))

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	p.HandlePointer(ev(paging.PointerMove, 25, 10*time.Millisecond))
	p.HandlePointer(ev(paging.PointerMove, 25, 400*time.Millisecond))
	p.HandlePointer(ev(paging.PointerUp, 25, 500*time.Millisecond))
	require.True(t, p.Settling())
	assert.Equal(t, 1, p.CurrentIndex())

	p.Step()
	assert.InDelta(t, 0.8125, p.Position(), 1e-9)

	p.HandlePointer(ev(paging.PointerDown, 100, time.Second))
	assert.False(t, p.Settling())
	assert.Equal(t, paging.StatePressed, p.State())
	assert.True(t, p.IsScrolling())

	p.HandlePointer(ev(paging.PointerMove, 75, time.Second+10*time.Millisecond))
	assert.InDelta(t, 1.0625, p.Position(), 1e-9)
	assert.Equal(t, 106, surface.lastX(t))
}

func TestTapDoesNotChangePage(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		hold time.Duration
		want paging.GestureKind
	}{
		"tap":        {hold: 50 * time.Millisecond, want: paging.GestureTap},
		"long press": {hold: time.Second, want: paging.GestureLongPress},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			selected := 0
			p, surface, _ := newPager(t, 3, 1, paging.OnPageSelected(func(int) { selected++ }))
			selected = 0
			scrolls := len(surface.scrolls)

			p.HandlePointer(ev(paging.PointerDown, 100, 0))
			p.HandlePointer(ev(paging.PointerUp, 100, tc.hold))

			assert.Equal(t, tc.want, p.LastGesture())
			assert.Equal(t, 1, p.CurrentIndex())
			assert.Equal(t, 0, selected)
			assert.Len(t, surface.scrolls, scrolls)
			assert.Equal(t, paging.StateIdle, p.State())
		})
	}
}

func TestRemoteCommandWaitsForRelease(t *testing.T) {
	t.Parallel()

	p, surface, loop := newPager(t, 4, 1, paging.WithSettleFrames(0))

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	p.HandlePointer(ev(paging.PointerMove, 80, 10*time.Millisecond))

	seen := -1

	p.JumpToLast()
	p.JumpTo(2)
	p.After(func() { seen = p.CurrentIndex() })
	loop.Drain()
	assert.Equal(t, 1, p.CurrentIndex(), "commands are parked while dragging")
	assert.Equal(t, -1, seen)

	p.HandlePointer(ev(paging.PointerMove, 80, 400*time.Millisecond))
	p.HandlePointer(ev(paging.PointerUp, 80, 500*time.Millisecond))

	assert.Equal(t, 2, p.CurrentIndex())
	assert.Equal(t, 200, surface.lastX(t))
	assert.Equal(t, 2, seen, "queries run after the commands issued before them")
}

func TestCancelSettlesWithoutBoundaryDelegation(t *testing.T) {
	t.Parallel()

	outer := &fakeOuter{}
	p, _, _ := newPager(t, 3, 2, paging.WithOuter(outer), paging.WithFlingThreshold(10))

	p.HandlePointer(ev(paging.PointerDown, 200, 0))
	p.HandlePointer(ev(paging.PointerMove, 100, 10*time.Millisecond))
	p.HandlePointer(ev(paging.PointerCancel, 100, 20*time.Millisecond))
	settle(p)

	assert.Empty(t, outer.calls)
	assert.Equal(t, 2, p.CurrentIndex())
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		index     int
		delta     int
		wantIndex int
		wantOuter []outerCall
	}{
		"next page":              {index: 0, delta: 1, wantIndex: 1},
		"previous page":          {index: 2, delta: -1, wantIndex: 1},
		"past the last page":     {index: 2, delta: 1, wantIndex: 2, wantOuter: []outerCall{{index: 6, animate: true}}},
		"before the first page":  {index: 0, delta: -1, wantIndex: 0, wantOuter: []outerCall{{index: 4, animate: true}}},
		"zero delta does nothing": {index: 1, delta: 0, wantIndex: 1},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			outer := &fakeOuter{index: 5}
			p, surface, _ := newPager(t, 3, tc.index, paging.WithOuter(outer))

			p.Advance(tc.delta)
			settle(p)

			assert.Equal(t, tc.wantIndex, p.CurrentIndex())
			assert.Equal(t, tc.wantIndex*100, surface.lastX(t))
			assert.Equal(t, tc.wantOuter, outer.calls)
		})
	}
}

func TestSetPageCountClampsIndex(t *testing.T) {
	t.Parallel()

	p, surface, _ := newPager(t, 6, 5)

	p.SetPageCount(3)

	assert.Equal(t, 2, p.CurrentIndex())
	assert.Equal(t, 200, surface.lastX(t))

	p.SetPageCount(0)
	assert.Equal(t, 0, p.CurrentIndex())
	assert.Equal(t, 0, p.PageCount())
}

func TestSetPageCountZeroStopsSettle(t *testing.T) {
	t.Parallel()

	p, surface, _ := newPager(t, 3, 1, paging.WithSettleFrames(4))

	p.HandlePointer(ev(paging.PointerDown, 100, 0))
	p.HandlePointer(ev(paging.PointerMove, 70, 10*time.Millisecond))
	p.HandlePointer(ev(paging.PointerMove, 70, 400*time.Millisecond))
	p.HandlePointer(ev(paging.PointerUp, 70, 500*time.Millisecond))
	require.True(t, p.Step())
	require.Equal(t, paging.StateSettling, p.State())
	require.True(t, p.IsScrolling())

	p.SetPageCount(0)

	assert.False(t, p.Step())
	assert.Equal(t, paging.StateIdle, p.State())
	assert.False(t, p.IsScrolling())
	assert.False(t, p.Settling())
	assert.Equal(t, 0, surface.lastX(t))
}

func TestLoopRunsTasksPostedWhileDraining(t *testing.T) {
	t.Parallel()

	loop := paging.NewLoop()
	order := []int{}

	loop.Post(func() {
		order = append(order, 1)
		loop.Post(func() { order = append(order, 3) })
	})
	loop.Post(func() { order = append(order, 2) })

	assert.Equal(t, 3, loop.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, loop.Len())
}

func TestStateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "settling", paging.StateSettling.String())
	assert.Equal(t, "long-press", paging.GestureLongPress.String())
	assert.Equal(t, "cancel", paging.PointerCancel.String())
}
