package paging

import (
	"log/slog"
	"math"
	"time"
)

// velocityWindow bounds the samples used to estimate release velocity.
const velocityWindow = 100 * time.Millisecond

type PointerAction int

const (
	PointerDown PointerAction = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (a PointerAction) String() string {
	switch a {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	}

	return ""
}

// PointerEvent is a single-pointer input event.
type PointerEvent struct {
	Time   time.Time
	Action PointerAction
	X      int
	Y      int
}

// GestureKind classifies the motion of a drag session.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureTap
	GestureLongPress
	GestureScroll
	GestureFling
)

func (k GestureKind) String() string {
	switch k {
	case GestureNone:
		return "none"
	case GestureTap:
		return "tap"
	case GestureLongPress:
		return "long-press"
	case GestureScroll:
		return "scroll"
	case GestureFling:
		return "fling"
	}

	return ""
}

type sample struct {
	t time.Time
	x int
}

// dragSession lives from pointer-down to pointer-up or cancel.
type dragSession struct {
	downAt   time.Time
	samples  []sample
	startX   int
	startPos float64
	moved    bool
}

func (d *dragSession) track(ev PointerEvent) {
	d.samples = append(d.samples, sample{t: ev.Time, x: ev.X})

	cutoff := ev.Time.Add(-velocityWindow)
	drop := 0
	for drop < len(d.samples)-2 && d.samples[drop].t.Before(cutoff) {
		drop++
	}

	d.samples = d.samples[drop:]
}

// velocity returns the horizontal velocity in pixels per second over the
// recent samples. Negative values move toward later pages.
func (d *dragSession) velocity() float64 {
	if len(d.samples) < 2 {
		return 0
	}

	first, last := d.samples[0], d.samples[len(d.samples)-1]

	dt := last.t.Sub(first.t).Seconds()
	if dt <= 0 {
		return 0
	}

	return float64(last.x-first.x) / dt
}

// motion is the result of classifying one event of a drag session. It feeds
// the interception decision, the gesture bookkeeping and the release policy.
type motion struct {
	dx       int
	velocity float64
	kind     GestureKind
}

func (p *Pager) classify(d *dragSession, ev PointerEvent, released bool) motion {
	m := motion{dx: ev.X - d.startX}

	if absInt(m.dx) >= p.slop && m.dx != 0 {
		d.moved = true
	}

	held := ev.Time.Sub(d.downAt)

	switch {
	case d.moved:
		m.kind = GestureScroll
		if released {
			m.velocity = d.velocity()
			if math.Abs(m.velocity) >= p.minFling {
				m.kind = GestureFling
			}
		}

	case held >= p.longPressDelay:
		m.kind = GestureLongPress

	case released:
		m.kind = GestureTap
	}

	return m
}

// HandlePointer feeds one pointer event into the state machine.
func (p *Pager) HandlePointer(ev PointerEvent) {
	switch ev.Action {
	case PointerDown:
		p.press(ev)
	case PointerMove:
		p.move(ev)
	case PointerUp:
		p.release(ev, false)
	case PointerCancel:
		p.release(ev, true)
	}
}

func (p *Pager) press(ev PointerEvent) {
	if p.settle != nil {
		p.logger.Debug("press interrupts settle", slog.Float64("position", p.pos))
		p.settle = nil
	}

	p.drag = &dragSession{
		startX:   ev.X,
		startPos: p.pos,
		downAt:   ev.Time,
	}
	p.drag.track(ev)
	p.last = GestureNone
	p.state = StatePressed
}

func (p *Pager) move(ev PointerEvent) {
	d := p.drag
	if d == nil {
		return
	}

	d.track(ev)
	m := p.classify(d, ev, false)

	p.intercept(m.dx)

	if p.pageCount == 0 || m.kind != GestureScroll {
		if m.kind == GestureLongPress {
			p.last = m.kind
		}

		return
	}

	p.state = StateDragging
	p.last = GestureScroll
	p.pos = p.dragPosition(d, m.dx)
	p.notify()
}

func (p *Pager) dragPosition(d *dragSession, dx int) float64 {
	if p.width <= 0 {
		return d.startPos
	}

	pos := d.startPos - float64(dx)/float64(p.width)

	return math.Min(math.Max(pos, 0), float64(p.pageCount-1))
}

func (p *Pager) release(ev PointerEvent, canceled bool) {
	d := p.drag
	if d == nil {
		return
	}

	d.track(ev)
	m := p.classify(d, ev, true)
	p.drag = nil
	p.last = m.kind

	defer p.flushParked()

	if p.pageCount == 0 {
		p.state = StateIdle
		return
	}

	target := p.current

	switch {
	case canceled:
		target = p.nearestPage()

	case m.kind == GestureTap, m.kind == GestureLongPress:
		// Taps and long presses never change the page.

	case m.kind == GestureFling && p.delegateBoundary(m.velocity):
		p.logger.Debug("fling delegated to outer paginator",
			slog.Float64("velocity", m.velocity),
			slog.Int("current", p.current),
		)

	case math.Abs(m.velocity) >= p.threshold:
		target = p.flingTarget(m.velocity)

	default:
		target = p.nearestPage()
	}

	p.startSettle(target)
}

func (p *Pager) nearestPage() int {
	return p.clampIndex(int(math.Floor(p.pos + 0.5)))
}

// flingTarget returns the page adjacent to the position in the direction of
// the fling.
func (p *Pager) flingTarget(velocity float64) int {
	if velocity < 0 {
		return p.clampIndex(int(math.Floor(p.pos)) + 1)
	}

	return p.clampIndex(int(math.Ceil(p.pos)) - 1)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
