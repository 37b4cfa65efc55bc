package paging

import (
	"log/slog"
	"math"
)

type settle struct {
	from   float64
	to     float64
	frame  int
	frames int
}

// notify is the page-scroll progress notification. It pushes the position
// into the surface and clears the scrolling flag once the pages rest on a
// whole page with nothing left in flight.
func (p *Pager) notify() {
	p.scrolling = true

	index := math.Floor(p.pos)
	offset := p.pos - index

	p.syncSurface(p.pos)

	if p.onScrolled != nil {
		p.onScrolled(int(index), offset)
	}

	if offset == 0 && p.settle == nil && p.drag == nil {
		p.scrolling = false
	}
}

// syncSurface scrolls the surface to position (in pages). The pixel offset
// is truncated toward zero.
func (p *Pager) syncSurface(position float64) {
	if p.surface == nil {
		p.logger.Debug("no content surface, skip scroll sync")
		return
	}

	pageWidth := p.surface.PixelWidthOfPages(1)
	x := int(position * float64(pageWidth))

	p.surface.ScrollTo(x, 0)
}

// ScrollToPosition scrolls the surface to a fractional page position supplied
// by a script or remote source. It does not change the current index. The
// call is ignored while a drag session is live.
func (p *Pager) ScrollToPosition(position float64) {
	if p.drag != nil {
		p.logger.Debug("ignore precise scroll during drag", slog.Float64("position", position))
		return
	}

	p.syncSurface(position)

	p.logger.Debug("scrolled to precise position", slog.Float64("position", position))
}

func (p *Pager) startSettle(target int) {
	p.selectPage(target)

	to := float64(target)
	if p.pos == to && !p.scrolling {
		p.state = StateIdle
		return
	}

	p.settle = &settle{
		from:   p.pos,
		to:     to,
		frames: p.settleFrames,
	}
	p.state = StateSettling

	if p.settleFrames == 0 || p.pos == to {
		p.finishSettle()
	}
}

// Step advances the running settle by one frame and reports whether more
// frames are needed.
func (p *Pager) Step() bool {
	s := p.settle
	if s == nil {
		return false
	}

	s.frame++
	if s.frame >= s.frames {
		p.finishSettle()
		return false
	}

	p.pos = s.from + (s.to-s.from)*float64(s.frame)/float64(s.frames)
	p.notify()

	return true
}

func (p *Pager) finishSettle() {
	p.pos = p.settle.to
	p.settle = nil
	p.state = StateIdle
	p.notify()
}
