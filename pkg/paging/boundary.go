package paging

import "log/slog"

// intercept decides who owns the rest of a horizontal drag. Dragging past the
// first or last page releases the gesture to the ancestor; everything else is
// claimed by the pager. It reports whether the pager claimed the gesture.
func (p *Pager) intercept(dx int) bool {
	last := p.pageCount - 1

	release := p.pageCount == 0 ||
		(p.current == last && dx < 0) ||
		(p.current == 0 && dx > 0)

	if p.parent != nil {
		p.parent.RequestDisallowIntercept(!release)
	}

	return !release
}

// delegateBoundary moves the outer paginator when a fling leaves the first
// or last page fast enough. The threshold itself does not qualify.
func (p *Pager) delegateBoundary(velocity float64) bool {
	last := p.pageCount - 1

	switch {
	case p.current == last && velocity < -p.threshold:
		return p.moveOuter(1)

	case p.current == 0 && velocity > p.threshold:
		return p.moveOuter(-1)
	}

	return false
}

func (p *Pager) moveOuter(delta int) bool {
	if p.outer == nil {
		p.logger.Debug("no outer paginator, boundary fling ignored", slog.Int("delta", delta))
		return false
	}

	index := p.outer.CurrentIndex() + delta
	p.outer.SetCurrentIndex(index, true)

	p.logger.Debug("moved outer paginator", slog.Int("index", index))

	return true
}

// Advance pages by delta with an animated settle. Leaving the section
// through either end moves the outer paginator instead.
func (p *Pager) Advance(delta int) {
	if p.pageCount == 0 || p.drag != nil || delta == 0 {
		return
	}

	target := p.current + delta
	if target < 0 || target > p.pageCount-1 {
		p.moveOuter(sign(delta))
		return
	}

	if p.settle != nil {
		p.settle = nil
	}

	p.startSettle(target)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}

	return 1
}
