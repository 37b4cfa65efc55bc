package reader

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/paging"
)

// dragThrough is the ancestor of the inner pager. When enabled, a drag the
// pager releases at the first or last page is taken over by the section
// level, and a release past a third of the width switches section.
type dragThrough struct {
	enabled  bool
	pressed  bool
	released bool
	owned    bool
	startX   int
	x        int
}

var _ paging.Interceptor = (*dragThrough)(nil)

func (d *dragThrough) RequestDisallowIntercept(disallow bool) {
	d.released = !disallow
}

func (d *dragThrough) press(x int) {
	*d = dragThrough{enabled: d.enabled, pressed: true, startX: x, x: x}
}

// takeOver reports whether the section level claims the gesture after the
// last move.
func (d *dragThrough) takeOver() bool {
	if !d.enabled || d.owned || !d.released {
		return false
	}

	d.owned = true

	return true
}

// delta returns the section delta a release at the current position would
// apply, or zero below the threshold.
func (d *dragThrough) delta(width int) int {
	dx := d.x - d.startX
	if width <= 0 || absInt(dx) <= width/3 {
		return 0
	}

	if dx < 0 {
		return 1
	}

	return -1
}

func (d *dragThrough) reset() {
	*d = dragThrough{enabled: d.enabled}
}

// handleMouse translates left button mouse events into pointer events. Cell
// columns are the pixels of the pager.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	ev := paging.PointerEvent{Time: m.now(), X: msg.X, Y: msg.Y}

	switch {
	case tea.MouseEvent(msg).IsWheel():
		if m.drag.pressed {
			return
		}

		switch msg.Button {
		case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
			m.pager.Advance(1)
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
			m.pager.Advance(-1)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < 0 || msg.Y >= m.surface.Height() {
			return
		}

		m.drag.press(msg.X)
		ev.Action = paging.PointerDown
		m.pager.HandlePointer(ev)

	case msg.Action == tea.MouseActionMotion:
		if !m.drag.pressed {
			return
		}

		m.drag.x = msg.X
		if m.drag.owned {
			return
		}

		ev.Action = paging.PointerMove
		m.pager.HandlePointer(ev)

		if m.drag.takeOver() {
			slog.Debug("section level took over drag", slog.Int("x", msg.X))

			ev.Action = paging.PointerCancel
			m.pager.HandlePointer(ev)
		}

	case msg.Action == tea.MouseActionRelease:
		if !m.drag.pressed {
			return
		}

		m.drag.x = msg.X

		if m.drag.owned {
			if delta := m.drag.delta(m.surface.Width()); delta != 0 {
				m.sections.SetCurrentIndex(m.sections.CurrentIndex()+delta, true)
			}
		} else {
			ev.Action = paging.PointerUp
			m.pager.HandlePointer(ev)
		}

		m.drag.reset()
	}
}

// dragNote describes what releasing a section level drag would do.
func (m Model) dragNote() string {
	if !m.drag.owned {
		return ""
	}

	switch m.drag.delta(m.surface.Width()) {
	case 1:
		return "release for next section"
	case -1:
		return "release for previous section"
	}

	return ""
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
