package uitest

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Clock is a manual clock for stamping pointer events.
type Clock struct {
	t  time.Time
	mu sync.Mutex
}

func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

// Step is one mouse message of a gesture, sent After the previous one.
type Step struct {
	Msg   tea.MouseMsg
	After time.Duration
}

// Swipe drags the left button along row y from one column to another in
// moves evenly spaced motion events, each interval apart. The release
// follows the last move after another interval.
func Swipe(y, from, to, moves int, interval time.Duration) []Step {
	steps := []Step{{Msg: Press(from, y)}}

	for i := 1; i <= moves; i++ {
		x := from + (to-from)*i/moves
		steps = append(steps, Step{Msg: Motion(x, y), After: interval})
	}

	return append(steps, Step{Msg: Release(to, y), After: interval})
}

// Tap presses and releases the left button in place.
func Tap(x, y int, hold time.Duration) []Step {
	return []Step{
		{Msg: Press(x, y)},
		{Msg: Release(x, y), After: hold},
	}
}

func Press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func Motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func Release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func Wheel(button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{Action: tea.MouseActionPress, Button: button}
}
