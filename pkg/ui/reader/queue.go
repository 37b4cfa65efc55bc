package reader

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/folio/pkg/paging"
)

type drainMsg struct{}

// Queue is the [paging.Poster] of a running program. Posted tasks run on the
// Update goroutine, in order, after the message that is being handled.
// Post never blocks, so it is safe to call from Update itself.
type Queue struct {
	loop  *paging.Loop
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		loop:  paging.NewLoop(),
		ready: make(chan struct{}, 1),
	}
}

func (q *Queue) Post(task func()) {
	q.loop.Post(task)

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain runs the pending tasks on the calling goroutine.
func (q *Queue) Drain() int {
	return q.loop.Drain()
}

func (q *Queue) Len() int {
	return q.loop.Len()
}

// Wait returns a command that completes once a task is posted.
func (q *Queue) Wait() tea.Cmd {
	return func() tea.Msg {
		<-q.ready

		return drainMsg{}
	}
}
