package paging

import (
	"log/slog"
	"sync"
)

// Poster schedules a task on the goroutine that handles input events.
// Tasks run in the order they were posted.
type Poster interface {
	Post(task func())
}

// Loop is a [Poster] for hosts without a run loop of their own. Tasks queue
// up until [Loop.Drain] is called on the event goroutine.
type Loop struct {
	tasks []func()
	mu    sync.Mutex
}

func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) Post(task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tasks = append(l.tasks, task)
}

// Drain runs queued tasks, including tasks posted while draining, and
// returns how many ran.
func (l *Loop) Drain() int {
	n := 0

	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return n
		}

		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		task()
		n++
	}
}

func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.tasks)
}

// JumpTo moves to index, clamped to the page range, without animation.
// Safe to call from any goroutine.
func (p *Pager) JumpTo(index int) {
	p.post("jump to page", func() {
		p.jump(index)
	})
}

// JumpToFirst is like [Pager.JumpTo] with the first page.
func (p *Pager) JumpToFirst() {
	p.post("jump to first page", func() {
		p.jump(0)
	})
}

// JumpToLast is like [Pager.JumpTo] with the last page. The last page is
// resolved when the command runs, not when it is issued.
func (p *Pager) JumpToLast() {
	p.post("jump to last page", func() {
		p.jump(p.pageCount - 1)
	})
}

// After runs task once every command issued before it has run, including
// commands parked until a drag is released. Safe to call from any goroutine.
func (p *Pager) After(task func()) {
	p.post("task", task)
}

// ShowPage is [Pager.JumpTo] for callers on the event goroutine. The page
// changes at once unless a drag is live, in which case it waits for the
// release like a remote command.
func (p *Pager) ShowPage(index int) {
	if p.drag != nil {
		p.parked = append(p.parked, func() { p.jump(index) })
		return
	}

	p.jump(index)
}

func (p *Pager) post(name string, task func()) {
	p.poster.Post(func() {
		if p.drag != nil {
			p.logger.Debug("park remote command until release", slog.String("command", name))
			p.parked = append(p.parked, task)

			return
		}

		task()
	})
}

func (p *Pager) flushParked() {
	for len(p.parked) > 0 && p.drag == nil {
		task := p.parked[0]
		p.parked = p.parked[1:]

		task()
	}
}

func (p *Pager) jump(index int) {
	if p.pageCount == 0 {
		p.logger.Debug("jump ignored, no pages", slog.Int("index", index))
		return
	}

	index = p.clampIndex(index)

	p.settle = nil
	p.state = StateIdle
	p.pos = float64(index)
	p.selectPage(index)
	p.notify()

	p.logger.Debug("jumped to page", slog.Int("index", index))
}
