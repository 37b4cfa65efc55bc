package ui

import (
	"context"
	"fmt"

	"github.com/macropower/folio/pkg/paging"
	"github.com/macropower/folio/pkg/ui/reader"
)

// Remote controls a running reader from other goroutines. Every command is
// posted to the program and runs between input events.
type Remote struct {
	queue       *reader.Queue
	pager       *paging.Pager
	position    func() reader.Position
	gotoSection func(index int)
}

func NewRemote(r reader.Model) *Remote {
	return &Remote{
		queue:       r.Queue(),
		pager:       r.Pager(),
		position:    r.Position,
		gotoSection: r.GotoSection,
	}
}

// JumpTo moves to page index of the current section, clamped to its pages.
func (r *Remote) JumpTo(page int) {
	r.pager.JumpTo(page)
}

func (r *Remote) JumpToFirst() {
	r.pager.JumpToFirst()
}

func (r *Remote) JumpToLast() {
	r.pager.JumpToLast()
}

// GotoSection opens the first page of section index, clamped to the book.
func (r *Remote) GotoSection(index int) {
	r.gotoSection(index)
}

// Seek scrolls the pages to a fractional position without changing the
// current page. It is ignored while the pages are being dragged.
func (r *Remote) Seek(position float64) {
	pager := r.pager

	r.queue.Post(func() {
		pager.ScrollToPosition(position)
	})
}

// Position waits for the program to report where the reader is, after the
// page commands issued before it. While the pages are dragged, that is after
// the release.
func (r *Remote) Position(ctx context.Context) (reader.Position, error) {
	ch := make(chan reader.Position, 1)

	r.pager.After(func() {
		ch <- r.position()
	})

	select {
	case pos := <-ch:
		return pos, nil
	case <-ctx.Done():
		return reader.Position{}, fmt.Errorf("get position: %w", ctx.Err())
	}
}
