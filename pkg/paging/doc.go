// Package paging implements the nested pagination engine of the reader.
//
// A [Pager] owns the sub-pages of one document section. It turns a stream of
// single-pointer [PointerEvent] values into drags, flings and settles, keeps
// the horizontal scroll offset of the embedded [Surface] in step with its
// own position, and hands a qualifying fling at the first or last sub-page
// to the outer [SectionPager] so the reader can cross section boundaries.
//
// # Threading
//
// A Pager is not safe for concurrent use. Every method except the remote
// commands ([Pager.JumpTo], [Pager.JumpToFirst], [Pager.JumpToLast]) must be
// called from the goroutine that handles input events. The remote commands
// may be called from any goroutine: they post a task to the configured
// [Poster], and the task runs later on the event goroutine. A task that
// runs while a drag is in progress is held back until the pointer is
// released, so remote commands never interleave with a gesture.
//
// # Coordinates
//
// The pager tracks a continuous position measured in pages, where 2.25 means
// a quarter of the way from page 2 to page 3. Pointer coordinates and the
// container width are in device pixels (terminal cells in the TUI), and the
// surface is always scrolled to int(position * widthOfOnePage).
package paging
