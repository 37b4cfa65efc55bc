package log

import (
	"fmt"
	"io"
	"sync"
)

// Ring keeps the most recent log records while the terminal belongs to the
// reader UI. Each Write is one record. It is safe for concurrent use.
type Ring struct {
	records [][]byte
	start   int
	dropped int
	mu      sync.Mutex
}

// NewRing returns a [Ring] holding up to capacity records. Non-positive
// capacities default to 100.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 100
	}

	return &Ring{records: make([][]byte, 0, capacity)}
}

func (r *Ring) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	rec := append([]byte(nil), p...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) < cap(r.records) {
		r.records = append(r.records, rec)
		return len(p), nil
	}

	r.records[r.start] = rec
	r.start = (r.start + 1) % len(r.records)
	r.dropped++

	return len(p), nil
}

// Records returns copies of the stored records, oldest first.
func (r *Ring) Records() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot()
}

func (r *Ring) snapshot() [][]byte {
	out := make([][]byte, 0, len(r.records))
	for i := range r.records {
		rec := r.records[(r.start+i)%len(r.records)]
		out = append(out, append([]byte(nil), rec...))
	}

	return out
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// Dropped returns how many records were overwritten since the last flush.
func (r *Ring) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

// Flush writes the stored records to w, oldest first, and empties the ring.
func (r *Ring) Flush(w io.Writer) error {
	r.mu.Lock()
	records := r.snapshot()
	dropped := r.dropped
	r.records = r.records[:0]
	r.start = 0
	r.dropped = 0
	r.mu.Unlock()

	if dropped > 0 {
		if _, err := fmt.Fprintf(w, "... %d earlier log records dropped\n", dropped); err != nil {
			return fmt.Errorf("write log records: %w", err)
		}
	}

	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("write log records: %w", err)
		}
	}

	return nil
}
