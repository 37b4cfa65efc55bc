package reader_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/ui/reader"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	q := reader.NewQueue()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ran []int
	)

	for i := range 3 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			q.Post(func() {
				mu.Lock()
				defer mu.Unlock()

				ran = append(ran, i)
			})
		}()
	}

	wg.Wait()

	// One wake up covers every task posted before it is handled.
	msg := q.Wait()()
	require.NotNil(t, msg)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.ElementsMatch(t, []int{0, 1, 2}, ran)

	q.Post(func() {
		q.Post(func() { ran = append(ran, 4) })
		ran = append(ran, 3)
	})

	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, []int{3, 4}, ran[3:])
}
