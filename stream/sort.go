package stream

import (
	"context"
	"sort"
)

// RingSort reorders a nearly-sorted stream with a sliding sorted window
// of the given size. Fixes uploaded in slightly shuffled order (client
// buffers flushing out of turn) come out time-ordered as long as the
// shuffle distance stays under the window size; a fully shuffled stream
// only gets best-effort treatment.
//
// Once the window is full, every incoming element evicts the current
// minimum. The sort is stable for equal elements.
func RingSort[T any](ctx context.Context, size int, cmp func(a, b T) int, in <-chan T) <-chan T {
	if size < 1 {
		size = 1
	}
	out := make(chan T)
	go func() {
		defer close(out)
		window := make([]T, 0, size)
		insert := func(element T) {
			i := sort.Search(len(window), func(i int) bool {
				return cmp(window[i], element) > 0
			})
			window = append(window, element)
			copy(window[i+1:], window[i:])
			window[i] = element
		}
		for element := range in {
			if len(window) < size {
				insert(element)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- window[0]:
			}
			copy(window, window[1:])
			window = window[:len(window)-1]
			insert(element)
		}
		for _, element := range window {
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out
}
