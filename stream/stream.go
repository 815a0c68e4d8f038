package stream

import (
	"context"
	"encoding/json"
	"io"
)

// Slice, et al., taken from:
// https://betterprogramming.pub/writing-a-stream-api-in-go-afbc3c4350e2

func Slice[T any](ctx context.Context, in []T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for _, element := range in {
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out
}

func NDJSON[T any](ctx context.Context, in io.Reader) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		dec := json.NewDecoder(in)
		for {
			var element T
			if err := dec.Decode(&element); err != nil {
				if err == io.EOF {
					return
				}
				continue
				// return?
			}
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out
}

func Filter[T any](ctx context.Context, predicate func(T) bool, in <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for element := range in {
			if predicate(element) {
				select {
				case <-ctx.Done():
					return
				case out <- element:
				}
			}
		}
	}()
	return out
}

func Transform[I any, O any](ctx context.Context, transformer func(I) O, in <-chan I) <-chan O {
	out := make(chan O)
	go func() {
		defer close(out)
		for element := range in {
			select {
			case <-ctx.Done():
				return
			case out <- transformer(element):
			}
		}
	}()
	return out
}

func Collect[T any](ctx context.Context, in <-chan T) []T {
	out := make([]T, 0)
	for element := range in {
		select {
		case <-ctx.Done():
			return out
		default:
			out = append(out, element)
		}
	}
	return out
}

// Tee duplicates a stream. Both outputs must be consumed;
// a slow reader on either side stalls the other.
func Tee[T any](ctx context.Context, in <-chan T) (<-chan T, <-chan T) {
	out1, out2 := make(chan T), make(chan T)
	go func() {
		defer close(out1)
		defer close(out2)
		for element := range in {
			var o1, o2 chan T = out1, out2
			for i := 0; i < 2; i++ {
				select {
				case <-ctx.Done():
					return
				case o1 <- element:
					o1 = nil
				case o2 <- element:
					o2 = nil
				}
			}
		}
	}()
	return out1, out2
}

// Batch groups a stream into slices of up to size elements,
// flushing any remainder when the input closes.
func Batch[T any](ctx context.Context, size int, in <-chan T) <-chan []T {
	if size < 1 {
		size = 1
	}
	out := make(chan []T)
	go func() {
		defer close(out)
		batch := make([]T, 0, size)
		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			select {
			case <-ctx.Done():
				return false
			case out <- batch:
				batch = make([]T, 0, size)
				return true
			}
		}
		for element := range in {
			batch = append(batch, element)
			if len(batch) >= size {
				if !flush() {
					return
				}
			}
		}
		flush()
	}()
	return out
}

// Sink drains a stream, calling fn for each element.
// It blocks until the input closes.
func Sink[T any](ctx context.Context, fn func(T), in <-chan T) {
	for element := range in {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if fn != nil {
			fn(element)
		}
	}
}
