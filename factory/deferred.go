package factory

import (
	"context"
	"fmt"
)

// Deferred is a value that becomes available later. Factories and module
// properties may hand one back instead of a plain value; the loaders detect it
// on the result and await it before validation.
type Deferred interface {
	AwaitValue(ctx context.Context) (any, error)
}

// Future is a single-assignment Deferred backed by a channel.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on its own goroutine and returns a Future for its outcome. A
// panic in fn rejects the future instead of crashing the process.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("deferred function panicked: %v", r)
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Resolved returns an already settled Future holding v.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// Rejected returns an already settled Future holding err.
func Rejected[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitValue implements Deferred.
func (f *Future[T]) AwaitValue(ctx context.Context) (any, error) {
	return f.Await(ctx)
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
