// Package async provides deferred values (Task), a single-threaded
// continuation queue (Loop) and the set of in-flight work (Set) that
// callers can wait on for quiescence.
//
// Work that produces a Task runs on its own goroutine. Everything that
// touches element state afterwards (continuations registered with Then) is
// posted to a Loop and runs on whichever goroutine drains it, so element
// state keeps a single logical thread of control.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanic wraps a value recovered from a panicking task function.
var ErrPanic = errors.New("async: task panicked")

// Task is a deferred value. It settles exactly once, with a value or an
// error.
type Task struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) settle(v any, err error) {
	t.once.Do(func() {
		t.value, t.err = v, err
		close(t.done)
	})
}

// Go runs fn on a new goroutine and returns its Task. A panic in fn
// rejects the task with ErrPanic.
func Go(fn func() (any, error)) *Task {
	t := newTask()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.settle(nil, fmt.Errorf("%w: %v", ErrPanic, r))
			}
		}()
		v, err := fn()
		t.settle(v, err)
	}()
	return t
}

// Resolved returns a Task already settled with v.
func Resolved(v any) *Task {
	t := newTask()
	t.settle(v, nil)
	return t
}

// Rejected returns a Task already settled with err.
func Rejected(err error) *Task {
	t := newTask()
	t.settle(nil, err)
	return t
}

// Of normalizes v to a Task: a *Task is returned as is, anything else is
// wrapped with Resolved.
func Of(v any) *Task {
	if t, ok := v.(*Task); ok {
		return t
	}
	return Resolved(v)
}

// Promise is a Task settled by hand.
type Promise struct {
	*Task
}

// NewPromise returns an unsettled Task and its settle handle.
func NewPromise() Promise {
	return Promise{Task: newTask()}
}

// Resolve settles the promise with v. Later calls are ignored.
func (p Promise) Resolve(v any) {
	p.settle(v, nil)
}

// Reject settles the promise with err. Later calls are ignored.
func (p Promise) Reject(err error) {
	p.settle(nil, err)
}

// Done is closed when the task settles.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Settled reports whether the task has settled.
func (t *Task) Settled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value and error. It must only be called after
// Done is closed; before that it returns (nil, nil).
func (t *Task) Result() (any, error) {
	if !t.Settled() {
		return nil, nil
	}
	return t.value, t.err
}

// Wait blocks until the task settles or ctx is done.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then returns a Task settled by running fn on loop with t's value once t
// settles. A rejection of t skips fn and propagates.
func Then(loop *Loop, t *Task, fn func(v any) (any, error)) *Task {
	next := newTask()
	go func() {
		<-t.done
		if t.err != nil {
			next.settle(nil, t.err)
			return
		}
		loop.Post(func() {
			defer func() {
				if r := recover(); r != nil {
					next.settle(nil, fmt.Errorf("%w: %v", ErrPanic, r))
				}
			}()
			v, err := fn(t.value)
			next.settle(v, err)
		})
	}()
	return next
}
