package async

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Set tracks in-flight tasks. A task is added by Track and removed when it
// settles. Rejections are reported to OnError as they happen and kept until
// the next Settle returns them, so a failure is never silently dropped.
type Set struct {
	mu       sync.Mutex
	tasks    map[*Task]struct{}
	changed  chan struct{}
	failures error

	// OnError is called (outside the set's lock) for every rejected task.
	OnError func(error)
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{
		tasks:   make(map[*Task]struct{}),
		changed: make(chan struct{}),
	}
}

// Pending is the process-wide set of in-flight work. It starts empty and
// needs no teardown.
var Pending = NewSet()

// Track adds t to the set and returns it. A nil task is ignored.
func (s *Set) Track(t *Task) *Task {
	if t == nil {
		return nil
	}
	s.mu.Lock()
	if _, ok := s.tasks[t]; ok {
		s.mu.Unlock()
		return t
	}
	s.tasks[t] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-t.done
		s.mu.Lock()
		delete(s.tasks, t)
		if t.err != nil {
			s.failures = multierr.Append(s.failures, t.err)
		}
		close(s.changed)
		s.changed = make(chan struct{})
		onError := s.OnError
		s.mu.Unlock()

		if t.err != nil && onError != nil {
			onError(t.err)
		}
	}()
	return t
}

// Len returns the number of tasks still in flight.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Settle waits until no tracked task is in flight and loop (which may be
// nil) has nothing queued, draining loop on the calling goroutine as it
// goes. It returns the combined rejections recorded since the previous
// call, or ctx's error if ctx ends first.
func (s *Set) Settle(ctx context.Context, loop *Loop) error {
	var wake <-chan struct{}
	if loop != nil {
		wake = loop.Wake()
	}

	for {
		if loop != nil {
			loop.Drain()
		}

		s.mu.Lock()
		inFlight := len(s.tasks)
		changed := s.changed
		s.mu.Unlock()

		if inFlight == 0 && (loop == nil || loop.Len() == 0) {
			return s.takeFailures()
		}

		select {
		case <-changed:
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Set) takeFailures() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.failures
	s.failures = nil
	return err
}
