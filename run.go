package hxel

import (
	"time"

	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/lazy"
)

type lockSet struct {
	names map[string]bool
}

// RunLock prevents overlapping runs of the same named operation on the same
// object. Objects are held weakly.
type RunLock[T any] struct {
	running *lazy.WeakMap[T, *lockSet]
}

// NewRunLock creates an empty RunLock.
func NewRunLock[T any]() *RunLock[T] {
	return &RunLock[T]{
		running: lazy.NewWeak(func(*lazy.WeakMap[T, *lockSet], *T) *lockSet {
			return &lockSet{names: make(map[string]bool)}
		}),
	}
}

// Run calls fn unless name is already running on obj. It reports whether fn
// ran.
func (l *RunLock[T]) Run(obj *T, name string, fn func()) bool {
	set := l.running.Get(obj)
	if set.names[name] {
		return false
	}
	set.names[name] = true
	defer delete(set.names, name)
	fn()
	return true
}

// Running reports whether name is running on obj.
func (l *RunLock[T]) Running(obj *T, name string) bool {
	set, ok := l.running.MaybeGet(obj)
	return ok && set.names[name]
}

// methodAccessor returns the method accessor of cls for method, falling back
// to the host's Go method of that name.
func methodAccessor(cls *Class, method string) *Accessor {
	if acc := cls.Accessor(method); acc != nil && acc.Method != nil {
		return acc
	}
	return &Accessor{Method: func(el *Element, args ...any) any {
		v, ok := el.callHost(method, args)
		if !ok {
			warn("method not found", append(el.fields(), zap.String("method", method))...)
		}
		return v
	}}
}

type debounceState struct {
	timer   *time.Timer
	pending async.Promise
}

// Debounce delays method until d has passed without another call on the
// same element; an earlier pending call is dropped. Each call returns a
// task tracked in the pending-work set, settled once the call runs or is
// dropped. The method runs on the event loop.
func Debounce(cls *Class, method string, d time.Duration) {
	cls.mustBeOpen()
	existing := methodAccessor(cls, method)
	states := lazy.NewWeak(func(*lazy.WeakMap[Element, *debounceState], *Element) *debounceState {
		return &debounceState{}
	})

	cls.setAccessor(method, &Accessor{Method: func(el *Element, args ...any) any {
		st := states.Get(el)
		if st.timer != nil && st.timer.Stop() {
			st.pending.Resolve(false)
		}

		p := async.NewPromise()
		st.pending = p
		st.timer = time.AfterFunc(d, func() { p.Resolve(true) })

		return async.Pending.Track(async.Then(async.Main, p.Task, func(run any) (any, error) {
			if ok, _ := run.(bool); ok {
				return existing.Method(el, args...), nil
			}
			return nil, nil
		}))
	}})
}
