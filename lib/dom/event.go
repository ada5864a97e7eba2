package dom

import "slices"

// Event is dispatched through the tree. Detail carries CustomEvent data.
type Event struct {
	Type     string
	Detail   any
	Bubbles  bool
	Composed bool

	Target        *Node
	CurrentTarget *Node

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event with the given options.
func NewEvent(typ string, init EventInit) *Event {
	return &Event{
		Type:     typ,
		Detail:   init.Detail,
		Bubbles:  init.Bubbles,
		Composed: init.Composed,
	}
}

// EventInit configures NewEvent.
type EventInit struct {
	Detail   any
	Bubbles  bool
	Composed bool
}

// PreventDefault marks the event as canceled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops dispatch to further nodes.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener is a registered event handler. Keep it to remove the handler.
type Listener struct {
	typ  string
	fn   func(*Event)
	once bool
}

// ListenerOptions configures AddEventListener.
type ListenerOptions struct {
	Once bool
}

// AddEventListener registers fn for events of typ reaching n.
func (n *Node) AddEventListener(typ string, fn func(*Event), opts ...ListenerOptions) *Listener {
	l := &Listener{typ: typ, fn: fn}
	for _, o := range opts {
		l.once = l.once || o.Once
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*Listener)
	}
	n.listeners[typ] = append(n.listeners[typ], l)
	return l
}

// RemoveEventListener unregisters l.
func (n *Node) RemoveEventListener(l *Listener) {
	if l == nil {
		return
	}
	list := n.listeners[l.typ]
	if i := slices.Index(list, l); i >= 0 {
		n.listeners[l.typ] = slices.Delete(list, i, i+1)
	}
}

// ListenerCount returns the number of listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent runs listeners on n and, for bubbling events, on its
// ancestors. Composed events cross from a shadow root to its host. It
// returns false if a listener called PreventDefault.
func (n *Node) DispatchEvent(e *Event) bool {
	e.Target = n
	for cur := n; cur != nil && !e.stopped; {
		cur.invoke(e)
		if !e.Bubbles {
			break
		}
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.typ == ShadowRootNode && e.Composed:
			cur = cur.host
		default:
			cur = nil
		}
	}
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

func (n *Node) invoke(e *Event) {
	e.CurrentTarget = n
	for _, l := range slices.Clone(n.listeners[e.Type]) {
		if l.once {
			n.RemoveEventListener(l)
		}
		l.fn(e)
	}
}
