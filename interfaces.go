package hxel

// Host is implemented by every element instance. Types built by a class
// factory embed *Element, which provides Base.
//
// Example:
//
//	type Counter struct {
//	    *hxel.Element
//	    clicks int
//	}
//
//	var CounterClass = hxel.NewClass("x-counter").
//	    WithHost(func(el *hxel.Element) hxel.Host { return &Counter{Element: el} })
type Host interface {
	Base() *Element
}

// ConnectedCallbacker is the native connected behavior of a host type.
// It runs at the bottom of the class's connected chain, before any
// callback registered with OnConnected.
type ConnectedCallbacker interface {
	ConnectedCallback()
}

// DisconnectedCallbacker is the native disconnected behavior of a host type.
type DisconnectedCallbacker interface {
	DisconnectedCallback()
}

// AttributeChangedCallbacker is the native attribute behavior of a host
// type. It only fires for observed attributes. A nil value means the
// attribute is absent.
//
// Example:
//
//	func (c *Counter) AttributeChangedCallback(name string, old, value *string) {
//	    if name == "step" && value != nil {
//	        c.step, _ = strconv.Atoi(*value)
//	    }
//	}
type AttributeChangedCallbacker interface {
	AttributeChangedCallback(name string, old, value *string)
}
