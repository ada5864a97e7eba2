// Package hxel provides a declarative authoring layer for custom elements
// rendered on the server.
//
// A Class describes one element type. Declarations attach behavior to the
// class (reflected attributes, observed properties, computed values, event
// listeners, slot views) and are composed into the element's lifecycle when
// the class is registered. Registered classes upgrade matching nodes of a
// lib/dom tree, which is then rendered as HTML with templ.
//
// # Classes and Hosts
//
// Each element is an *Element. A class may build a richer host value that
// embeds *Element and carries the native lifecycle methods:
//
//	type Counter struct {
//	    *hxel.Element
//	}
//
//	func (c *Counter) ConnectedCallback() { ... }
//
//	var CounterClass = hxel.NewClass("x-counter").
//	    WithHost(func(el *hxel.Element) hxel.Host { return &Counter{Element: el} })
//
// Subclasses created with Extend see every declaration of their parent;
// declarations on a subclass never reach the parent or its siblings.
//
// # Declarations
//
// Declarations are plain function calls made before the class is defined:
//
//	var (
//	    count = hxel.NumberAttr(CounterClass, "count")
//	    step  = hxel.NumberAttr(CounterClass, "step")
//	)
//
//	func init() {
//	    hxel.On(CounterClass, hxel.Selector("button"), "click", "Increment")
//	    hxel.Observe(CounterClass, "Render", "count")
//	}
//
// Stacked declarations on one property compose: each wraps the accessor
// that was visible when it was declared. After Registry.Define the class is
// sealed and further declarations panic with ErrClassDefined.
//
// # Change Propagation
//
// Observed properties compare every write with the element's previous value
// (see Same) and, when it changed, call the property's observer methods in
// registration order. Attribute reflection writes the attribute only when
// its formatted value differs, so a property write causes at most one
// attribute write. Compute derives a property from the properties its
// function reads.
//
// # Deferred Work
//
// A *async.Task written to a property is applied once it resolves. The
// continuation runs on the event loop (async.Main), never concurrently with
// other element code. Settle drains the loop and waits for every tracked
// task:
//
//	el.Set("data", async.Go(fetchData))
//	if err := hxel.Settle(ctx); err != nil {
//	    // one or more deferred writes failed
//	}
//
// # Serving
//
// Registry.Handler builds a document per request, upgrades it, settles
// pending work and renders it:
//
//	reg := hxel.NewRegistry(key)
//	reg.Define(CounterClass)
//	http.Handle("/", reg.Handler(buildPage))
//
// # Diagnostics
//
// Misconfigurations (a missing getter, an undefined tag, an observer with
// no dependencies) are logged as warnings through a zap logger and never
// stop the program. Replace it with SetLogger.
package hxel
