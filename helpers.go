package hxel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/dom"
)

// Settle runs queued continuations on the event loop and waits until every
// tracked task has settled. Failures recorded since the last call are
// returned combined and wrapped in ErrTaskFailed.
//
// Call it from the goroutine that drives the document.
func Settle(ctx context.Context) error {
	err := async.Pending.Settle(ctx, async.Main)
	if err == nil || err == ctx.Err() {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTaskFailed, err)
}

// Drain runs the continuations queued on the event loop without waiting and
// returns how many ran.
func Drain() int {
	return async.Main.Drain()
}

// Component renders the element, its shadow root and its children.
func Component(h Host) templ.Component {
	return h.Base().node.Component()
}

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    hxel.Render(w, r, doc.Node().Component())
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Handler serves documents built per request. Pending work is settled
// before rendering, so deferred values are reflected in the output. A build
// or settle error is logged and answered with 500.
func (reg *Registry) Handler(build func(r *http.Request) (*dom.Document, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, err := build(r)
		if err == nil {
			reg.Upgrade(doc.Node())
			err = Settle(r.Context())
		}
		if err != nil {
			Logger().Error("render document", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if err := Render(w, r, doc.Node().Component()); err != nil {
			Logger().Error("write document", zap.String("path", r.URL.Path), zap.Error(err))
		}
	})
}
