package hxelecho

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pthm/hxel"
	"github.com/pthm/hxel/examples/widgets"
	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/dom"
)

func newRegistry() *hxel.Registry {
	reg := hxel.NewRegistry([]byte("echo-test-key"))
	widgets.Define(reg)
	return reg
}

// panelDocument builds a document with one x-panel labelled by the label
// query parameter.
func panelDocument(c echo.Context) (*dom.Document, error) {
	doc := dom.NewDocument()
	panel := dom.NewElement("x-panel")
	panel.SetAttribute("label", c.QueryParam("label"))
	doc.Body().Append(panel)
	return doc, nil
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMount(t *testing.T) {
	e := echo.New()
	Mount(e, "/panel", newRegistry(), panelDocument)

	rec := serve(e, "/panel?label=Hello")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, `<h2 slot="title">Hello</h2>`) {
		t.Errorf("body missing slotted heading:\n%s", body)
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/app")
	MountGroup(g, "/panel", newRegistry(), panelDocument)

	if rec := serve(e, "/app/panel?label=x"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := serve(e, "/panel"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBuildError(t *testing.T) {
	e := echo.New()
	Mount(e, "/broken", newRegistry(), func(echo.Context) (*dom.Document, error) {
		return nil, echo.NewHTTPError(http.StatusTeapot, "no")
	})

	if rec := serve(e, "/broken"); rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestSettleFailure(t *testing.T) {
	e := echo.New()
	Mount(e, "/failing", newRegistry(), func(echo.Context) (*dom.Document, error) {
		async.Pending.Track(async.Rejected(errors.New("boom")))
		return dom.NewDocument(), nil
	})

	if rec := serve(e, "/failing"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
