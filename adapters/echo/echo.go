// Package hxelecho serves hxel documents from the Echo framework.
//
//	e := echo.New()
//	reg := hxel.NewRegistry(key)
//	widgets.Define(reg)
//	hxelecho.Mount(e, "/dashboard", reg, buildDashboard)
//
// Or on a group, sharing its middleware:
//
//	g := e.Group("/app", authMiddleware)
//	hxelecho.MountGroup(g, "/dashboard", reg, buildDashboard)
package hxelecho

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxel"
	"github.com/pthm/hxel/lib/dom"
)

// Build creates the document for a request.
type Build func(c echo.Context) (*dom.Document, error)

// Handler builds a document per request, upgrades its custom elements,
// settles pending work and renders it. Build errors are passed to Echo's
// error handler unchanged; settle failures become a 500.
func Handler(reg *hxel.Registry, build Build) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := build(c)
		if err != nil {
			return err
		}
		reg.Upgrade(doc.Node())
		if err := hxel.Settle(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "document did not settle").SetInternal(err)
		}
		return Render(c, doc.Node().Component())
	}
}

// Mount serves the document built by build at path.
func Mount(e *echo.Echo, path string, reg *hxel.Registry, build Build) {
	e.GET(path, Handler(reg, build))
}

// MountGroup serves the document built by build at path within g.
func MountGroup(g *echo.Group, path string, reg *hxel.Registry, build Build) {
	g.GET(path, Handler(reg, build))
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxelecho.Render(c, doc.Node().Component())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
