package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/hxel"
	"github.com/pthm/hxel/internal/fixture"
	"github.com/pthm/hxel/lib/dom"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve the fixtures in a directory as HTML documents",
		Long: `Serve renders <dir>/<name>.yaml at /<name> on every request. The index
lists the available fixtures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              a.cfg.Addr,
				Handler:           a.router(args[0]),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			hxel.Logger().Info("serving fixtures", zap.String("addr", a.cfg.Addr), zap.String("dir", args[0]))

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdown); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// router serves the fixtures of dir. Documents share one event loop, so
// requests are rendered one at a time.
func (a *app) router(dir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(1))
	r.Use(middleware.Timeout(a.cfg.SettleTimeout))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		names, err := fixtureNames(dir)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		doc := dom.NewDocument()
		list := dom.NewElement("ul")
		for _, name := range names {
			link := dom.NewElement("a")
			link.SetAttribute("href", "/"+name)
			link.SetTextContent(name)
			item := dom.NewElement("li")
			item.Append(link)
			list.Append(item)
		}
		doc.Body().Append(list)
		if err := hxel.Render(w, req, doc.Node().Component()); err != nil {
			hxel.Logger().Error("write index", zap.Error(err))
		}
	})

	page := a.reg.Handler(func(req *http.Request) (*dom.Document, error) {
		f, err := fixture.LoadFile(fixturePath(dir, chi.URLParam(req, "name")))
		if err != nil {
			return nil, err
		}
		return f.Build(a.reg)
	})
	r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if strings.ContainsAny(name, `/\.`) {
			http.NotFound(w, req)
			return
		}
		if _, err := os.Stat(fixturePath(dir, name)); err != nil {
			http.NotFound(w, req)
			return
		}
		page.ServeHTTP(w, req)
	})
	return r
}

func fixturePath(dir, name string) string {
	return filepath.Join(dir, name+".yaml")
}

// fixtureNames lists the fixtures of dir in lexical order.
func fixtureNames(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".yaml"))
	}
	return names, nil
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		hxel.Logger().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
