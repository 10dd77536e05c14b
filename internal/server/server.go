// Package server exposes the admin tables over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
	"admin_dashboard/internal/pages"
)

// Server serves the data and export endpoints of every admin page.
type Server struct {
	env pages.Env
	log *slog.Logger
}

// New creates a Server reading rows through env.
func New(env pages.Env, log *slog.Logger) *Server {
	return &Server{env: env, log: log}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/admin/{page}", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Get("/export", s.handleExport)
	})

	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// draw opens the requested page, applies the query and redraws its table.
func (s *Server) draw(w http.ResponseWriter, r *http.Request) (*pages.View, datatable.Query, bool) {
	page, ok := pages.Lookup(chi.URLParam(r, "page"))
	if !ok {
		http.NotFound(w, r)
		return nil, datatable.Query{}, false
	}

	q, err := datatable.ParseQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, q, false
	}

	view, err := page.Open(r.Context(), s.env)
	if err != nil {
		s.log.Error("open page", "page", page.Name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, q, false
	}

	q.Apply(view.Table, page.DefaultOrder...)
	view.ApplyParams(q)
	view.Table.Redraw()
	return view, q, true
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	view, q, ok := s.draw(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(datatable.NewResponse(q, view.Table)); err != nil {
		s.log.Error("encode response", "page", view.Page.Name, "error", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, _, ok := s.draw(w, r)
	if !ok {
		return
	}

	spec := view.Page.Export
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", spec.FileName()))
	if err := export.Write(w, spec, view.Table.Columns(), view.Table.Visible()); err != nil {
		s.log.Error("write export", "page", view.Page.Name, "error", err)
	}
}
