// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package gateway is the HTTP front of dbgate. It maps GET routes and query
// parameters onto core requests, runs them through the execution engine and
// writes the normalized response. All SQL handling lives below this package.
package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pterm/pterm"

	"dbgate/cli/internal/assets"
	"dbgate/cli/internal/logging"
	"dbgate/cli/internal/sqlexec"
	"dbgate/cli/internal/stmt"
)

// Server dispatches gateway routes.
type Server struct {
	exec    *sqlexec.Executor
	builder *stmt.Builder
	assets  assets.Source
	logger  *pterm.Logger
	mux     *http.ServeMux
}

// New wires the routes. src may be nil, in which case page routes return 404.
func New(exec *sqlexec.Executor, builder *stmt.Builder, src assets.Source, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{exec: exec, builder: builder, assets: src, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/tables", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewListTables()
	}))
	s.mux.HandleFunc("GET /api/tables/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewSelectAll(r.PathValue("name"))
	}))
	s.mux.HandleFunc("GET /api/describe/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewDescribeTable(r.PathValue("name"))
	}))
	s.mux.HandleFunc("GET /api/create", s.op(func(r *http.Request) stmt.Request {
		q := r.URL.Query()
		return stmt.NewCreateTable(q.Get("name"), columns(q))
	}))
	s.mux.HandleFunc("GET /api/drop/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewDropTable(r.PathValue("name"))
	}))
	s.mux.HandleFunc("GET /api/truncate/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewTruncateTable(r.PathValue("name"))
	}))
	s.mux.HandleFunc("GET /api/update", s.op(func(r *http.Request) stmt.Request {
		q := r.URL.Query()
		return stmt.NewUpdateRow(q.Get("table"), q.Get("column"), optional(q, "value"), q.Get("pcol"), optional(q, "pval"))
	}))
	s.mux.HandleFunc("GET /api/delete", s.op(func(r *http.Request) stmt.Request {
		q := r.URL.Query()
		return stmt.NewDeleteRow(q.Get("table"), q.Get("pcol"), optional(q, "pval"))
	}))
	s.mux.HandleFunc("GET /api/procedure/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewCallProcedure(r.PathValue("name"), numbered(r.URL.Query(), "p"))
	}))
	s.mux.HandleFunc("GET /api/function/{name}", s.op(func(r *http.Request) stmt.Request {
		return stmt.NewCallFunction(r.PathValue("name"), numbered(r.URL.Query(), "p"))
	}))

	s.mux.HandleFunc("GET /healthz", s.healthz)

	for route, file := range assets.Pages {
		pattern := "GET " + route
		if route == "/" {
			pattern = "GET /{$}"
		}
		s.mux.HandleFunc(pattern, s.page(file))
	}
}

// op adapts a request decoder into a handler that executes the operation.
func (s *Server) op(decode func(r *http.Request) stmt.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := decode(r)
		start := time.Now()
		out := s.exec.Run(r.Context(), s.builder, req)

		fields := []any{"op", string(req.Op), "duration", time.Since(start).String(), "outcome", string(out.Kind)}
		if out.Kind == sqlexec.OutcomeError {
			fields = append(fields, "kind", string(out.ErrorKind()))
		}
		s.logger.Info("request", s.logger.Args(fields...))

		writeOutcome(w, r, out)
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.exec.DB.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) page(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.assets == nil {
			http.NotFound(w, r)
			return
		}
		rc, err := s.assets.Open(r.Context(), file)
		if err != nil {
			if errors.Is(err, assets.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			s.logger.Error("static page failed", s.logger.Args("file", file, "source", s.assets.String(), "error", err.Error()))
			http.Error(w, "static asset unavailable", http.StatusBadGateway)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.Copy(w, rc)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight statements finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("gateway listening", s.logger.Args("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
