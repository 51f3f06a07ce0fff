// Package viewer serves computed reports over HTTP.
package viewer

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/reporter"
	"github.com/joshharrison/gantry/internal/store"
)

// Server exposes the report API. People may be nil.
type Server struct {
	Store   store.TimelineStore
	People  store.PersonDirectory
	Options engine.Options
	Log     *slog.Logger
	// Clock supplies the reference day when a request does not pass one.
	Clock func() time.Time

	metrics  *Metrics
	registry *prometheus.Registry
}

// New creates a Server with its own metrics registry.
func New(ts store.TimelineStore, people store.PersonDirectory, opts engine.Options, log *slog.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		Store:    ts,
		People:   people,
		Options:  opts,
		Log:      log,
		Clock:    time.Now,
		metrics:  NewMetrics(reg),
		registry: reg,
	}
}

// Routes returns the chi router for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.handleProjects)
		r.Get("/{project}/versions", s.handleVersions)
		r.Get("/{project}/report", s.handleReport)
	})
	return r
}

// instrument records request counts and latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Requests.WithLabelValues(route, fmt.Sprint(status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Store.Projects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if projects == nil {
		projects = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": projects})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	versions, err := s.Store.Versions(r.Context(), project)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":  project,
		"versions": versions,
		"latest":   store.Latest(versions),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	q := r.URL.Query()

	now := s.Clock()
	if raw := q.Get("now"); raw != "" {
		t, ok := dates.Parse(raw)
		if !ok {
			http.Error(w, fmt.Sprintf("invalid now %q", raw), http.StatusBadRequest)
			return
		}
		now = t
	}

	doc, err := s.Store.Timeline(r.Context(), project, q.Get("version"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var labels map[string]string
	if s.People != nil {
		labels, err = s.People.Labels(r.Context())
		if err != nil {
			s.logger().Warn("person directory unavailable", "error", err)
		}
	}

	start := time.Now()
	rep := engine.Compute(doc.Timeline, engine.Input{
		Module:  q.Get("module"),
		Group:   q.Get("group"),
		Now:     now,
		People:  labels,
		Options: s.Options,
	})
	s.observe(project, rep, time.Since(start))

	data, err := reporter.New(rep, doc.Project, doc.Version).JSON()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) observe(project string, rep *engine.Report, took time.Duration) {
	s.metrics.ReportsComputed.WithLabelValues(project).Inc()
	s.metrics.ComputeDuration.Observe(took.Seconds())
	s.metrics.CompletionPct.WithLabelValues(project).Set(float64(rep.KPIs.CompletionPct))
	s.metrics.RiskLoad.WithLabelValues(project).Set(float64(rep.KPIs.RiskLoad))
	s.metrics.TotalDelayDays.WithLabelValues(project).Set(rep.KPIs.TotalDelayDays)
	s.metrics.CostVariance.WithLabelValues(project).Set(rep.KPIs.Cost.Variance)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger().Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger().Info("viewer listening", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
