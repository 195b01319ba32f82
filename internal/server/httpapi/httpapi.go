// Package httpapi is the plain HTTP edge: health, Prometheus metrics and
// redirecting download and preview links for browsers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/auth"
	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/services"
)

type AccessIssuer interface {
	DownloadURL(ctx context.Context, milestoneID string, actor models.Actor) (string, error)
	Preview(ctx context.Context, milestoneID string, actor models.Actor) (services.PreviewResult, error)
}

type Server struct {
	address   string
	access    AccessIssuer
	gatherer  prometheus.Gatherer
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, m *metrics.Metrics, g prometheus.Gatherer, access AccessIssuer, secretKey string) *Server {
	return &Server{
		address:   address,
		access:    access,
		gatherer:  g,
		metrics:   m,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/milestones/{id}", func(r chi.Router) {
		r.Use(s.bearer)
		r.Get("/download", s.handleDownload)
		r.Get("/preview", s.handlePreview)
	})
	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type ctxKey string

const actorKey ctxKey = "actor"

// bearer resolves the actor from an Authorization: Bearer token.
func (s *Server) bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing token")
			return
		}
		actor, err := auth.ActorFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestIDHeader echoes the id that also appears in error bodies and logs.
const RequestIDHeader = "X-Request-ID"

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := newRequestID()
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(r.Method, route, strconv.Itoa(rec.status), elapsed)
		}

		args := []any{"method", r.Method, "route", route, "status", rec.status, "duration", elapsed}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "http request failed", args...)
		} else {
			s.logger.Debug(r.Context(), "http request", args...)
		}
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	actor, _ := r.Context().Value(actorKey).(models.Actor)
	url, err := s.access.DownloadURL(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	actor, _ := r.Context().Value(actorKey).(models.Actor)
	p, err := s.access.Preview(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, p.URL, http.StatusFound)
}
