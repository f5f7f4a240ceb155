// Package server exposes conversion and rendering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/philipparndt/stl2glb/internal/config"
	"github.com/philipparndt/stl2glb/pkg/convert"
	"github.com/philipparndt/stl2glb/pkg/openscad"
)

const (
	contentTypeGLB = "model/gltf-binary"

	// statusClientClosedRequest is nginx's code for a client that went away
	// before the response was ready
	statusClientClosedRequest = 499
)

// Renderer produces binary STL from OpenSCAD source
type Renderer interface {
	Render(ctx context.Context, src openscad.Source) ([]byte, error)
}

// Server serves the HTTP API
type Server struct {
	cfg           config.ServerConfig
	renderer      Renderer
	renderTimeout time.Duration
	limiter       *rate.Limiter
	registry      *prometheus.Registry
	metrics       *Metrics
	log           *zap.Logger
}

// New creates a server. renderer may be nil, which disables /render.
func New(cfg config.ServerConfig, renderer Renderer, renderTimeout time.Duration, log *zap.Logger) *Server {
	registry := prometheus.NewRegistry()

	limit := rate.Limit(cfg.RenderRate)
	if cfg.RenderRate <= 0 {
		limit = rate.Inf
	}

	return &Server{
		cfg:           cfg,
		renderer:      renderer,
		renderTimeout: renderTimeout,
		limiter:       rate.NewLimiter(limit, max(cfg.RenderBurst, 1)),
		registry:      registry,
		metrics:       NewMetrics(registry),
		log:           log,
	}
}

// Handler returns the routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	factor, err := simplifyFactor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.convert(body, factor)
	if err != nil {
		s.log.Info("rejected STL upload", zap.Error(err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.writeGLB(w, r, data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		http.Error(w, "rendering is not configured", http.StatusNotImplemented)
		return
	}
	if !s.limiter.Allow() {
		s.metrics.Renders.WithLabelValues("throttled").Inc()
		http.Error(w, "too many render requests", http.StatusTooManyRequests)
		return
	}

	factor, err := simplifyFactor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	preview, _ := strconv.ParseBool(r.URL.Query().Get("preview"))

	ctx := r.Context()
	if s.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.renderTimeout)
		defer cancel()
	}

	stlData, err := s.renderer.Render(ctx, openscad.Source{Text: string(body), Preview: preview})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.metrics.Renders.WithLabelValues("canceled").Inc()
			s.log.Debug("render canceled by client", zap.Error(err))
			w.WriteHeader(statusClientClosedRequest)
			return
		}
		s.metrics.Renders.WithLabelValues("error").Inc()
		s.log.Warn("render failed", zap.Error(err))
		http.Error(w, err.Error(), renderStatus(err))
		return
	}
	s.metrics.Renders.WithLabelValues("ok").Inc()

	data, err := s.convert(stlData, factor)
	if err != nil {
		s.log.Error("OpenSCAD produced unreadable STL", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeGLB(w, r, data)
}

// convert runs the pipeline and records metrics
func (s *Server) convert(input []byte, factor float64) ([]byte, error) {
	start := time.Now()
	result, err := convert.ConvertSimplified(input, factor)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.Conversions.WithLabelValues("ok").Inc()
	s.metrics.Duration.Observe(elapsed.Seconds())
	s.metrics.Triangles.Add(float64(result.Mesh.TriangleCount))
	s.log.Debug("converted",
		zap.Uint32("triangles", result.Mesh.TriangleCount),
		zap.Int("bytes", len(result.GLB)),
		zap.Duration("elapsed", elapsed))

	return result.GLB, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}

	return body, true
}

func (s *Server) writeGLB(w http.ResponseWriter, r *http.Request, data []byte) {
	if r.URL.Query().Get("encoding") == "base64" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, convert.Base64(data))
		return
	}

	w.Header().Set("Content-Type", contentTypeGLB)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// simplifyFactor reads the optional ?simplify= decimation factor
func simplifyFactor(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("simplify")
	if raw == "" {
		return 0, nil
	}
	factor, err := strconv.ParseFloat(raw, 64)
	if err != nil || factor <= 0 || factor > 1 {
		return 0, fmt.Errorf("simplify must be a number in (0, 1], got %q", raw)
	}
	return factor, nil
}

func renderStatus(err error) int {
	var renderErr *openscad.RenderError
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, openscad.ErrNotInstalled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
