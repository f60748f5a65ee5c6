// Package preview serves a built site locally and rebuilds it when its sources change.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/commercemesh/cmpsite/internal/logfields"
	"github.com/commercemesh/cmpsite/internal/metrics"
	"github.com/commercemesh/cmpsite/internal/plugin/livereload"
)

const (
	defaultAddr     = "127.0.0.1:3000"
	defaultDebounce = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// BuildFunc rebuilds the site and returns the new build id.
type BuildFunc func(ctx context.Context) (string, error)

// Options configures a preview Server.
type Options struct {
	Addr       string
	OutputDir  string
	WatchFiles []string
	Debounce   time.Duration
	Metrics    *prom.Registry
	Logger     *slog.Logger
}

// Server is the local preview server.
type Server struct {
	opts   Options
	build  BuildFunc
	hub    *Hub
	logger *slog.Logger
	status buildStatus

	rebuildReq chan struct{}

	mu       sync.Mutex
	listener net.Listener
}

// buildStatus tracks the last build for /healthz and the error page.
type buildStatus struct {
	mu           sync.RWMutex
	lastBuildID  string
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess(id string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastBuildID = id
	bs.lastError = nil
	bs.hasGoodBuild = true
}

func (bs *buildStatus) get() (id string, err error, hasGoodBuild bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastBuildID, bs.lastError, bs.hasGoodBuild
}

// New creates a server. build is called once on Run and after every debounced change.
func New(opts Options, build BuildFunc) *Server {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		opts:       opts,
		build:      build,
		hub:        NewHub(opts.Logger),
		logger:     opts.Logger,
		rebuildReq: make(chan struct{}, 1),
	}
}

// Hub returns the reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Addr returns the bound listen address once Run is serving, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Handler returns the preview router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.NoCache)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", metrics.HTTPHandler(s.opts.Metrics))
	}
	r.Handle(livereload.DefaultEndpoint, s.hub)

	files := http.FileServer(http.Dir(s.opts.OutputDir))
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, err, good := s.status.get(); err != nil && !good {
			http.Error(w, "build failed: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		files.ServeHTTP(w, req)
	}))
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			logfields.Method(r.Method),
			logfields.URL(r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", chimw.GetReqID(r.Context())),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	BuildID string `json:"build_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	id, err, good := s.status.get()
	resp := healthResponse{Status: "ok", BuildID: id, Clients: s.hub.Clients()}
	code := http.StatusOK
	switch {
	case err != nil:
		resp.Status = "error"
		resp.Error = err.Error()
		if !good {
			code = http.StatusServiceUnavailable
		}
	case !good:
		resp.Status = "starting"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Rebuild runs the build and, on success, tells connected clients to reload.
// A failed build keeps the previous output in place.
func (s *Server) Rebuild(ctx context.Context) error {
	id, err := s.build(ctx)
	if err != nil {
		s.status.setError(err)
		s.logger.Error("Preview build failed", logfields.Error(err))
		return err
	}
	s.status.setSuccess(id)
	s.hub.Broadcast(id)
	return nil
}

// RequestRebuild queues a rebuild; requests made while one is pending coalesce.
func (s *Server) RequestRebuild() {
	select {
	case s.rebuildReq <- struct{}{}:
	default:
	}
}

// Run performs the initial build, serves until ctx is canceled, and rebuilds on changes.
func (s *Server) Run(ctx context.Context) error {
	// The initial build may fail; the server still starts so the error is visible.
	_ = s.Rebuild(ctx)

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	s.logger.Info("Preview server listening", logfields.URL("http://"+s.Addr()))

	watcher, err := newWatcher(s.opts.WatchFiles, s.opts.Debounce, s.RequestRebuild, s.logger)
	if err != nil {
		_ = srv.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()
	go watcher.run(ctx)

	for {
		select {
		case <-ctx.Done():
			s.hub.Shutdown()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown preview server: %w", err)
			}
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return fmt.Errorf("preview server: %w", err)
			}
			return nil
		case <-s.rebuildReq:
			s.logger.Info("Change detected, rebuilding")
			_ = s.Rebuild(ctx)
		}
	}
}
