// Package api serves the job board over HTTP as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/amishk599/jobboard/internal/ai"
	"github.com/amishk599/jobboard/internal/board"
	"github.com/amishk599/jobboard/internal/policy"
)

// UserHeader carries the caller's user id. It is asserted by the client and
// not verified.
const UserHeader = "X-User-ID"

// Studio is the generation surface the API exposes.
type Studio interface {
	EditImage(ctx context.Context, image, instruction string) (*ai.Media, error)
	AnimateImage(ctx context.Context, image, instruction, aspect string) (*ai.Media, error)
}

// Config holds the server dependencies.
type Config struct {
	Board        *board.Service
	Studio       Studio // nil disables the studio routes
	Policy       policy.Policy
	Version      string
	WriteLimit   float64 // write requests per second per client IP, 0 for unlimited
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	board        *board.Service
	studio       Studio
	policy       policy.Policy
	version      string
	writeLimit   float64
	maxBodyBytes int64
	logger       *slog.Logger
}

// New validates cfg and creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Board == nil {
		return nil, errors.New("api server: board service is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("api server: policy is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 << 20
	}
	return &Server{
		board:        cfg.Board,
		studio:       cfg.Studio,
		policy:       cfg.Policy,
		version:      cfg.Version,
		writeLimit:   cfg.WriteLimit,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       cfg.Logger,
	}, nil
}

// Run serves on address until ctx is cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// animation requests wait for the whole generation
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shutdown server", "error", err)
		}
	}()

	s.logger.Info("starting api server", "address", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	router := routegroup.New(http.NewServeMux())
	backend := slogBackend{s.logger}

	router.Use(
		rest.RealIP,
		rest.Recoverer(backend),
		rest.Throttle(1000),
		rest.AppInfo("jobboard", "jobboard", s.version),
		rest.Ping,
		rest.SizeLimit(s.maxBodyBytes),
		logger.New(logger.Log(backend), logger.Prefix("[DEBUG]")).Handler,
	)

	write := s.writeLimiter()

	router.Mount("/api").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)

		api.With(write).HandleFunc("POST /login", s.handleLogin)
		api.HandleFunc("GET /stats", s.handleStats)

		api.HandleFunc("GET /jobs", s.handleListJobs)
		api.HandleFunc("GET /jobs/{id}", s.handleGetJob)
		api.With(write).HandleFunc("POST /jobs", s.handlePostJob)
		api.With(write).HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
		api.With(write).HandleFunc("POST /jobs/{id}/apply", s.handleApply)

		api.Mount("/admin").Route(func(admin *routegroup.Bundle) {
			admin.Use(s.requireAdmin)
			admin.HandleFunc("GET /applications", s.handleListApplications)
			admin.HandleFunc("DELETE /applications/{id}", s.handleDeleteApplication)
		})

		api.Mount("/studio").Route(func(studio *routegroup.Bundle) {
			studio.Use(write)
			studio.HandleFunc("POST /edit", s.handleStudioEdit)
			studio.HandleFunc("POST /animate", s.handleStudioAnimate)
		})
	})

	return router
}

// writeLimiter throttles mutating requests per client IP.
func (s *Server) writeLimiter() func(http.Handler) http.Handler {
	if s.writeLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	lmt := tollbooth.NewLimiter(s.writeLimit, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"too many requests"}`)
	return tollbooth.HTTPMiddleware(lmt)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.policy.IsAdmin(r.Header.Get(UserHeader)) {
			s.writeJSONError(w, http.StatusForbidden, "administrator only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// slogBackend lets go-pkgz/rest middleware log through slog.
type slogBackend struct {
	logger *slog.Logger
}

func (b slogBackend) Logf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
