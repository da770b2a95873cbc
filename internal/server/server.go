// Package server provides the HTTP REST API for the campus placement engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/campus-placement/internal/accounts"
	"github.com/jonathan/campus-placement/internal/analytics"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/jonathan/campus-placement/internal/placement"
	"github.com/jonathan/campus-placement/internal/server/middleware"
	"github.com/jonathan/campus-placement/internal/server/ratelimit"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       store.Store
	placement   *placement.Service
	accounts    *accounts.Service
	analytics   *analytics.Service
	inbox       *notify.Dispatcher
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port int
}

// Deps are the services the API is built on. Store, Placement, Accounts,
// Analytics, Notify and JWT are required.
type Deps struct {
	Store     store.Store
	Placement *placement.Service
	Accounts  *accounts.Service
	Analytics *analytics.Service
	Notify    *notify.Dispatcher
	JWT       *JWTService
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Placement == nil || deps.Accounts == nil || deps.Analytics == nil || deps.Notify == nil:
		return nil, errors.New("server: placement, accounts, analytics and notify services are required")
	case deps.JWT == nil:
		return nil, errors.New("server: JWT service is required")
	}

	s := &Server{
		store:       deps.Store,
		placement:   deps.Placement,
		accounts:    deps.Accounts,
		analytics:   deps.Analytics,
		inbox:       deps.Notify,
		jwtService:  deps.JWT,
		rateLimiter: deps.Limiter,
		metrics:     deps.Metrics,
		gatherer:    deps.Gatherer,
		logger:      deps.Logger,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.withRecover(s.withRateLimit(s.withLogging(s.withCORS(mux))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes registers every endpoint on mux.
func (s *Server) routes(mux *http.ServeMux) {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.store)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler(s.gatherer))

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/auth/me", protect(s.handleMe))

	// Students
	mux.Handle("GET /api/students", protect(s.handleListStudents))
	mux.Handle("GET /api/students/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /api/students/profile", protect(s.handleUpdateProfile))
	mux.Handle("GET /api/students/eligible-drives", protect(s.handleEligibleDrives))
	mux.Handle("GET /api/students/recommended-drives", protect(s.handleRecommendedDrives))
	mux.Handle("POST /api/students/apply", protect(s.handleApply))
	mux.Handle("GET /api/students/applications", protect(s.handleMyApplications))

	// Company drives
	mux.Handle("GET /api/companies", protect(s.handleListDrives))
	mux.Handle("POST /api/companies", protect(s.handleCreateDrive))
	mux.Handle("GET /api/companies/{id}", protect(s.handleGetDrive))
	mux.Handle("PUT /api/companies/{id}", protect(s.handleUpdateDrive))
	mux.Handle("DELETE /api/companies/{id}", protect(s.handleDeleteDrive))
	mux.Handle("GET /api/companies/{id}/eligible-students", protect(s.handleEligibleStudents))
	mux.Handle("GET /api/companies/{id}/applications", protect(s.handleDriveApplications))

	// Applications
	mux.Handle("GET /api/applications", protect(s.handleListApplications))
	mux.Handle("PUT /api/applications/{id}/status", protect(s.handleUpdateApplicationStatus))

	// Interviews
	mux.Handle("POST /api/interviews", protect(s.handleScheduleInterview))
	mux.Handle("GET /api/interviews", protect(s.handleListInterviews))
	mux.Handle("GET /api/interviews/me", protect(s.handleMyInterviews))

	// Placement office administration
	mux.Handle("GET /api/tpo/pending-students", protect(s.handlePendingStudents))
	mux.Handle("PUT /api/tpo/students/{id}/approve", protect(s.handleApproveStudent))
	mux.Handle("PUT /api/tpo/students/{id}/reject", protect(s.handleRejectStudent))
	mux.Handle("GET /api/tpo/recruiters", protect(s.handleListRecruiters))
	mux.Handle("POST /api/tpo/recruiters", protect(s.handleCreateRecruiter))
	mux.Handle("PUT /api/tpo/companies/{id}/recruiter", protect(s.handleAssignRecruiter))
	mux.Handle("GET /api/analytics", protect(s.handleAnalytics))

	// Notifications
	mux.Handle("GET /api/notifications", protect(s.handleListNotifications))
	mux.Handle("PUT /api/notifications/{id}/read", protect(s.handleMarkNotificationRead))
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// rate limiter. The store is owned by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withRecover turns a handler panic into a 500 response.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
				)
				s.errorResponse(w, apperr.Infrastructure(fmt.Errorf("panic: %v", rec), "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request and records it in the HTTP metrics under its
// route pattern.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", rec.status),
			slog.Duration("duration", elapsed),
			slog.String("client", s.extractClientID(r)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", slog.String("error", err.Error()))
	}
}

// success writes {"success": true, key: value} with status 200.
func (s *Server) success(w http.ResponseWriter, key string, value any) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, key: value})
}

// message writes {"success": true, "message": text} with status.
func (s *Server) message(w http.ResponseWriter, status int, text string) {
	s.jsonResponse(w, status, map[string]any{"success": true, "message": text})
}

// errorResponse writes err classified into its status and error body.
// Infrastructure failures are logged with their cause.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("error", err.Error()))
	}
	s.jsonResponse(w, status, newErrorBody(err))
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// actor returns the authenticated actor, or nil on unprotected routes.
func actor(r *http.Request) *types.Actor {
	a, _ := middleware.GetActor(r)
	return a
}

// parseQueryInt reads a non-negative integer query parameter, capped at maxValue when positive.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"kind":      "rate_limited",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		slog.String("client", s.extractClientID(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
