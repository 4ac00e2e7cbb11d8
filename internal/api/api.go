// Package api exposes the task service as a JSON HTTP API. The handlers
// are thin: decode, scope to the authenticated user, call storage or
// rules, encode. All business behavior lives below this package.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/huckwnmo101/taskdeck/internal/auth"
	"github.com/huckwnmo101/taskdeck/internal/rules"
	"github.com/huckwnmo101/taskdeck/internal/storage"
)

// Server wires storage, rules and auth behind the HTTP surface
type Server struct {
	store    storage.Storage
	rules    *rules.Service
	auth     *auth.Manager
	limiters *clientLimiters
}

// NewServer creates an API server. rateLimit is requests per second per
// client; 0 disables limiting.
func NewServer(store storage.Storage, rulesSvc *rules.Service, authMgr *auth.Manager, rateLimit float64) *Server {
	var limiters *clientLimiters
	if rateLimit > 0 {
		limiters = newClientLimiters(rate.Limit(rateLimit), int(rateLimit*2))
	}
	return &Server{
		store:    store,
		rules:    rulesSvc,
		auth:     authMgr,
		limiters: limiters,
	}
}

// Handler returns the fully assembled HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	// Categories
	mux.HandleFunc("GET /api/categories", s.requireAuth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.requireAuth(s.handleDeleteCategory))

	// Projects
	mux.HandleFunc("GET /api/projects", s.requireAuth(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.requireAuth(s.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", s.requireAuth(s.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.requireAuth(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.requireAuth(s.handleDeleteProject))
	mux.HandleFunc("GET /api/projects/{id}/stats", s.requireAuth(s.handleProjectStats))

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.requireAuth(s.handleListTasks))
	mux.HandleFunc("POST /api/tasks", s.requireAuth(s.handleCreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", s.requireAuth(s.handleGetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.requireAuth(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.requireAuth(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.requireAuth(s.handleToggleTask))

	// Today view
	mux.HandleFunc("GET /api/today", s.requireAuth(s.handleToday))
	mux.HandleFunc("GET /api/today/available", s.requireAuth(s.handleAvailableForToday))

	// Subtasks
	mux.HandleFunc("POST /api/tasks/{id}/subtasks", s.requireAuth(s.handleCreateSubtask))
	mux.HandleFunc("PUT /api/tasks/{id}/subtasks/{subtaskID}", s.requireAuth(s.handleUpdateSubtask))
	mux.HandleFunc("DELETE /api/tasks/{id}/subtasks/{subtaskID}", s.requireAuth(s.handleDeleteSubtask))

	// Comments
	mux.HandleFunc("POST /api/tasks/{id}/comments", s.requireAuth(s.handleCreateComment))
	mux.HandleFunc("PUT /api/comments/{id}", s.requireAuth(s.handleUpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", s.requireAuth(s.handleDeleteComment))

	// Statistics
	mux.HandleFunc("GET /api/stats/overview", s.requireAuth(s.handleStatsOverview))
	mux.HandleFunc("GET /api/stats/categories", s.requireAuth(s.handleStatsByCategory))

	return s.logRequests(s.rateLimit(mux))
}

type ctxKey int

const userIDKey ctxKey = 0

// userID returns the authenticated user id placed on the context by
// requireAuth
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// requireAuth resolves the bearer token and rejects the request when it
// is missing or invalid
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		id, err := s.auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	}
}

// statusRecorder captures the response status for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiters == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies a client for rate limiting by its remote host
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientLimiters keeps a token bucket per client host
type clientLimiters struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiters{
		m:     make(map[string]*rate.Limiter),
		limit: limit,
		burst: burst,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	limiter, ok := c.m[key]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.m[key] = limiter
	}
	c.mu.Unlock()
	return limiter.Allow()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFieldErrors reports a validation failure with per-field messages
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

func writeNotFound(w http.ResponseWriter) {
	// Foreign-owned ids get the same answer as missing ones
	writeError(w, http.StatusNotFound, "not found")
}

func writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Printf("error %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// pathID parses a positive integer path segment
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
