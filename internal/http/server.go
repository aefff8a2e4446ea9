// Package http exposes the JSON API: entity CRUD, invoice lifecycle and
// the dashboard aggregation endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "faturas/internal/log"
	"faturas/internal/services"
	"faturas/internal/store"
)

// Query parameter defaults applied at the boundary.
const (
	defaultTopPartnersLimit = 5
	defaultUpcomingDays     = 30
)

const requestsPerMinute = 120

type Server struct {
	http.Server
	store       store.Store
	dashboard   *services.DashboardService
	invoices    *services.InvoiceService
	rateLimiter *rateLimiter
	logs        *applog.StructuredLogger

	// now is sampled once per request when classifying invoice statuses.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. A nil clock defaults to time.Now.
func NewServer(addr string, st store.Store, dashboard *services.DashboardService, invoices *services.InvoiceService, clock func() time.Time) *Server {
	if clock == nil {
		clock = time.Now
	}

	mux := http.NewServeMux()
	logger := applog.Default(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(logger)(mux),
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:       st,
		dashboard:   dashboard,
		invoices:    invoices,
		rateLimiter: newRateLimiter(requestsPerMinute),
		logs:        applog.NewStructuredLogger(logger),
		now:         clock,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/partners", s.withMiddleware(s.handleListPartners))
	mux.HandleFunc("POST /api/partners", s.withMiddleware(s.handleCreatePartner))
	mux.HandleFunc("GET /api/partners/{id}", s.withMiddleware(s.handleGetPartner))
	mux.HandleFunc("PUT /api/partners/{id}", s.withMiddleware(s.handleUpdatePartner))
	mux.HandleFunc("DELETE /api/partners/{id}", s.withMiddleware(s.handleDeletePartner))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", s.withMiddleware(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withMiddleware(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/invoices", s.withMiddleware(s.handleListInvoices))
	mux.HandleFunc("POST /api/invoices", s.withMiddleware(s.handleCreateInvoice))
	mux.HandleFunc("GET /api/invoices/{id}", s.withMiddleware(s.handleGetInvoice))
	mux.HandleFunc("PUT /api/invoices/{id}", s.withMiddleware(s.handleUpdateInvoice))
	mux.HandleFunc("DELETE /api/invoices/{id}", s.withMiddleware(s.handleDeleteInvoice))
	mux.HandleFunc("POST /api/invoices/{id}/payment", s.withMiddleware(s.handleRecordPayment))
	mux.HandleFunc("POST /api/invoices/{id}/cancel", s.withMiddleware(s.handleCancelInvoice))

	mux.HandleFunc("GET /api/dashboard/stats", s.withMiddleware(s.handleDashboardStats))
	mux.HandleFunc("GET /api/dashboard/top-partners", s.withMiddleware(s.handleTopPartners))
	mux.HandleFunc("GET /api/dashboard/category-distribution", s.withMiddleware(s.handleCategoryDistribution))
	mux.HandleFunc("GET /api/dashboard/upcoming-invoices", s.withMiddleware(s.handleUpcomingInvoices))
	mux.HandleFunc("GET /api/dashboard/overdue-invoices", s.withMiddleware(s.handleOverdueInvoices))

	return s
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request ids, security headers, rate limiting and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, requestID)
		ctx := applog.ContextWithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, requestID, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logs.LogHTTPEnd(ctx, r, requestID, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady probes the backend when it exposes a health check; stores
// without one (in-memory) are always ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness probe failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
