package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"advisor360/internal/cache"
	"advisor360/internal/log"
	"advisor360/internal/middleware/cors"
	"advisor360/internal/middleware/ratelimit"
	"advisor360/internal/middleware/security"
	"advisor360/internal/middleware/trace"
	"advisor360/internal/services"
)

const dashboardCacheTTL = 5 * time.Minute

type Server struct {
	http.Server

	commissions *services.CommissionService
	partners    *services.PartnerService
	dashboard   *services.DashboardService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// Dashboard aggregations are recomputed from the full commission set,
	// so responses are cached and purged wholesale on every write.
	dashboardCache *cache.LRUCache[any]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// Config carries the server's HTTP-level settings.
type Config struct {
	Addr              string
	AllowedOrigins    []string
	RequestsPerMinute int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(
	cfg Config,
	commissions *services.CommissionService,
	partners *services.PartnerService,
	dashboard *services.DashboardService,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		commissions:    commissions,
		partners:       partners,
		dashboard:      dashboard,
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		detector:       security.NewDetector(),
		dashboardCache: cache.NewLRUCache[any](100, dashboardCacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/system/metrics", s.handleSystemMetrics)

	mux.HandleFunc("GET /api/commissions", s.handleListCommissions)
	mux.HandleFunc("POST /api/commissions", s.handleCreateCommission)
	mux.HandleFunc("GET /api/commissions/recent", s.handleRecentCommissions)
	mux.HandleFunc("GET /api/commissions/{id}", s.handleGetCommission)
	mux.HandleFunc("PUT /api/commissions/{id}", s.handleUpdateCommission)
	mux.HandleFunc("DELETE /api/commissions/{id}", s.handleDeleteCommission)

	mux.HandleFunc("GET /api/partners", s.handleListPartners)
	mux.HandleFunc("POST /api/partners", s.handleCreatePartner)
	mux.HandleFunc("GET /api/partners/{id}", s.handleGetPartner)
	mux.HandleFunc("PUT /api/partners/{id}", s.handleUpdatePartner)
	mux.HandleFunc("DELETE /api/partners/{id}", s.handleDeletePartner)
	mux.HandleFunc("GET /api/partners/{id}/commissions", s.handlePartnerCommissions)

	mux.HandleFunc("GET /api/dashboard/overview", s.handleOverview)
	mux.HandleFunc("GET /api/dashboard/recent-activities", s.handleRecentActivities)
	mux.HandleFunc("GET /api/dashboard/financial-years", s.handleFinancialYears)
	mux.HandleFunc("GET /api/dashboard/analytics/{fy}", s.handleFYMetrics)
	mux.HandleFunc("GET /api/dashboard/analytics/{fy}/monthly", s.handleMonthlyBreakdown)
	mux.HandleFunc("GET /api/dashboard/analytics/{fy}/entity", s.handleEntityBreakdown)
	mux.HandleFunc("GET /api/dashboard/analytics/{fy}/quarterly", s.handleQuarterlyBreakdown)
	mux.HandleFunc("GET /api/dashboard/trends", s.handleTrends)
	mux.HandleFunc("GET /api/dashboard/partners", s.handlePartnerTotals)
	mux.HandleFunc("GET /api/dashboard/partner-performance", s.handlePartnerPerformance)

	httpLogger := log.New(log.Config{Component: log.ComponentHTTP})
	headers := security.NewHeadersMiddleware(apiHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, log.NewStructuredLogger(httpLogger))
	s.tracer = tracer

	var handler http.Handler = mux
	handler = s.writeLimit(handler)
	handler = cors.Middleware(cors.Config{AllowedOrigins: cfg.AllowedOrigins})(handler)
	handler = headers.Middleware(handler)
	handler = s.auditSuspicious(handler)
	handler = tracer.Middleware(handler)
	handler = log.Middleware(httpLogger)(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// apiHeadersConfig narrows the default CSP to what a JSON API needs.
func apiHeadersConfig() security.HeadersConfig {
	cfg := security.DefaultHeadersConfig()
	cfg.CSP = "default-src 'none'; frame-ancestors 'none'"
	return cfg
}

// writeLimit rate-limits mutating requests only; reads stay cheap and
// cacheable.
func (s *Server) writeLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.Allow(s.detector.ExtractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// auditSuspicious logs requests that match known probe patterns. They are
// not blocked; the patterns catch legitimate tools too.
func (s *Server) auditSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			ctx := r.Context()
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request detected",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) invalidateDashboard() {
	s.dashboardCache.Purge()
}

// cachedDashboard returns the cached payload for key, computing and
// storing it on a miss.
func (s *Server) cachedDashboard(key string, compute func() (any, error)) (any, error) {
	if data, ok := s.dashboardCache.Get(key); ok {
		return data, nil
	}
	data, err := compute()
	if err != nil {
		return nil, err
	}
	s.dashboardCache.Set(key, data)
	return data, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSystemMetrics exposes request, rate-limit and cache counters for
// operational checks.
func (s *Server) handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	requests := s.tracer.GetMetrics()
	writeData(w, http.StatusOK, map[string]any{
		"total_requests":       requests.TotalRequests,
		"avg_response_us":      requests.AverageResponseTime,
		"tracked_clients":      s.limiter.GetMetrics().ClientCount,
		"suspicious_requests":  s.detector.GetMetrics().SuspiciousRequests,
		"dashboard_cache_size": s.dashboardCache.Size(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.partners.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
