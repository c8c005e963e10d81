package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"retailtracker/internal/auth"
	"retailtracker/internal/dashboard"
	applog "retailtracker/internal/log"
	"retailtracker/internal/middleware/ratelimit"
	"retailtracker/internal/middleware/security"
	"retailtracker/internal/middleware/trace"
	"retailtracker/internal/services"
	"retailtracker/internal/store"
	"retailtracker/internal/transactions"
)

const (
	readyTimeout   = 2 * time.Second
	requestTimeout = 7 * time.Second
)

// Deps is what the server is built from. Store, Stats and Sessions are
// required.
type Deps struct {
	Store     store.EntryStore
	Stats     dashboard.Engine
	Publisher services.EventPublisher
	Sessions  *auth.Sessions
	Logger    *applog.Logger

	// DemoLogin mounts POST /api/auth/login
	DemoLogin          bool
	RateLimitPerMinute int
	// Now defaults to time.Now; dashboard stats are computed as of Now()
	Now func() time.Time
}

type Server struct {
	http.Server
	store    store.EntryStore
	stats    dashboard.Engine
	entries  *services.EntryService
	txns     *transactions.Service
	sessions *auth.Sessions
	logger   *applog.Logger
	now      func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}

	var opts []services.Option
	if deps.Publisher != nil {
		opts = append(opts, services.WithPublisher(deps.Publisher))
	}
	opts = append(opts, services.WithClock(deps.Now))

	detector := security.NewDetector()
	s := &Server{
		store:    deps.Store,
		stats:    deps.Stats,
		entries:  services.NewEntryService(deps.Store, opts...),
		txns:     transactions.NewService(deps.Store),
		sessions: deps.Sessions,
		logger:   deps.Logger.WithComponent(applog.ComponentHTTP),
		now:      deps.Now,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(deps.Logger, detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if deps.DemoLogin {
		mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	}
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/user", s.authed(s.handleCurrentUser))

	mux.Handle("GET /api/dashboard/stats", s.authed(s.handleDashboardStats))
	mux.Handle("GET /api/transactions", s.authed(s.handleTransactions))

	mux.Handle("POST /api/sales", s.authed(s.handleCreateSale))
	mux.Handle("GET /api/sales", s.authed(s.handleListSales))
	mux.Handle("GET /api/sales/{id}", s.authed(s.handleGetSale))
	mux.Handle("PUT /api/sales/{id}", s.authed(s.handleUpdateSale))
	mux.Handle("DELETE /api/sales/{id}", s.authed(s.handleDeleteSale))

	mux.Handle("POST /api/expenses", s.authed(s.handleCreateExpense))
	mux.Handle("GET /api/expenses", s.authed(s.handleListExpenses))
	mux.Handle("GET /api/expenses/{id}", s.authed(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.authed(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.authed(s.handleDeleteExpense))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	})

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, ratelimit.WritesOnly, s.onRateLimited)(h)
	h = s.withDetection(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = http.TimeoutHandler(h, requestTimeout, `{"message":"Request timed out"}`)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       requestTimeout,
		ReadHeaderTimeout: requestTimeout,
		WriteTimeout:      requestTimeout + time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

// Shutdown stops the rate limiter and then the http server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Metrics reports request counters for the admin log line at shutdown.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return auth.Middleware(s.sessions)(h)
}

func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// userID returns the user placed in the context by auth.Middleware.
func userID(r *http.Request) string {
	return auth.UserIDFrom(r.Context())
}
