package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"anggaran/internal/auth"
	applog "anggaran/internal/log"
	"anggaran/internal/middleware/ratelimit"
	"anggaran/internal/middleware/security"
	"anggaran/internal/middleware/trace"
	"anggaran/internal/services"
)

// Deps are the services behind the API.
type Deps struct {
	Auth      *auth.Service
	Ledger    *services.LedgerService
	Household *services.HouseholdService
	Profiles  *services.ProfileService

	// Ready reports backend health for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	// MediaDir is served under /media/ when set.
	MediaDir string

	Logger             *applog.Logger
	RateLimitPerMinute int
	// Now and Location fix the household's clock; defaults are time.Now and UTC.
	Now      func() time.Time
	Location *time.Location
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(deps.Logger.WithComponent(applog.ComponentHTTP), s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = s.flagSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if s.deps.MediaDir != "" {
		media := http.StripPrefix("/media/", http.FileServer(http.Dir(s.deps.MediaDir)))
		mux.Handle("GET /media/", security.CacheMiddleware(3600)(noDirListing(media)))
	}

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/auth/session", s.handleSession)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireSession(h))
	}

	api("GET /api/dashboard", s.handleDashboard)
	api("GET /api/budget", s.handleBudget)
	api("GET /api/analytics", s.handleAnalytics)
	api("GET /api/kitchen", s.handleKitchen)

	api("GET /api/incomes", s.handleListIncomes)
	api("POST /api/incomes", s.handleAddIncome)
	api("PUT /api/incomes/fixed", s.handleSetFixedIncome)
	api("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	api("GET /api/debts", s.handleListDebts)
	api("POST /api/debts", s.handleAddDebt)
	api("POST /api/debts/{id}/toggle", s.handleToggleDebt)
	api("DELETE /api/debts/{id}", s.handleDeleteDebt)

	api("GET /api/sinking-funds", s.handleListSinkingFunds)
	api("POST /api/sinking-funds", s.handleAddSinkingFund)
	api("DELETE /api/sinking-funds/{id}", s.handleDeleteSinkingFund)

	api("GET /api/goals", s.handleListGoals)
	api("POST /api/goals", s.handleAddGoal)
	api("PATCH /api/goals/{id}", s.handleUpdateGoal)
	api("DELETE /api/goals/{id}", s.handleDeleteGoal)

	api("GET /api/assets", s.handleListAssets)
	api("POST /api/assets", s.handleAddAsset)
	api("DELETE /api/assets/{id}", s.handleDeleteAsset)

	api("GET /api/transactions", s.handleListTransactions)
	api("POST /api/transactions", s.handleAddTransaction)
	api("GET /api/transactions/export.xlsx", s.handleExportTransactions)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("GET /api/menus", s.handleListMenus)
	api("POST /api/menus", s.handleAddMenu)
	api("DELETE /api/menus/{id}", s.handleDeleteMenu)

	api("GET /api/profiles", s.handleListProfiles)
	api("GET /api/profiles/me", s.handleMe)
	api("PUT /api/profiles/me", s.handleUpdateMe)
	api("PUT /api/profiles/{id}", s.handleUpdateProfile)
	api("POST /api/profiles/me/avatar", s.handleUploadAvatar)
}

// Shutdown stops the limiter and then the HTTP server. It is safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// now is the household's current time.
func (s *Server) now() time.Time {
	return s.deps.Now().In(s.deps.Location)
}

// limitWrites applies the per-client budget to state-changing requests.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
