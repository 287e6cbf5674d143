package api

import (
	"net/http"
	"time"

	"stacktrack/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the services into the HTTP surface
type Server struct {
	bankrollService  service.BankrollService
	sessionService   service.SessionService
	referenceService service.ReferenceService
	analyticsService service.AnalyticsService
	authenticator    *Authenticator
}

// NewServer creates the HTTP server wiring
func NewServer(
	bankrollService service.BankrollService,
	sessionService service.SessionService,
	referenceService service.ReferenceService,
	analyticsService service.AnalyticsService,
	authenticator *Authenticator,
) *Server {
	return &Server{
		bankrollService:  bankrollService,
		sessionService:   sessionService,
		referenceService: referenceService,
		analyticsService: analyticsService,
		authenticator:    authenticator,
	}
}

// Router builds the route tree
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticator.Middleware)

		r.Route("/bankroll", func(r chi.Router) {
			r.Get("/", s.handleGetBankrollSummary)
			r.Post("/", s.handleInitializeBankroll)
			r.Post("/transactions", s.handleApplyTransaction)
			r.Get("/transactions", s.handleGetTransactions)
			r.Get("/reconciliation", s.handleReconcileBankroll)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleSearchSessions)
			r.Post("/", s.handleStartSession)
			r.Get("/active", s.handleGetActiveSession)
			r.Get("/recent", s.handleGetRecentSessions)
			r.Post("/{id}/rebuys", s.handleAddRebuy)
			r.Post("/{id}/notes", s.handleAddNote)
			r.Post("/{id}/end", s.handleEndSession)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboardStats)
			r.Get("/performance", s.handlePerformanceMetrics)
			r.Get("/bankroll-growth", s.handleBankrollGrowth)
			r.Get("/session-performance", s.handleSessionPerformance)
			r.Get("/session-stats", s.handleSessionStats)
		})

		r.Route("/reference", func(r chi.Router) {
			r.Get("/poker-sites", s.handlePokerSites)
			r.Get("/game-types", s.handleGameTypes)
		})
	})

	return r
}
