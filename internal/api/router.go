package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/savegress/budgetwatch/internal/alerts"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/internal/config"
	"github.com/savegress/budgetwatch/internal/ledger"
)

// Server represents the API server
type Server struct {
	config   *config.Config
	router   chi.Router
	handlers *Handlers
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, eng *ledger.Engine, calc *budget.Calculator, notifier *alerts.Notifier) *Server {
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		handlers: NewHandlers(eng, calc, notifier),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HealthCheck)

	s.router.Route("/api/v1/budgetwatch", func(r chi.Router) {
		r.Use(AuthMiddleware(s.config.Server.JWTSecret))

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handlers.ListCategories)
			r.Post("/", s.handlers.CreateCategory)
			r.Get("/{id}", s.handlers.GetCategory)
			r.Put("/{id}", s.handlers.RenameCategory)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handlers.ListTransactions)
			r.Post("/", s.handlers.CreateTransaction)
			r.Get("/{id}", s.handlers.GetTransaction)
			r.Put("/{id}", s.handlers.UpdateTransaction)
			r.Delete("/{id}", s.handlers.DeleteTransaction)
		})

		// Budgets
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handlers.ListBudgets)
			r.Post("/", s.handlers.CreateBudget)
			r.Get("/{id}", s.handlers.GetBudget)
			r.Put("/{id}", s.handlers.UpdateBudget)
			r.Delete("/{id}", s.handlers.DeleteBudget)
			r.Get("/{id}/progress", s.handlers.GetBudgetProgress)
		})

		// Alerts
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handlers.ListAlerts)
			r.Delete("/", s.handlers.ClearAlerts)
			r.Delete("/{budgetID}/{tier}", s.handlers.DismissAlert)
		})

		// Preferences
		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.handlers.GetPreferences)
			r.Put("/", s.handlers.PutPreferences)
		})
	})
}

// Router returns the chi router
func (s *Server) Router() http.Handler {
	return s.router
}
