package router

import (
	"net/http"

	"gemstock-api/internal/handler"
	"gemstock-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	PrintJobHandler  *handler.PrintJobHandler
	CartHandler      *handler.CartHandler
	PriceCodeHandler *handler.PriceCodeHandler
	AdminHandler     *handler.AdminHandler
	AuthMiddleware   func(http.Handler) http.Handler
	ReadyChecks      []handler.ReadyCheckFunc
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready(cfg.ReadyChecks...))
			}

			if cfg.InventoryHandler != nil {
				r.Route("/inventory", func(r chi.Router) {
					r.Post("/", cfg.InventoryHandler.CreateItem)
					r.Get("/{sku}", cfg.InventoryHandler.GetItem)
					r.Put("/{sku}/pricing", cfg.InventoryHandler.UpdatePricing)
				})
			}

			if cfg.PrintJobHandler != nil {
				r.Route("/print-jobs", func(r chi.Router) {
					r.Post("/", cfg.PrintJobHandler.CreateJob)
					r.Get("/", cfg.PrintJobHandler.ListJobs)
					r.Post("/reconcile", cfg.PrintJobHandler.Reconcile)
					r.Get("/{job_id}/reprint", cfg.PrintJobHandler.Reprint)
				})
			}

			if cfg.CartHandler != nil {
				r.Route("/cart/{user_id}", func(r chi.Router) {
					r.Get("/", cfg.CartHandler.List)
					r.Post("/", cfg.CartHandler.Add)
					r.Delete("/", cfg.CartHandler.Remove)
				})
			}

			if cfg.PriceCodeHandler != nil {
				r.Route("/pricecode", func(r chi.Router) {
					r.Post("/encode", cfg.PriceCodeHandler.Encode)
					r.Post("/decode", cfg.PriceCodeHandler.Decode)
				})
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/users", cfg.AdminHandler.CreateUser)
				})
			}
		})
	})

	return r
}
