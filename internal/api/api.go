package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"arithapi/internal/calculator"
)

// SetupRouter настраивает маршруты API. metricsHandler может быть nil.
func SetupRouter(h *CalculatorHandler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestID)
	r.Use(RequestLogger(h.base.With("module", "http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.Welcome)
	r.Get("/healthz", h.Health)

	// Маршрут на каждую операцию: /add, /subtract, /multiply, /divide
	for _, op := range calculator.Operations {
		r.Post("/"+op.String(), h.Operation(op))
	}
	r.Post("/calculate/{operation}", h.Calculate)

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return r
}
