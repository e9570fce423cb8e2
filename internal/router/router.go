package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"snakechat-backend/internal/handlers"
	"snakechat-backend/internal/metrics"
	"snakechat-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	m *metrics.Metrics,
	corsOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigin))
	r.Use(middleware.Metrics(m))

	r.Get("/health", chatHandler.Health)
	r.Get("/metrics", m.Handler().ServeHTTP)

	r.Post("/chat", chatHandler.Chat)
	r.Get("/models", chatHandler.Models)

	return r
}
