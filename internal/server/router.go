package server

import (
	"net/http"

	"github.com/dukaanlabs/dukaan/internal/api"
	"github.com/dukaanlabs/dukaan/internal/api/handlers"
	"github.com/dukaanlabs/dukaan/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AssistHandler *handlers.AssistHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/assist", cfg.AssistHandler.Assist)
	r.Post("/assist/feedback", cfg.AssistHandler.Feedback)

	return r
}
