package routers

import (
	"antigravity/focus/internal/auth"
	"antigravity/focus/internal/handlers"

	"github.com/go-chi/chi/v5"
)

func FocusRoutes(r *chi.Mux, resolver *auth.Resolver, focusHandler *handlers.FocusHandler) {
	r.Route("/api/focus", func(r chi.Router) {
		r.Use(resolver.RequireIdentity)
		r.Post("/start", focusHandler.StartHandler)               // Start a focus task
		r.Put("/{taskId}/complete", focusHandler.CompleteHandler) // Complete a task
		r.Delete("/{taskId}", focusHandler.AbandonHandler)        // Abandon a task
		r.Get("/tasks", focusHandler.ListRunningHandler)          // Running tasks
		r.Get("/history", focusHandler.HistoryHandler)            // Completed history
	})
}
