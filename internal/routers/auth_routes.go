package routers

import (
	"antigravity/focus/internal/handlers"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(r *chi.Mux, authHandler *handlers.AuthHandler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.RegisterHandler)           // User registration
		r.Post("/login", authHandler.LoginHandler)                 // User login
		r.Post("/guest", authHandler.GuestLoginHandler)            // Guest login
		r.Get("/check-username", authHandler.CheckUsernameHandler) // Username availability
	})
}
