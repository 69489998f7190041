package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/api", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Get("/cards", h.ListCards)
		r.Post("/auth/sign-up", h.SignUp)
		r.Post("/auth/sign-in", h.SignIn)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/auth/me", h.Me)

			r.Route("/decks", func(r chi.Router) {
				r.Post("/", h.CreateDeck)
				r.Get("/mine", h.ListMyDecks)
				r.Get("/{id}", h.GetDeck)
				r.Patch("/{id}", h.UpdateDeck)
				r.Delete("/{id}", h.DeleteDeck)
			})
		})
	})
}
