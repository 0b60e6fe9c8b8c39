// internal/app/features/auth/routes.go
package authfeature

import (
	"github.com/go-chi/chi/v5"

	"github.com/convenehq/convene/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Put("/profile", h.HandleUpdateProfile)
	})
	return r
}
