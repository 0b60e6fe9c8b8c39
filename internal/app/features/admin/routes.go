// internal/app/features/admin/routes.go
package adminfeature

import (
	"github.com/go-chi/chi/v5"

	"github.com/convenehq/convene/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// The member directory lives under /admin for historical reasons
	// but every signed-in user may read it (message recipients, task
	// assignees).
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/users", h.HandleListMembers)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin"))

		r.Get("/users/pending", h.HandleListPending)
		r.Put("/users/{id}/approve", h.HandleApproveUser)
		r.Put("/users/{id}/role", h.HandleSetRole)
		r.Delete("/users/{id}", h.HandleDeleteUser)

		r.Put("/events/{id}/status", h.HandleSetEventStatus)
	})
	return r
}
