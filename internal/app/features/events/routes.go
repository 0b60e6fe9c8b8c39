// internal/app/features/events/routes.go
package eventsfeature

import (
	"github.com/go-chi/chi/v5"

	"github.com/convenehq/convene/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/my-proposals", h.HandleMyProposals)

	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	r.Put("/{id}/vote", h.HandleVote)

	r.Post("/{id}/tasks", h.HandleAddTask)
	r.Put("/{id}/tasks/{taskId}", h.HandleTaskStatus)

	r.Post("/{id}/discussion", h.HandleAddComment)
	return r
}
