// internal/app/features/messages/routes.go
package messagesfeature

import (
	"github.com/go-chi/chi/v5"

	"github.com/convenehq/convene/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleSend)
	r.Get("/{userId}", h.HandleConversation)
	return r
}
