// internal/app/features/stats/routes.go
package statsfeature

import (
	"github.com/go-chi/chi/v5"

	"github.com/convenehq/convene/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/member-stats", h.HandleMemberStats)
	return r
}
