// internal/app/features/admin/handler.go

// Package adminfeature serves the admin console endpoints: member
// approval, role management, user removal, and event review decisions.
// Every route is behind the admin role middleware; handlers use
// authz.UserCtx only when they need the acting admin's identity.
package adminfeature

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	eventstore "github.com/convenehq/convene/internal/app/store/events"
	userstore "github.com/convenehq/convene/internal/app/store/users"
	"github.com/convenehq/convene/internal/app/system/authz"
	"github.com/convenehq/convene/internal/app/system/httperr"
	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

type Handler struct {
	Users  *userstore.Store
	Events *eventstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, events *eventstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Events: events, Log: logger}
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleListPending handles GET /api/admin/users/pending.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.ListPending(ctx)
	if err != nil {
		h.Log.Error("admin: list pending users", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	httperr.JSON(w, http.StatusOK, out)
}

// HandleListMembers handles GET /api/admin/users, the approved-user
// directory. Any signed-in user may read it; members use it to pick
// message recipients and admins to pick task assignees.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.ListApproved(ctx)
	if err != nil {
		h.Log.Error("admin: list members", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	httperr.JSON(w, http.StatusOK, out)
}

// HandleApproveUser handles PUT /api/admin/users/{id}/approve.
func (h *Handler) HandleApproveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Approve(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "user not found")
			return
		}
		h.Log.Error("admin: approve user", zap.Error(err), zap.String("user_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("user approved",
		zap.String("user_id", id.Hex()),
		zap.String("approved_by", actor))

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, user.Public())
}

// HandleSetRole handles PUT /api/admin/users/{id}/role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}
	role := normalize.Role(req.Role)
	if !models.ValidRole(role) {
		httperr.BadRequest(w, `role must be "admin" or "member"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRole(ctx, id, role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "user not found")
			return
		}
		h.Log.Error("admin: set role", zap.Error(err), zap.String("user_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, user.Public())
}

// HandleDeleteUser handles DELETE /api/admin/users/{id}. Admins cannot
// delete themselves; demote first, then have another admin remove the
// account.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok && actorID == id {
		httperr.BadRequest(w, "cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Users.Delete(ctx, id)
	if err != nil {
		h.Log.Error("admin: delete user", zap.Error(err), zap.String("user_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}
	if deleted == 0 {
		httperr.NotFound(w, "user not found")
		return
	}

	httperr.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// HandleSetEventStatus handles PUT /api/admin/events/{id}/status.
func (h *Handler) HandleSetEventStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}
	status := normalize.Status(req.Status)
	if !models.ValidEventStatus(status) {
		httperr.BadRequest(w, `status must be "pending", "approved", or "declined"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		h.Log.Error("admin: set event status", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("event reviewed",
		zap.String("event_id", id.Hex()),
		zap.String("status", status),
		zap.String("reviewed_by", actor))

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, event)
}

// pathID parses the named chi URL parameter as an ObjectID, writing a
// 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httperr.BadRequest(w, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
