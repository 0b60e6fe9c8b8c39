// internal/app/features/auth/handler.go

// Package authfeature serves registration, login, and profile editing.
package authfeature

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/convenehq/convene/internal/app/store/users"
	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/app/system/gates"
	"github.com/convenehq/convene/internal/app/system/htmlsanitize"
	"github.com/convenehq/convene/internal/app/system/httperr"
	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

type Handler struct {
	Users  *userstore.Store
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Log: logger}
}

// HandleRegister handles POST /api/auth/register.
//
// The first user ever registered becomes an approved admin; everyone
// else starts as an unapproved member. A token is issued either way so
// the client can poll their approval state; unapproved members are
// turned away at login.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	req.Username = normalize.Username(req.Username)
	if req.Username == "" || req.Password == "" {
		httperr.BadRequest(w, "username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			httperr.Conflict(w, "username already taken")
			return
		}
		h.Log.Error("register: create user", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		h.Log.Error("register: issue token", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))
	httperr.JSON(w, http.StatusCreated, newAuthResponse(user, token))
}

// HandleLogin handles POST /api/auth/login.
//
// Bad username, bad password, and an unapproved member account all
// produce the same 401 so callers cannot probe which part failed.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, normalize.Username(req.Username))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.Unauthorized(w, "invalid credentials")
			return
		}
		h.Log.Error("login: lookup user", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		httperr.Unauthorized(w, "invalid credentials")
		return
	}

	if user.Role == models.RoleMember && !user.IsApproved {
		httperr.Unauthorized(w, "account pending approval")
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		h.Log.Error("login: issue token", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, newAuthResponse(*user, token))
}

// HandleUpdateProfile handles PUT /api/auth/profile. Only supplied
// fields overwrite the stored profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, res.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "user not found")
			return
		}
		h.Log.Error("profile: load user", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	profile := user.Profile
	if req.Name != nil {
		profile.Name = normalize.Name(*req.Name)
	}
	if req.Bio != nil {
		profile.Bio = htmlsanitize.Sanitize(*req.Bio)
	}
	if req.Contact != nil {
		profile.Contact = htmlsanitize.StripTags(*req.Contact)
	}
	if req.Image != nil {
		profile.Image = *req.Image
	}

	if err := h.Users.UpdateProfile(ctx, res.UserID, profile); err != nil {
		h.Log.Error("profile: update", zap.Error(err),
			zap.String("user_id", res.UserID.Hex()))
		httperr.Internal(w, err)
		return
	}

	user.Profile = profile
	httperr.JSON(w, http.StatusOK, user.Public())
}
