// internal/app/features/messages/handler.go

// Package messagesfeature serves the direct-message endpoints. A
// conversation is the union of both directions between two users,
// oldest first; messages are immutable once sent.
package messagesfeature

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	messagestore "github.com/convenehq/convene/internal/app/store/messages"
	userstore "github.com/convenehq/convene/internal/app/store/users"
	"github.com/convenehq/convene/internal/app/system/gates"
	"github.com/convenehq/convene/internal/app/system/htmlsanitize"
	"github.com/convenehq/convene/internal/app/system/httperr"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

type Handler struct {
	Messages *messagestore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(messages *messagestore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Messages: messages, Users: users, Log: logger}
}

type sendRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// messageView is a message plus the sender's username, so clients can
// render a conversation without a second lookup.
type messageView struct {
	models.Message
	SenderName string `json:"senderName,omitempty"`
}

// HandleConversation handles GET /api/messages/{userId}, returning
// every message between the caller and that user, oldest first.
func (h *Handler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	otherID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		httperr.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msgs, err := h.Messages.Conversation(ctx, res.UserID, otherID)
	if err != nil {
		h.Log.Error("messages: load conversation", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	names, err := h.Users.UsernamesByID(ctx, []primitive.ObjectID{res.UserID, otherID})
	if err != nil {
		h.Log.Error("messages: resolve usernames", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageView{Message: m, SenderName: names[m.SenderID]})
	}
	httperr.JSON(w, http.StatusOK, out)
}

// HandleSend handles POST /api/messages. The recipient must exist and
// differ from the sender.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		httperr.BadRequest(w, "invalid recipient id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "recipient not found")
			return
		}
		httperr.Internal(w, err)
		return
	}

	msg, err := h.Messages.Create(ctx, models.Message{
		SenderID:    res.UserID,
		RecipientID: recipientID,
		Content:     htmlsanitize.StripTags(req.Content),
	})
	if err != nil {
		switch {
		case errors.Is(err, messagestore.ErrEmptyContent):
			httperr.BadRequest(w, "message content is required")
		case errors.Is(err, messagestore.ErrSelfMessage):
			httperr.BadRequest(w, "cannot message yourself")
		default:
			h.Log.Error("messages: send", zap.Error(err))
			httperr.Internal(w, err)
		}
		return
	}

	httperr.JSON(w, http.StatusCreated, messageView{Message: msg, SenderName: res.Username})
}
