// internal/app/features/events/handler.go

// Package eventsfeature serves the event endpoints: proposal CRUD,
// vote toggling, task management, and the discussion thread. Listing
// visibility is decided by eventpolicy; modification rights by
// ownership or the admin role.
package eventsfeature

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/convenehq/convene/internal/app/policy/eventpolicy"
	"github.com/convenehq/convene/internal/app/policy/taskpolicy"
	commentstore "github.com/convenehq/convene/internal/app/store/comments"
	eventstore "github.com/convenehq/convene/internal/app/store/events"
	taskstore "github.com/convenehq/convene/internal/app/store/tasks"
	userstore "github.com/convenehq/convene/internal/app/store/users"
	votestore "github.com/convenehq/convene/internal/app/store/votes"
	"github.com/convenehq/convene/internal/app/system/authz"
	"github.com/convenehq/convene/internal/app/system/gates"
	"github.com/convenehq/convene/internal/app/system/htmlsanitize"
	"github.com/convenehq/convene/internal/app/system/httperr"
	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

type Handler struct {
	Events   *eventstore.Store
	Votes    *votestore.Store
	Tasks    *taskstore.Store
	Comments *commentstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(events *eventstore.Store, votes *votestore.Store, tasks *taskstore.Store, comments *commentstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   events,
		Votes:    votes,
		Tasks:    tasks,
		Comments: comments,
		Users:    users,
		Log:      logger,
	}
}

/*───────────────────────────────────────────────────────────────────────────
  Proposals
───────────────────────────────────────────────────────────────────────────*/

// HandleList handles GET /api/events. Admins see every proposal by
// default; members see approved events only, unless either supplies an
// explicit ?status= filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := eventpolicy.ListFilter(r, r.URL.Query().Get("status"))
	events, err := h.Events.List(ctx, filter)
	if err != nil {
		h.Log.Error("events: list", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	views, err := h.composeViews(ctx, events)
	if err != nil {
		h.Log.Error("events: compose list", zap.Error(err))
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, views)
}

// HandleMyProposals handles GET /api/events/my-proposals. The caller
// sees every proposal they made, regardless of status.
func (h *Handler) HandleMyProposals(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.ListByProposer(ctx, res.UserID)
	if err != nil {
		h.Log.Error("events: list my proposals", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	views, err := h.composeViews(ctx, events)
	if err != nil {
		h.Log.Error("events: compose my proposals", zap.Error(err))
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, views)
}

// HandleCreate handles POST /api/events. New proposals always start
// pending, whoever submits them.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	title := strings.TrimSpace(htmlsanitize.StripTags(req.Title))
	if title == "" {
		httperr.BadRequest(w, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.Create(ctx, models.Event{
		Title:                title,
		Description:          htmlsanitize.Sanitize(req.Description),
		Venue:                htmlsanitize.StripTags(req.Venue),
		SuggestedDate:        req.SuggestedDate,
		ExpectedParticipants: req.ExpectedParticipants,
		ProposedBy:           res.UserID,
	})
	if err != nil {
		h.Log.Error("events: create", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	h.Log.Info("event proposed",
		zap.String("event_id", event.ID.Hex()),
		zap.String("proposed_by", res.Username))
	httperr.JSON(w, http.StatusCreated, newEventView(event, votestore.Tally{}, res.Username))
}

// HandleGet handles GET /api/events/{id}, returning the event together
// with its tasks and discussion thread.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		h.Log.Error("events: get", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	detail, err := h.composeDetail(ctx, *event)
	if err != nil {
		h.Log.Error("events: compose detail", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, detail)
}

// HandleUpdate handles PUT /api/events/{id}. Only the proposer or an
// admin may edit. Omitted fields keep their stored values; the review
// status changes only when the body names one explicitly.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		httperr.Internal(w, err)
		return
	}
	if !eventpolicy.CanModify(r, event.ProposedBy) {
		httperr.Forbidden(w, "only the proposer or an admin may edit this event")
		return
	}

	// Empty strings retain the prior value, same as omitting the field.
	upd := eventstore.Update{
		SuggestedDate:        req.SuggestedDate,
		ExpectedParticipants: req.ExpectedParticipants,
	}
	if req.Title != nil {
		if title := strings.TrimSpace(htmlsanitize.StripTags(*req.Title)); title != "" {
			upd.Title = &title
		}
	}
	if req.Description != nil {
		if desc := htmlsanitize.Sanitize(*req.Description); desc != "" {
			upd.Description = &desc
		}
	}
	if req.Venue != nil {
		if venue := htmlsanitize.StripTags(*req.Venue); venue != "" {
			upd.Venue = &venue
		}
	}

	if err := h.Events.Update(ctx, id, upd); err != nil {
		h.Log.Error("events: update", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	if req.Status != nil {
		status := normalize.Status(*req.Status)
		if !models.ValidEventStatus(status) {
			httperr.BadRequest(w, `status must be "pending", "approved", or "declined"`)
			return
		}
		if err := h.Events.SetStatus(ctx, id, status); err != nil {
			h.Log.Error("events: set status on update", zap.Error(err), zap.String("event_id", id.Hex()))
			httperr.Internal(w, err)
			return
		}
	}

	updated, err := h.Events.GetByID(ctx, id)
	if err != nil {
		httperr.Internal(w, err)
		return
	}
	h.respondWithView(w, ctx, *updated)
}

// HandleDelete handles DELETE /api/events/{id}. Deleting an event also
// removes its votes, tasks, and discussion comments.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		httperr.Internal(w, err)
		return
	}
	if !eventpolicy.CanDelete(r, event.ProposedBy) {
		httperr.Forbidden(w, "only the proposer or an admin may delete this event")
		return
	}

	if _, err := h.Events.Delete(ctx, id); err != nil {
		h.Log.Error("events: delete", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	role, username, _, _ := authz.UserCtx(r)
	h.Log.Info("event deleted",
		zap.String("event_id", id.Hex()),
		zap.String("deleted_by", username),
		zap.String("role", role))
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

/*───────────────────────────────────────────────────────────────────────────
  Votes
───────────────────────────────────────────────────────────────────────────*/

// HandleVote handles PUT /api/events/{id}/vote. Repeating the caller's
// current vote retracts it; the opposite direction replaces it.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		httperr.Internal(w, err)
		return
	}

	if _, err := h.Votes.Toggle(ctx, id, res.UserID, req.Type); err != nil {
		if errors.Is(err, votestore.ErrBadDirection) {
			httperr.BadRequest(w, "vote type must be up or down")
			return
		}
		h.Log.Error("events: toggle vote", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	h.respondWithView(w, ctx, *event)
}

/*───────────────────────────────────────────────────────────────────────────
  Tasks
───────────────────────────────────────────────────────────────────────────*/

// HandleAddTask handles POST /api/events/{id}/tasks. Admin only.
func (h *Handler) HandleAddTask(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "only admins may create tasks")
	if !res.OK {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	title := strings.TrimSpace(htmlsanitize.StripTags(req.Title))
	if title == "" {
		httperr.BadRequest(w, "title is required")
		return
	}

	assignees := make([]primitive.ObjectID, 0, len(req.AssignedTo))
	for _, raw := range req.AssignedTo {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httperr.BadRequest(w, "invalid assignee id")
			return
		}
		assignees = append(assignees, oid)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		httperr.Internal(w, err)
		return
	}

	task, err := h.Tasks.Add(ctx, models.Task{
		EventID:     id,
		Title:       title,
		Deadline:    req.Deadline,
		AssigneeIDs: assignees,
	})
	if err != nil {
		if errors.Is(err, taskstore.ErrNoAssignees) {
			httperr.BadRequest(w, "at least one assignee is required")
			return
		}
		h.Log.Error("events: add task", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("event_id", id.Hex()),
		zap.String("created_by", res.Username))
	httperr.JSON(w, http.StatusCreated, task)
}

// HandleTaskStatus handles PUT /api/events/{id}/tasks/{taskId}.
// Setting "completed" records the caller's completion and lets the
// aggregate decide the status; any other value is a manual override.
func (h *Handler) HandleTaskStatus(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "task not found")
			return
		}
		httperr.Internal(w, err)
		return
	}
	if task.EventID != eventID {
		httperr.NotFound(w, "task not found")
		return
	}
	if !taskpolicy.CanUpdateTask(r, task) {
		httperr.Forbidden(w, "only an assignee or an admin may update this task")
		return
	}

	var updated *models.Task
	if req.Status == models.TaskCompleted {
		updated, err = h.Tasks.MarkComplete(ctx, taskID, res.UserID)
	} else {
		updated, err = h.Tasks.SetStatus(ctx, taskID, req.Status)
	}
	if err != nil {
		if errors.Is(err, taskstore.ErrBadStatus) {
			httperr.BadRequest(w, "invalid task status")
			return
		}
		h.Log.Error("events: update task status", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httperr.Internal(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, updated)
}

/*───────────────────────────────────────────────────────────────────────────
  Discussion
───────────────────────────────────────────────────────────────────────────*/

// HandleAddComment handles POST /api/events/{id}/discussion.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "event not found")
			return
		}
		httperr.Internal(w, err)
		return
	}

	comment, err := h.Comments.Append(ctx, models.Comment{
		EventID: id,
		UserID:  res.UserID,
		Text:    htmlsanitize.Sanitize(req.Text),
	})
	if err != nil {
		if errors.Is(err, commentstore.ErrEmptyComment) {
			httperr.BadRequest(w, "comment text is required")
			return
		}
		h.Log.Error("events: add comment", zap.Error(err), zap.String("event_id", id.Hex()))
		httperr.Internal(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, commentView{Comment: comment, Username: res.Username})
}

/*───────────────────────────────────────────────────────────────────────────
  View composition
───────────────────────────────────────────────────────────────────────────*/

// composeViews joins events with their vote tallies and proposer
// usernames using one query per collection, not one per event.
func (h *Handler) composeViews(ctx context.Context, events []models.Event) ([]eventView, error) {
	ids := make([]primitive.ObjectID, 0, len(events))
	proposers := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		proposers = append(proposers, e.ProposedBy)
	}

	tallies, err := h.Votes.TalliesByEvent(ctx, ids)
	if err != nil {
		return nil, err
	}
	names, err := h.Users.UsernamesByID(ctx, proposers)
	if err != nil {
		return nil, err
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e, tallies[e.ID], names[e.ProposedBy]))
	}
	return views, nil
}

func (h *Handler) composeDetail(ctx context.Context, event models.Event) (eventDetail, error) {
	tally, err := h.Votes.TallyByEvent(ctx, event.ID)
	if err != nil {
		return eventDetail{}, err
	}
	tasks, err := h.Tasks.ListByEvent(ctx, event.ID)
	if err != nil {
		return eventDetail{}, err
	}
	comments, err := h.Comments.ListByEvent(ctx, event.ID)
	if err != nil {
		return eventDetail{}, err
	}

	// One lookup covers the proposer, every assignee, and every
	// comment author.
	nameIDs := []primitive.ObjectID{event.ProposedBy}
	for _, t := range tasks {
		nameIDs = append(nameIDs, t.AssigneeIDs...)
	}
	for _, c := range comments {
		nameIDs = append(nameIDs, c.UserID)
	}
	names, err := h.Users.UsernamesByID(ctx, nameIDs)
	if err != nil {
		return eventDetail{}, err
	}

	taskViews := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		tv := taskView{Task: t}
		for _, a := range t.AssigneeIDs {
			tv.AssigneeNames = append(tv.AssigneeNames, names[a])
		}
		taskViews = append(taskViews, tv)
	}
	commentViews := make([]commentView, 0, len(comments))
	for _, c := range comments {
		commentViews = append(commentViews, commentView{Comment: c, Username: names[c.UserID]})
	}

	return eventDetail{
		eventView:  newEventView(event, tally, names[event.ProposedBy]),
		Tasks:      taskViews,
		Discussion: commentViews,
	}, nil
}

// respondWithView re-reads the tally and proposer name for a single
// event and writes it as a 200.
func (h *Handler) respondWithView(w http.ResponseWriter, ctx context.Context, event models.Event) {
	views, err := h.composeViews(ctx, []models.Event{event})
	if err != nil {
		h.Log.Error("events: compose view", zap.Error(err), zap.String("event_id", event.ID.Hex()))
		httperr.Internal(w, err)
		return
	}
	httperr.JSON(w, http.StatusOK, views[0])
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httperr.BadRequest(w, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
