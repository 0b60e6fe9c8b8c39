// internal/app/features/stats/handler.go

// Package statsfeature serves the member dashboard counters. Every
// number is derived on request from the event and task collections;
// nothing is cached or precomputed.
package statsfeature

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	eventstore "github.com/convenehq/convene/internal/app/store/events"
	taskstore "github.com/convenehq/convene/internal/app/store/tasks"
	"github.com/convenehq/convene/internal/app/system/gates"
	"github.com/convenehq/convene/internal/app/system/httperr"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

type Handler struct {
	Events *eventstore.Store
	Tasks  *taskstore.Store
	Log    *zap.Logger
}

func NewHandler(events *eventstore.Store, tasks *taskstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Tasks: tasks, Log: logger}
}

type memberStats struct {
	UpcomingEvents int64 `json:"upcomingEvents"`
	MyProposals    int64 `json:"myProposals"`
	TasksCompleted int   `json:"tasksCompleted"`
	TasksPending   int   `json:"tasksPending"`
}

// HandleMemberStats handles GET /api/stats/member-stats.
//
// UpcomingEvents counts approved events with a future suggested date,
// falling back to all approved events when none carry a date. Tasks
// are partitioned by their stored status: completed versus everything
// else the caller is currently assigned to.
func (h *Handler) HandleMemberStats(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upcoming, err := h.Events.CountApprovedUpcoming(ctx, time.Now().UTC())
	if err != nil {
		h.Log.Error("stats: count upcoming events", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	proposals, err := h.Events.ListByProposer(ctx, res.UserID)
	if err != nil {
		h.Log.Error("stats: list proposals", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	myTasks, err := h.Tasks.ListByAssignee(ctx, res.UserID)
	if err != nil {
		h.Log.Error("stats: list tasks", zap.Error(err))
		httperr.Internal(w, err)
		return
	}

	stats := memberStats{
		UpcomingEvents: upcoming,
		MyProposals:    int64(len(proposals)),
	}
	for _, t := range myTasks {
		if t.Status == models.TaskCompleted {
			stats.TasksCompleted++
		} else {
			stats.TasksPending++
		}
	}

	httperr.JSON(w, http.StatusOK, stats)
}
