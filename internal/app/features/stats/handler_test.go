package statsfeature_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	statsfeature "github.com/convenehq/convene/internal/app/features/stats"
	eventstore "github.com/convenehq/convene/internal/app/store/events"
	taskstore "github.com/convenehq/convene/internal/app/store/tasks"
	"github.com/convenehq/convene/internal/domain/models"
	"github.com/convenehq/convene/internal/testutil"
)

type statsBody struct {
	UpcomingEvents int64 `json:"upcomingEvents"`
	MyProposals    int64 `json:"myProposals"`
	TasksCompleted int   `json:"tasksCompleted"`
	TasksPending   int   `json:"tasksPending"`
}

func newTestHandler(t *testing.T) (*statsfeature.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := statsfeature.NewHandler(eventstore.New(db), taskstore.New(db), zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func getStats(t *testing.T, h *statsfeature.Handler, user testutil.TestUser) statsBody {
	t.Helper()
	req := testutil.NewAuthenticatedRequest("GET", "/api/stats/member-stats", user)
	rec := httptest.NewRecorder()
	h.HandleMemberStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var got statsBody
	testutil.DecodeJSON(t, rec, &got)
	return got
}

func TestMemberStats(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")
	bob := fixtures.CreateMember(ctx, "bob")

	future := time.Now().UTC().Add(48 * time.Hour)
	fixtures.CreateEventOn(ctx, "Picnic", future, alice.ID)
	fixtures.CreateEvent(ctx, "Gala", models.EventPending, alice.ID)
	event := fixtures.CreateEvent(ctx, "Retreat", models.EventApproved, bob.ID)

	task := fixtures.CreateTask(ctx, event.ID, "Book venue", alice.ID)
	fixtures.CreateTask(ctx, event.ID, "Send invites", alice.ID, bob.ID)
	fixtures.CreateTask(ctx, event.ID, "Not mine", bob.ID)

	store := taskstore.New(fixtures.DB())
	if _, err := store.SetStatus(ctx, task.ID, models.TaskCompleted); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	got := getStats(t, h, testutil.UserFor(alice.ID, alice.Username, alice.Role))
	if got.UpcomingEvents != 1 {
		t.Errorf("upcomingEvents: got %d, want 1", got.UpcomingEvents)
	}
	if got.MyProposals != 2 {
		t.Errorf("myProposals: got %d, want 2", got.MyProposals)
	}
	if got.TasksCompleted != 1 || got.TasksPending != 1 {
		t.Errorf("tasks: completed %d pending %d, want 1/1", got.TasksCompleted, got.TasksPending)
	}
}

func TestMemberStats_UpcomingFallback(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")
	fixtures.CreateEvent(ctx, "Picnic", models.EventApproved, alice.ID)
	fixtures.CreateEvent(ctx, "Gala", models.EventApproved, alice.ID)

	got := getStats(t, h, testutil.UserFor(alice.ID, alice.Username, alice.Role))
	if got.UpcomingEvents != 2 {
		t.Errorf("fallback upcomingEvents: got %d, want 2", got.UpcomingEvents)
	}
}

func TestMemberStats_Empty(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")

	got := getStats(t, h, testutil.UserFor(alice.ID, alice.Username, alice.Role))
	if got.UpcomingEvents != 0 || got.MyProposals != 0 || got.TasksCompleted != 0 || got.TasksPending != 0 {
		t.Errorf("expected all zeros, got %+v", got)
	}
}
