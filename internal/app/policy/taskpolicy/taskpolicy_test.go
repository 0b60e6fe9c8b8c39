package taskpolicy_test

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/policy/taskpolicy"
	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/domain/models"
)

func TestIsAssignee(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	task := &models.Task{AssigneeIDs: []primitive.ObjectID{alice}}

	if !taskpolicy.IsAssignee(task, alice) {
		t.Error("expected alice to be an assignee")
	}
	if taskpolicy.IsAssignee(task, bob) {
		t.Error("expected bob not to be an assignee")
	}
}

func TestCanUpdateTask(t *testing.T) {
	assignee := primitive.NewObjectID()
	task := &models.Task{AssigneeIDs: []primitive.ObjectID{assignee}}

	assigneeReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/tasks/x", nil),
		&auth.TokenUser{ID: assignee.Hex(), Role: "member", IsApproved: true})
	strangerReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/tasks/x", nil),
		&auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "member", IsApproved: true})
	adminReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/tasks/x", nil),
		&auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "admin", IsApproved: true})
	anonReq := httptest.NewRequest("PUT", "/api/tasks/x", nil)

	if !taskpolicy.CanUpdateTask(assigneeReq, task) {
		t.Error("assignee should be able to update the task")
	}
	if taskpolicy.CanUpdateTask(strangerReq, task) {
		t.Error("non-assignee member should not update the task")
	}
	if !taskpolicy.CanUpdateTask(adminReq, task) {
		t.Error("admin should be able to update any task")
	}
	if taskpolicy.CanUpdateTask(anonReq, task) {
		t.Error("anonymous request should never update")
	}
}
