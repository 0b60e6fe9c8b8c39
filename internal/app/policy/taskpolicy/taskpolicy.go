// internal/app/policy/taskpolicy/taskpolicy.go
package taskpolicy

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/system/authz"
	"github.com/convenehq/convene/internal/domain/models"
)

// IsAssignee reports whether userID appears in the task's assignee list.
func IsAssignee(t *models.Task, userID primitive.ObjectID) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanUpdateTask reports whether the current request user may change a
// task's completion state. Admins can touch any task; members only
// tasks they are assigned to.
func CanUpdateTask(r *http.Request, t *models.Task) bool {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return authz.IsAdmin(r) || IsAssignee(t, uid)
}
