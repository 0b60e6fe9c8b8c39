// internal/app/policy/eventpolicy/eventpolicy.go
package eventpolicy

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/system/authz"
	"github.com/convenehq/convene/internal/domain/models"
)

// ListFilter builds the event list filter for the current request user.
// An explicit status filter wins for any caller. Without one, admins
// see every event while members default to approved events only.
// Unrecognized status values fall back to the role default.
func ListFilter(r *http.Request, status string) bson.M {
	if models.ValidEventStatus(status) {
		return bson.M{"status": status}
	}
	if authz.IsAdmin(r) {
		return bson.M{}
	}
	return bson.M{"status": models.EventApproved}
}

// CanModify reports whether the current request user may edit the event.
// Admins can edit anything; members can edit only their own proposals.
func CanModify(r *http.Request, proposedBy primitive.ObjectID) bool {
	return authz.IsSelfOrAdmin(r, proposedBy)
}

// CanDelete mirrors CanModify: owner or admin.
func CanDelete(r *http.Request, proposedBy primitive.ObjectID) bool {
	return CanModify(r, proposedBy)
}
