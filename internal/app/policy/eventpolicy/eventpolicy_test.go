package eventpolicy_test

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/policy/eventpolicy"
	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/domain/models"
)

func TestListFilter(t *testing.T) {
	admin := auth.WithTestUser(httptest.NewRequest("GET", "/api/events", nil),
		&auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "admin", IsApproved: true})
	member := auth.WithTestUser(httptest.NewRequest("GET", "/api/events", nil),
		&auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "member", IsApproved: true})

	// Admin without a filter sees everything.
	if got := eventpolicy.ListFilter(admin, ""); len(got) != 0 {
		t.Errorf("admin default filter: got %v, want empty", got)
	}

	// Member without a filter defaults to approved.
	want := bson.M{"status": models.EventApproved}
	if got := eventpolicy.ListFilter(member, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("member default filter: got %v, want %v", got, want)
	}

	// An explicit status wins for any caller.
	want = bson.M{"status": models.EventPending}
	if got := eventpolicy.ListFilter(member, "pending"); !reflect.DeepEqual(got, want) {
		t.Errorf("member explicit filter: got %v, want %v", got, want)
	}
	if got := eventpolicy.ListFilter(admin, "pending"); !reflect.DeepEqual(got, want) {
		t.Errorf("admin explicit filter: got %v, want %v", got, want)
	}

	// Garbage status falls back to the role default.
	if got := eventpolicy.ListFilter(member, "bogus"); !reflect.DeepEqual(got, bson.M{"status": models.EventApproved}) {
		t.Errorf("member bogus filter: got %v", got)
	}
}

func TestCanModify(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	ownerReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/events/x", nil),
		&auth.TokenUser{ID: owner.Hex(), Role: "member", IsApproved: true})
	strangerReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/events/x", nil),
		&auth.TokenUser{ID: stranger.Hex(), Role: "member", IsApproved: true})
	adminReq := auth.WithTestUser(httptest.NewRequest("PUT", "/api/events/x", nil),
		&auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "admin", IsApproved: true})
	anonReq := httptest.NewRequest("PUT", "/api/events/x", nil)

	if !eventpolicy.CanModify(ownerReq, owner) {
		t.Error("owner should be able to modify their proposal")
	}
	if eventpolicy.CanModify(strangerReq, owner) {
		t.Error("another member should not be able to modify the proposal")
	}
	if !eventpolicy.CanModify(adminReq, owner) {
		t.Error("admin should be able to modify any proposal")
	}
	if eventpolicy.CanModify(anonReq, owner) {
		t.Error("anonymous request should never modify")
	}

	if !eventpolicy.CanDelete(adminReq, owner) || eventpolicy.CanDelete(strangerReq, owner) {
		t.Error("CanDelete should mirror CanModify")
	}
}
