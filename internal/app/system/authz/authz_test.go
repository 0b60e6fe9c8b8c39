package authz_test

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/app/system/authz"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestIsAdmin_True_ForAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   testUserID(),
		Role: "admin",
	})

	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return true for admin user")
	}
}

func TestIsAdmin_False_ForMember(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   testUserID(),
		Role: "member",
	})

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false for member user")
	}
}

func TestIsAdmin_False_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false when no user")
	}
}

func TestIsAdmin_NormalizesRoleCase(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   testUserID(),
		Role: "Admin",
	})

	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin to lowercase the role before comparing")
	}
}

func TestIsSelfOrAdmin(t *testing.T) {
	self := primitive.NewObjectID()
	other := primitive.NewObjectID()

	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   self.Hex(),
		Role: "member",
	})

	if !authz.IsSelfOrAdmin(req, self) {
		t.Error("expected member to pass for their own record")
	}
	if authz.IsSelfOrAdmin(req, other) {
		t.Error("expected member to fail for another user's record")
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   primitive.NewObjectID().Hex(),
		Role: "admin",
	})

	if !authz.IsSelfOrAdmin(req, other) {
		t.Error("expected admin to pass for any record")
	}
}

func TestUserCtx_ReturnsUser(t *testing.T) {
	userID := testUserID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:       userID,
		Username: "ada",
		Role:     "admin",
	})

	role, username, actorID, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected UserCtx to return ok=true")
	}
	if role != "admin" {
		t.Errorf("expected role 'admin', got %q", role)
	}
	if username != "ada" {
		t.Errorf("expected username 'ada', got %q", username)
	}
	if actorID.Hex() != userID {
		t.Errorf("expected actorID %s, got %s", userID, actorID.Hex())
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   "not-a-hex-id",
		Role: "admin",
	})

	role, _, actorID, ok := authz.UserCtx(req)
	if ok {
		t.Fatal("expected ok=false for malformed user ID")
	}
	if role != "visitor" {
		t.Errorf("expected role 'visitor', got %q", role)
	}
	if !actorID.IsZero() {
		t.Errorf("expected NilObjectID, got %s", actorID.Hex())
	}
}

func TestHasAnyRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{
		ID:   testUserID(),
		Role: "member",
	})

	if !authz.HasAnyRole(req, "admin", "member") {
		t.Error("expected HasAnyRole to match 'member'")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected HasAnyRole to reject roles the user lacks")
	}
	if authz.HasAnyRole(httptest.NewRequest("GET", "/test", nil), "member") {
		t.Error("expected HasAnyRole to return false with no user")
	}
}
