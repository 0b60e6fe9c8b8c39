package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID         string
	Username   string
	Role       string
	IsApproved bool
}

// AdminUser returns an approved TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:         primitive.NewObjectID().Hex(),
		Username:   "testadmin",
		Role:       "admin",
		IsApproved: true,
	}
}

// MemberUser returns an approved TestUser with member role.
func MemberUser() TestUser {
	return TestUser{
		ID:         primitive.NewObjectID().Hex(),
		Username:   "testmember",
		Role:       "member",
		IsApproved: true,
	}
}

// UserFor returns a TestUser matching an existing user id.
func UserFor(id primitive.ObjectID, username, role string) TestUser {
	return TestUser{
		ID:         id.Hex(),
		Username:   username,
		Role:       role,
		IsApproved: true,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the token middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	tokenUser := &auth.TokenUser{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		IsApproved: user.IsApproved,
	}
	return auth.WithTestUser(r, tokenUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a response body into out, failing the test on error.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
