// internal/app/system/auth/auth_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, ttl, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

type stubFetcher struct {
	users map[string]*TokenUser
}

func (f *stubFetcher) FetchUser(_ context.Context, userID string) *TokenUser {
	return f.users[userID]
}

func TestNewTokenManagerRejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	tok, err := m.Issue("64b000000000000000000001")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "64b000000000000000000001" {
		t.Fatalf("subject = %q, want the issued user id", got)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t, time.Hour)
	m.ttl = -time.Minute

	tok, err := m.Issue("64b000000000000000000001")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(tok); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyRejectsGarbageAndForeignTokens(t *testing.T) {
	m := newTestManager(t, time.Hour)

	if _, err := m.Verify("not-a-token"); err == nil {
		t.Fatal("expected garbage token to fail")
	}

	other := newTestManager(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")
	tok, err := other.Issue("64b000000000000000000001")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(tok); err == nil {
		t.Fatal("expected token signed with another secret to fail")
	}
}

func TestLoadTokenUserAttachesUser(t *testing.T) {
	m := newTestManager(t, time.Hour)
	m.SetUserFetcher(&stubFetcher{users: map[string]*TokenUser{
		"64b000000000000000000001": {ID: "64b000000000000000000001", Username: "ada", Role: "admin", IsApproved: true},
	}})

	tok, err := m.Issue("64b000000000000000000001")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var seen *TokenUser
	handler := m.LoadTokenUser(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil {
		t.Fatal("expected user in context")
	}
	if seen.Username != "ada" || seen.Role != "admin" {
		t.Fatalf("unexpected user in context: %+v", seen)
	}
}

func TestLoadTokenUserIgnoresUnknownSubject(t *testing.T) {
	m := newTestManager(t, time.Hour)
	m.SetUserFetcher(&stubFetcher{users: map[string]*TokenUser{}})

	tok, err := m.Issue("64b0000000000000000000ff")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var found bool
	handler := m.LoadTokenUser(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, found = CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("deleted user should not be attached to the request")
	}
}

func TestRequireSignedIn(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireSignedIn(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&TokenUser{ID: "64b000000000000000000001", Role: "member"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("signed-in request: status = %d, want 204", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole("admin")(next)

	tests := []struct {
		name string
		user *TokenUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong role", &TokenUser{ID: "1", Role: "member"}, http.StatusForbidden},
		{"allowed role", &TokenUser{ID: "2", Role: "admin"}, http.StatusNoContent},
		{"role matching is case-insensitive", &TokenUser{ID: "3", Role: "Admin"}, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.user != nil {
				req = WithTestUser(req, tc.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
