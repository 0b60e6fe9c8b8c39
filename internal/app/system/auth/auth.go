// internal/app/system/auth/auth.go

// Package auth implements the bearer-token gate for the API.
//
// A TokenManager signs and verifies the JWTs handed out at registration
// and login. The LoadTokenUser middleware decodes the Authorization
// header on every request and, when the token checks out, fetches the
// referenced user fresh from the store and attaches it to the request
// context. Fetching fresh (rather than trusting claims) means role
// changes, approval revocations, and deletions take effect immediately.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/convenehq/convene/internal/app/system/httperr"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenUser is the authenticated caller injected into r.Context().
// It never carries the password hash.
type TokenUser struct {
	ID         string
	Username   string
	Role       string
	IsApproved bool
}

// UserFetcher loads fresh user data for the id carried in a verified
// token. Implementations return nil when the user no longer exists or
// may not authenticate.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *TokenUser
}

// TokenManager signs, verifies, and resolves bearer tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	log     *zap.Logger
	fetcher UserFetcher
}

// NewTokenManager builds a TokenManager from the configured signing
// secret. The ttl controls token expiry; zero means DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("token secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, log: logger}, nil
}

// SetUserFetcher wires the store lookup used by LoadTokenUser.
func (m *TokenManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// Issue signs a token whose subject is the given user id.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and returns the user id it
// was issued for. Expired, malformed, or foreign-signed tokens fail.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*TokenUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*TokenUser)
	return u, ok
}

// WithTestUser injects a TokenUser into the request context.
// Tests use this to simulate what LoadTokenUser does.
func WithTestUser(r *http.Request, u *TokenUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *TokenUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadTokenUser injects the user into context when the request carries a
// valid bearer token for a user that still exists. Requests without a
// usable token pass through unauthenticated; RequireSignedIn and
// RequireRole decide whether that matters.
func (m *TokenManager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.Verify(raw)
		if err != nil {
			// Invalid or expired token: treat as unauthenticated.
			next.ServeHTTP(w, r)
			return
		}

		if m.fetcher != nil {
			if u := m.fetcher.FetchUser(r.Context(), userID); u != nil {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadTokenUser). API callers without one get 401 with a JSON body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httperr.Unauthorized(w, "not authorized, no valid token")
	})
}

// RequireRole ensures there is a user with one of the allowed roles in
// context. Missing user → 401; wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httperr.Unauthorized(w, "not authorized, no valid token")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httperr.Forbidden(w, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
