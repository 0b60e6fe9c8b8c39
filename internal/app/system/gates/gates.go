// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, writing the appropriate
// JSON error when checks fail.
//
// # Three-Tier Authorization Pattern
//
// Convene uses a three-tier authorization approach:
//
//  1. Route-Level Middleware (auth.RequireSignedIn, auth.RequireRole)
//     Applied in routes.go files for coarse-grained access control.
//     Example: auth.RequireRole("admin") ensures all routes in a group require admin.
//     When middleware handles role checking, handlers don't need gates.
//
//  2. Handler-Level Gates (this package)
//     Used in handlers that need role checks WITHOUT route-level middleware,
//     or need different role requirements than the route group.
//     Gates write the error response and return user context (role, username, userID).
//
//  3. Policy Layer (internal/app/policy/*)
//     Used for resource-specific authorization such as ownership checks.
//     Example: eventpolicy.CanModify checks if user can edit a specific event.
//     Policies return bool - callers handle error writing.
//
// Don't use gates in handlers that are behind role-specific middleware.
// If routes.go has RequireRole("admin"), handlers don't need gates.RequireAdmin.
// Instead, use authz.UserCtx(r) to get user context without re-checking role.
package gates

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/app/system/authz"
	"github.com/convenehq/convene/internal/app/system/httperr"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role     string
	Username string
	UserID   primitive.ObjectID
	OK       bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it writes a 401 JSON error and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, username, uid, ok := authz.UserCtx(r)
	if !ok {
		httperr.Unauthorized(w, "")
		return Result{OK: false}
	}
	return Result{Role: role, Username: username, UserID: uid, OK: true}
}

// RequireAdmin ensures the user is authenticated and has the admin role.
// If not authenticated, writes 401. If authenticated but not admin,
// writes 403 with the provided message.
func RequireAdmin(w http.ResponseWriter, r *http.Request, forbiddenMsg string) Result {
	role, username, uid, ok := authz.UserCtx(r)
	if !ok {
		httperr.Unauthorized(w, "")
		return Result{OK: false}
	}
	if role != "admin" {
		httperr.Forbidden(w, forbiddenMsg)
		return Result{OK: false}
	}
	return Result{Role: role, Username: username, UserID: uid, OK: true}
}

// RequireAnyRole ensures the user is authenticated and has one of the
// specified roles. Missing user writes 401; a role outside the allowed
// list writes 403.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, forbiddenMsg string, allowedRoles ...string) Result {
	role, username, uid, ok := authz.UserCtx(r)
	if !ok {
		httperr.Unauthorized(w, "")
		return Result{OK: false}
	}

	if !authz.HasAnyRole(r, allowedRoles...) {
		httperr.Forbidden(w, forbiddenMsg)
		return Result{OK: false}
	}
	return Result{Role: role, Username: username, UserID: uid, OK: true}
}
