// internal/domain/models/status.go
package models

// User roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Event proposal statuses.
const (
	EventPending  = "pending"
	EventApproved = "approved"
	EventDeclined = "declined"
)

// ValidRole reports whether role is a recognized user role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// ValidEventStatus reports whether s is a recognized event status.
func ValidEventStatus(s string) bool {
	return s == EventPending || s == EventApproved || s == EventDeclined
}

// ValidTaskStatus reports whether s is a recognized task status.
func ValidTaskStatus(s string) bool {
	return s == TaskPending || s == TaskInProgress || s == TaskCompleted
}

// ValidVoteDirection reports whether d is a recognized vote direction.
func ValidVoteDirection(d string) bool {
	return d == VoteUp || d == VoteDown
}
