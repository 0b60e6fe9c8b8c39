// internal/app/system/normalize/normalize.go

// Package normalize provides canonicalization helpers for user-supplied
// fields. Every write path runs its inputs through these so the store
// never sees stray whitespace or mixed-case enum values.
package normalize

import "strings"

// Username trims surrounding whitespace. Case is preserved: usernames
// are unique by exact match, and the folded username_ci field is only a
// sort key.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Name trims surrounding whitespace while preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value ("admin", "member").
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value
// ("pending", "approved", "declined" for events;
// "pending", "in-progress", "completed" for tasks).
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Direction lowercases and trims a vote direction ("up", "down").
func Direction(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
