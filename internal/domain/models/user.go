// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins and members of the portal.
//
// NOTE:
//   - PasswordHash is never serialized to JSON; API responses use the
//     Public() projection.
//   - IsApproved gates whether a member may authenticate. Admins are
//     always allowed to log in.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | member
	IsApproved   bool               `bson:"is_approved" json:"isApproved"`
	Profile      Profile            `bson:"profile,omitempty" json:"profile,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile is the optional free-form profile a user maintains themselves.
type Profile struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Bio     string `bson:"bio,omitempty" json:"bio,omitempty"`
	Contact string `bson:"contact,omitempty" json:"contact,omitempty"`
	Image   string `bson:"image,omitempty" json:"image,omitempty"`
}

// Public returns a copy of the user safe to hand to API callers.
// The password hash is stripped; everything else is as stored.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
