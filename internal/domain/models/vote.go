// internal/domain/models/vote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote records one user's standing vote on one event.
//
// The (event_id, user_id) pair is unique-indexed, so a user holds at
// most one vote per event; the toggle semantics live in the votes store.
type Vote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"eventId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Direction string             `bson:"direction" json:"direction"` // up | down

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
