// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a member-proposed event awaiting (or past) admin review.
//
// Votes, tasks, and discussion comments live in their own collections
// keyed by the event id; see Vote, Task, and Comment. The events
// collection holds only the proposal itself.
type Event struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	Venue                string             `bson:"venue,omitempty" json:"venue,omitempty"`
	SuggestedDate        *time.Time         `bson:"suggested_date,omitempty" json:"suggestedDate,omitempty"`
	ExpectedParticipants int                `bson:"expected_participants,omitempty" json:"expectedParticipants,omitempty"`
	ProposedBy           primitive.ObjectID `bson:"proposed_by" json:"proposedBy"`
	Status               string             `bson:"status" json:"status"` // pending | approved | declined

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
