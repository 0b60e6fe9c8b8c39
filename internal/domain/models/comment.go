// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is one entry in an event's discussion thread.
// Comments are append-only; there is no edit or delete path.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"eventId"`
	UserID  primitive.ObjectID `bson:"user_id" json:"userId"`
	Text    string             `bson:"text" json:"text"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
