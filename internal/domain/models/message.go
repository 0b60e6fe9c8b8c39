// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users. Messages are immutable
// once created; a conversation is the union of both directions between
// the pair, ordered oldest first.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    primitive.ObjectID `bson:"sender_id" json:"senderId"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipientId"`
	Content     string             `bson:"content" json:"content"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
