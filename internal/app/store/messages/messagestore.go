// Package messagestore persists direct messages between members.
package messagestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convenehq/convene/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

var (
	// ErrEmptyContent is returned when the message body is blank.
	ErrEmptyContent = errors.New("message content is required")
	// ErrSelfMessage is returned when sender and recipient are the same user.
	ErrSelfMessage = errors.New("cannot send a message to yourself")
)

// Create records a message from sender to recipient.
func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return models.Message{}, ErrEmptyContent
	}
	if m.SenderID == m.RecipientID {
		return models.Message{}, ErrSelfMessage
	}

	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// Conversation returns the full exchange between two users in
// chronological order, regardless of who sent which message.
func (s *Store) Conversation(ctx context.Context, a, b primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "recipient_id": b},
		bson.M{"sender_id": b, "recipient_id": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
