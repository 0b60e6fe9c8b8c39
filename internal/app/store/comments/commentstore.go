// Package commentstore persists the append-only discussion thread
// attached to each event. Comments cannot be edited or deleted through
// the API; removing an event removes its thread.
package commentstore

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
	return &Store{c: db.Collection("event_comments")}
}

// ErrEmptyComment is returned when the comment text is blank.
var ErrEmptyComment = errors.New("comment text is required")

// Append adds a comment to an event's discussion.
func (s *Store) Append(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return models.Comment{}, ErrEmptyComment
	}

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListByEvent returns an event's discussion in chronological order.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
