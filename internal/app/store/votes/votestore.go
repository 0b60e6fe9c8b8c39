// Package votestore persists event votes. Each user holds at most one
// vote document per event; the document's direction field says which
// way. The unique (event_id, user_id) index makes up and down votes
// mutually exclusive at the storage layer.
package votestore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("event_votes")}
}

// ErrBadDirection is returned for any direction other than "up"/"down".
var ErrBadDirection = errors.New(`vote direction must be "up"|"down"`)

// Resolve returns the direction that should be stored after a user
// casts `requested` while already holding `current` (empty if none).
// Voting the same direction again retracts the vote; an empty result
// means no vote remains. Voting the opposite direction replaces the
// existing vote.
func Resolve(current, requested string) string {
	if current == requested {
		return ""
	}
	return requested
}

// Toggle applies one vote action for (eventID, userID) and returns the
// direction now held, or "" when the vote was retracted.
func (s *Store) Toggle(ctx context.Context, eventID, userID primitive.ObjectID, direction string) (string, error) {
	if !models.ValidVoteDirection(direction) {
		return "", ErrBadDirection
	}

	filter := bson.M{"event_id": eventID, "user_id": userID}

	var existing models.Vote
	err := s.c.FindOne(ctx, filter).Decode(&existing)
	switch {
	case err == nil:
		// ok
	case errors.Is(err, mongo.ErrNoDocuments):
		existing = models.Vote{}
	default:
		return "", err
	}

	next := Resolve(existing.Direction, direction)
	if next == "" {
		if _, err := s.c.DeleteOne(ctx, filter); err != nil {
			return "", err
		}
		return "", nil
	}

	// Upsert keeps one document per (event, user). A concurrent insert
	// losing the race trips the unique index; the retry below then takes
	// the update path.
	update := bson.M{
		"$set":         bson.M{"direction": next},
		"$setOnInsert": bson.M{"event_id": eventID, "user_id": userID, "created_at": time.Now()},
	}
	if _, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			_, err = s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"direction": next}})
		}
		if err != nil {
			return "", err
		}
	}
	return next, nil
}

// ListByEvent returns all votes on an event.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Vote, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var votes []models.Vote
	if err := cur.All(ctx, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// Tally holds the voter ids for each direction on one event.
type Tally struct {
	Up   []primitive.ObjectID
	Down []primitive.ObjectID
}

// TallyByEvent splits an event's votes into up and down voter lists.
func (s *Store) TallyByEvent(ctx context.Context, eventID primitive.ObjectID) (Tally, error) {
	votes, err := s.ListByEvent(ctx, eventID)
	if err != nil {
		return Tally{}, err
	}

	var t Tally
	for _, v := range votes {
		switch v.Direction {
		case models.VoteUp:
			t.Up = append(t.Up, v.UserID)
		case models.VoteDown:
			t.Down = append(t.Down, v.UserID)
		}
	}
	return t, nil
}

// TalliesByEvent loads tallies for many events in one query.
func (s *Store) TalliesByEvent(ctx context.Context, eventIDs []primitive.ObjectID) (map[primitive.ObjectID]Tally, error) {
	out := make(map[primitive.ObjectID]Tally, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var v models.Vote
		if err := cur.Decode(&v); err != nil {
			continue
		}
		t := out[v.EventID]
		switch v.Direction {
		case models.VoteUp:
			t.Up = append(t.Up, v.UserID)
		case models.VoteDown:
			t.Down = append(t.Down, v.UserID)
		}
		out[v.EventID] = t
	}
	return out, cur.Err()
}
