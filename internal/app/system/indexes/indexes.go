// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := ensureEventVotes(ctx, db); err != nil {
		problems = append(problems, "event_votes: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureEventComments(ctx, db); err != nil {
		problems = append(problems, "event_comments: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "messages: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// ensureIndexSet reconciles the desired indexes for one collection:
// reuse an existing index when keys and options match, drop and recreate
// when the options differ (e.g. upgrading to unique), create otherwise.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Usernames are unique with case-sensitive exact matching.
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_username"),
		},

		// Admin user lists: filter by approval, sort by folded username.
		{
			Keys: bson.D{
				{Key: "is_approved", Value: 1},
				{Key: "username_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_approved_usernameci_id"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// List pages: filter by status, newest first.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_events_status_createdat"),
		},
		// "My proposals" view.
		{
			Keys:    bson.D{{Key: "proposed_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_events_proposedby_createdat"),
		},
		// Stats: approved events with a future suggested date.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "suggested_date", Value: 1}},
			Options: options.Index().SetName("idx_events_status_suggesteddate"),
		},
	})
}

func ensureEventVotes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("event_votes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one vote per (event, user); the document's direction
		// field says which way. This is what makes up/down mutually
		// exclusive at the storage layer.
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_votes_event_user"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "direction", Value: 1}},
			Options: options.Index().SetName("idx_votes_event_direction"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tasks")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_tasks_event_createdat"),
		},
		// Per-member task lookups for stats.
		{
			Keys:    bson.D{{Key: "assignee_ids", Value: 1}},
			Options: options.Index().SetName("idx_tasks_assignees"),
		},
	})
}

func ensureEventComments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("event_comments")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Discussion thread in chronological order.
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_comments_event_createdat"),
		},
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("messages")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Conversation queries filter on both participants either way
		// round; two mirrored compound indexes cover both arms of the $or.
		{
			Keys: bson.D{
				{Key: "sender_id", Value: 1},
				{Key: "recipient_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_messages_sender_recipient_createdat"),
		},
		{
			Keys: bson.D{
				{Key: "recipient_id", Value: 1},
				{Key: "sender_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_messages_recipient_sender_createdat"),
		},
	})
}
