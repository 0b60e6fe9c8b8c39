// Package taskstore persists event preparation tasks. A task can be
// assigned to several members; its status is derived from who has
// marked it complete unless an admin overrides it by hand.
package taskstore

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
	return &Store{c: db.Collection("tasks")}
}

var (
	ErrBadStatus   = errors.New(`task status must be "pending"|"in-progress"|"completed"`)
	ErrNoAssignees = errors.New("task needs at least one assignee")
)

// DeriveStatus computes a task's status after a completion is recorded.
// Only completions by current assignees count; the task is completed
// when every assignee has completed it and in progress otherwise, so a
// completion that counts for nothing still moves a pending task to in
// progress. A task with no assignees can never complete. Pending is
// reserved for tasks nobody has touched (Add) or an admin reset
// (SetStatus).
func DeriveStatus(assignees, completedBy []primitive.ObjectID) string {
	if len(assignees) == 0 {
		return models.TaskPending
	}

	done := make(map[primitive.ObjectID]struct{}, len(completedBy))
	for _, id := range completedBy {
		done[id] = struct{}{}
	}

	for _, id := range assignees {
		if _, ok := done[id]; !ok {
			return models.TaskInProgress
		}
	}
	return models.TaskCompleted
}

// Add inserts a new task on an event.
func (s *Store) Add(ctx context.Context, t models.Task) (models.Task, error) {
	if len(t.AssigneeIDs) == 0 {
		return models.Task{}, ErrNoAssignees
	}

	t.ID = primitive.NewObjectID()
	t.CompletedBy = nil
	t.Status = models.TaskPending

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByEvent returns an event's tasks in creation order.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignee returns every task assigned to the given user.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"assignee_ids": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkComplete records that userID finished the task and re-derives the
// task status from the completion set. Returns the updated task.
func (s *Store) MarkComplete(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error) {
	// $addToSet keeps the completion set free of duplicates even when a
	// member marks the same task complete twice.
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{
		"$addToSet": bson.M{"completed_by": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}

	t, err := s.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	derived := DeriveStatus(t.AssigneeIDs, t.CompletedBy)
	if derived != t.Status {
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{
			"$set": bson.M{"status": derived},
		}); err != nil {
			return nil, err
		}
		t.Status = derived
	}
	return t, nil
}

// SetStatus is the admin override: the given status is stored verbatim.
// Resetting to pending also clears the completion set so the task truly
// starts over.
func (s *Store) SetStatus(ctx context.Context, taskID primitive.ObjectID, status string) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrBadStatus
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	if status == models.TaskPending {
		update["$set"].(bson.M)["completed_by"] = []primitive.ObjectID{}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": taskID}, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return s.GetByID(ctx, taskID)
}
