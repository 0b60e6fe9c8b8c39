// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses. Completed is derived from the assignee/completion
// sets except when an admin or assignee overrides it manually.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
)

// Task is a unit of work attached to an event.
//
// AssigneeIDs is always an array; legacy documents that stored a single
// scalar assignee are normalized once at startup (bootstrap.EnsureSchema).
// CompletedBy may contain ids of users who were later unassigned; those
// entries stay stored but do not count toward completion.
type Task struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID   `bson:"event_id" json:"eventId"`
	Title       string               `bson:"title" json:"title"`
	Deadline    *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	AssigneeIDs []primitive.ObjectID `bson:"assignee_ids" json:"assignedTo"`
	CompletedBy []primitive.ObjectID `bson:"completed_by" json:"completedBy"`
	Status      string               `bson:"status" json:"status"` // pending | in-progress | completed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
