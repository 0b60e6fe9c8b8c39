package bootstrap

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/convenehq/convene/internal/domain/models"
	"github.com/convenehq/convene/internal/testutil"
)

func TestMigrateScalarAssignees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	legacyID := primitive.NewObjectID()
	assignee := primitive.NewObjectID()

	// Legacy document: assignee stored as a single ObjectID.
	_, err := db.Collection("tasks").InsertOne(ctx, bson.M{
		"_id":          legacyID,
		"event_id":     primitive.NewObjectID(),
		"title":        "Old-style task",
		"assignee_ids": assignee,
		"completed_by": []primitive.ObjectID{},
		"status":       models.TaskPending,
		"created_at":   now,
		"updated_at":   now,
	})
	if err != nil {
		t.Fatalf("insert legacy task: %v", err)
	}

	// Current-shape document must be left alone.
	fixtures := testutil.NewFixtures(t, db)
	modern := fixtures.CreateTask(ctx, primitive.NewObjectID(), "New-style task", assignee)

	migrated, err := migrateScalarAssignees(ctx, db)
	if err != nil {
		t.Fatalf("migrateScalarAssignees failed: %v", err)
	}
	if migrated != 1 {
		t.Errorf("migrated: got %d, want 1", migrated)
	}

	var got models.Task
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": legacyID}).Decode(&got); err != nil {
		t.Fatalf("find migrated task: %v", err)
	}
	if len(got.AssigneeIDs) != 1 || got.AssigneeIDs[0] != assignee {
		t.Errorf("assignees after migration: %v, want [%s]", got.AssigneeIDs, assignee.Hex())
	}

	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": modern.ID}).Decode(&got); err != nil {
		t.Fatalf("find modern task: %v", err)
	}
	if len(got.AssigneeIDs) != 1 || got.AssigneeIDs[0] != assignee {
		t.Errorf("modern task changed by migration: %v", got.AssigneeIDs)
	}

	// Second run matches nothing.
	migrated, err = migrateScalarAssignees(ctx, db)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if migrated != 0 {
		t.Errorf("second run migrated %d tasks, want 0", migrated)
	}
}
