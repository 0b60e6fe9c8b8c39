package commentstore_test

import (
	"errors"
	"testing"
	"time"

	commentstore "github.com/convenehq/convene/internal/app/store/comments"
	"github.com/convenehq/convene/internal/domain/models"
	"github.com/convenehq/convene/internal/testutil"
)

func TestStore_Append(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "commenter")
	event := fixtures.CreateEvent(ctx, "Discussed", models.EventApproved, member.ID)

	created, err := store.Append(ctx, models.Comment{
		EventID: event.ID,
		UserID:  member.ID,
		Text:    "  Sounds great!  ",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if created.Text != "Sounds great!" {
		t.Errorf("text: got %q, want trimmed text", created.Text)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Append_RejectsBlank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "commenter")
	event := fixtures.CreateEvent(ctx, "Discussed", models.EventApproved, member.ID)

	_, err := store.Append(ctx, models.Comment{
		EventID: event.ID,
		UserID:  member.ID,
		Text:    "   ",
	})
	if !errors.Is(err, commentstore.ErrEmptyComment) {
		t.Errorf("expected ErrEmptyComment, got %v", err)
	}
}

func TestStore_ListByEvent_Chronological(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "commenter")
	event := fixtures.CreateEvent(ctx, "Discussed", models.EventApproved, member.ID)
	other := fixtures.CreateEvent(ctx, "Elsewhere", models.EventApproved, member.ID)

	if _, err := store.Append(ctx, models.Comment{EventID: event.ID, UserID: member.ID, Text: "first"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Append(ctx, models.Comment{EventID: event.ID, UserID: member.ID, Text: "second"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.Append(ctx, models.Comment{EventID: other.ID, UserID: member.ID, Text: "unrelated"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	comments, err := store.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListByEvent failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comment count: got %d, want 2", len(comments))
	}
	if comments[0].Text != "first" || comments[1].Text != "second" {
		t.Error("expected chronological ordering")
	}
}
