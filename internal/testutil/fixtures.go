package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/convenehq/convene/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given parameters.
func (f *Fixtures) CreateUser(ctx context.Context, username, role string, approved bool) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtestha",
		Role:         role,
		IsApproved:   approved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates an approved test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, "admin", true)
}

// CreateMember creates an approved test member user.
func (f *Fixtures) CreateMember(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, "member", true)
}

// CreatePendingMember creates a member still awaiting admin approval.
func (f *Fixtures) CreatePendingMember(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, "member", false)
}

// CreateEvent creates a test event with the given status, proposed by the
// given user.
func (f *Fixtures) CreateEvent(ctx context.Context, title, status string, proposedBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		ID:                   primitive.NewObjectID(),
		Title:                title,
		Description:          "Test event description",
		Venue:                "Test Venue",
		ExpectedParticipants: 10,
		ProposedBy:           proposedBy,
		Status:               status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, event)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateEventOn creates an approved test event with a specific suggested date.
func (f *Fixtures) CreateEventOn(ctx context.Context, title string, suggested time.Time, proposedBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		ID:                   primitive.NewObjectID(),
		Title:                title,
		Description:          "Test event description",
		Venue:                "Test Venue",
		SuggestedDate:        &suggested,
		ExpectedParticipants: 10,
		ProposedBy:           proposedBy,
		Status:               models.EventApproved,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, event)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateVote records a vote on an event by a user.
func (f *Fixtures) CreateVote(ctx context.Context, eventID, userID primitive.ObjectID, direction string) models.Vote {
	f.t.Helper()

	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Direction: direction,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("event_votes").InsertOne(ctx, vote)
	if err != nil {
		f.t.Fatalf("failed to create test vote: %v", err)
	}

	return vote
}

// CreateTask creates a task on an event assigned to the given users.
func (f *Fixtures) CreateTask(ctx context.Context, eventID primitive.ObjectID, title string, assignees ...primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		Title:       title,
		AssigneeIDs: assignees,
		Status:      models.TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateComment appends a discussion comment to an event.
func (f *Fixtures) CreateComment(ctx context.Context, eventID, userID primitive.ObjectID, text string) models.Comment {
	f.t.Helper()

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("event_comments").InsertOne(ctx, comment)
	if err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}

	return comment
}

// CreateMessage records a direct message between two users.
func (f *Fixtures) CreateMessage(ctx context.Context, senderID, recipientID primitive.ObjectID, content string) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:          primitive.NewObjectID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("messages").InsertOne(ctx, msg)
	if err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}

	return msg
}
