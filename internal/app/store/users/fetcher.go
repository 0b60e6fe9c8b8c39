package userstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/app/system/timeouts"
	"github.com/convenehq/convene/internal/domain/models"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID and returns nil if the user is not
// found or if any error occurs. This implements auth.UserFetcher.
// Unapproved users are still returned; route middleware decides what
// they may reach.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.TokenUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	// Use a short timeout for the DB query
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":         1,
		"username":    1,
		"role":        1,
		"is_approved": 1,
	})

	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		// User not found or DB error
		return nil
	}

	return &auth.TokenUser{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Role:       normalize.Role(u.Role),
		IsApproved: u.IsApproved,
	}
}
