package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convenehq/convene/internal/app/system/normalize"
	"github.com/convenehq/convene/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateUsername is returned when attempting to create a user
	// with a username that is already taken. Matching is case-sensitive
	// and exact.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New(`role must be "admin"|"member"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by exact username.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Create inserts a new user after normalizing fields. The very first
// user registered becomes an approved admin; everyone after that starts
// as an unapproved member awaiting admin approval.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)

	if u.Role == "" {
		total, err := s.Count(ctx)
		if err != nil {
			return models.User{}, err
		}
		if total == 0 {
			u.Role = models.RoleAdmin
			u.IsApproved = true
		} else {
			u.Role = models.RoleMember
			u.IsApproved = false
		}
	}

	switch u.Role {
	case models.RoleAdmin, models.RoleMember:
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateProfile replaces a user's profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.Profile) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"profile":    p,
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

// Approve marks a user as approved so they can sign in and use the portal.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_approved": true,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	switch role {
	case models.RoleAdmin, models.RoleMember:
		// ok
	default:
		return errBadRole
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
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

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListPending returns member-role users awaiting admin approval,
// oldest first. Admins never sit in the approval queue.
func (s *Store) ListPending(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{"is_approved": false, "role": models.RoleMember},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// ListApproved returns approved users sorted by folded username.
// Message recipient pickers and member directories use this.
func (s *Store) ListApproved(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{"is_approved": true},
		options.Find().SetSort(bson.D{{Key: "username_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

func (s *Store) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UsernamesByID resolves a set of user ids to usernames. Missing users
// are simply absent from the result map.
func (s *Store) UsernamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	proj := options.Find().SetProjection(bson.M{"_id": 1, "username": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u struct {
			ID       primitive.ObjectID `bson:"_id"`
			Username string             `bson:"username"`
		}
		if cur.Decode(&u) == nil {
			out[u.ID] = u.Username
		}
	}
	return out, cur.Err()
}
