// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("an account with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a non-deleted user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email, "deleted_at": nil}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertGoogleUser creates or refreshes a user record from a Google OAuth
// profile. Existing password accounts keep their auth method; only the
// display fields are refreshed.
func (s *Store) UpsertGoogleUser(ctx context.Context, email, fullName, avatarURL string) (models.User, error) {
	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		set := bson.M{
			"full_name":    fullName,
			"full_name_ci": text.Fold(fullName),
			"updated_at":   time.Now().UTC(),
		}
		if avatarURL != "" {
			set["avatar_url"] = avatarURL
		}
		if _, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": set}); err != nil {
			return models.User{}, err
		}
		return s.GetByID(ctx, existing.ID)
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}

	return s.Create(ctx, models.User{
		FullName:   fullName,
		Email:      email,
		AuthMethod: "google",
		AvatarURL:  avatarURL,
	})
}

// SetPasswordHash replaces the stored bcrypt hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// SoftDelete marks the user deleted; the record stays for audit trails but
// is excluded from every read path.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"deleted_at": now,
		"updated_at": now,
	}})
	return err
}
