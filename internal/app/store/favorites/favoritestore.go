// internal/app/store/favorites/favoritestore.go
package favoritestore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("favorites")}
}

// Toggle flips the favorite flag for (userID, projectID) and returns the new
// state. The unique index makes a concurrent double-insert collapse into a
// single favorite rather than duplicating.
func (s *Store) Toggle(ctx context.Context, userID, projectID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "project_id": projectID})
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}
	_, err = s.c.InsertOne(ctx, bson.M{
		"user_id":    userID,
		"project_id": projectID,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			// Lost a race with another toggle; the favorite exists.
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IsFavorite reports whether the user has favorited the project.
func (s *Store) IsFavorite(ctx context.Context, userID, projectID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "project_id": projectID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ProjectIDsForUser returns the set of project IDs the user has favorited.
// List endpoints use it to decorate project rows in one query.
func (s *Store) ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[primitive.ObjectID]struct{})
	for cur.Next(ctx) {
		var row struct {
			ProjectID primitive.ObjectID `bson:"project_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ProjectID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
