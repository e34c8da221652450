// internal/app/store/labels/labelstore.go
package labelstore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateLabelName = errors.New("a label with this name already exists in the team")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("labels")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Label, error) {
	var l models.Label
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return models.Label{}, err
	}
	return l, nil
}

func (s *Store) Create(ctx context.Context, l models.Label) (models.Label, error) {
	l.ID = primitive.NewObjectID()
	l.NameCI = text.Fold(l.Name)
	l.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, l)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Label{}, ErrDuplicateLabelName
		}
		return models.Label{}, err
	}
	return l, nil
}

// Delete removes a label. Issues keep the dangling label ID; readers skip
// IDs they cannot resolve.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByTeam returns the team's labels sorted by name.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.Label, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	labels := []models.Label{}
	if err := cur.All(ctx, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}
