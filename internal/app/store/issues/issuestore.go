// internal/app/store/issues/issuestore.go
package issuestore

import (
	"context"
	"errors"
	"time"

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

var ErrBadStatus = errors.New("unrecognized issue status")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("issues")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	var i models.Issue
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&i); err != nil {
		return models.Issue{}, err
	}
	return i, nil
}

func (s *Store) Create(ctx context.Context, i models.Issue) (models.Issue, error) {
	now := time.Now().UTC()
	i.ID = primitive.NewObjectID()
	i.TitleCI = text.Fold(i.Title)
	if i.Status == "" {
		i.Status = models.IssueOpen
	}
	if !models.ValidIssueStatus(i.Status) {
		return models.Issue{}, ErrBadStatus
	}
	i.CreatedAt = now
	i.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, i); err != nil {
		return models.Issue{}, err
	}
	return i, nil
}

// Update is the single mutation path for issue fields. Nil pointer fields
// are left untouched; AssigneeID uses a double pointer so callers can
// distinguish "leave alone" (nil) from "unassign" (*nil).
type Update struct {
	Title       *string
	Description *string
	Status      *string
	AssigneeID  **primitive.ObjectID
	LabelIDs    *[]primitive.ObjectID
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
		set["title_ci"] = text.Fold(*upd.Title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		if !models.ValidIssueStatus(*upd.Status) {
			return ErrBadStatus
		}
		set["status"] = *upd.Status
	}
	if upd.AssigneeID != nil {
		if *upd.AssigneeID == nil {
			unset["assignee_id"] = ""
		} else {
			set["assignee_id"] = **upd.AssigneeID
		}
	}
	if upd.LabelIDs != nil {
		set["label_ids"] = *upd.LabelIDs
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "deleted_at": nil}, update)
	return err
}

func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "deleted_at": nil}, bson.M{"$set": bson.M{
		"deleted_at": now,
		"updated_at": now,
	}})
	return err
}

// ListByProject returns non-deleted issues in a project, most recently
// updated first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"project_id": projectID,
		"deleted_at": nil,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	issues := []models.Issue{}
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
