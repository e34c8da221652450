// internal/app/store/search/store.go

// Package searchstore is the Mongo implementation of search.Backend.
package searchstore

import (
	"context"
	"regexp"

	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	memberships *mongo.Collection
	teams       *mongo.Collection
	projects    *mongo.Collection
	issues      *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		memberships: db.Collection("team_memberships"),
		teams:       db.Collection("teams"),
		projects:    db.Collection("projects"),
		issues:      db.Collection("issues"),
	}
}

// containsCI builds a case-insensitive substring match. The query is
// treated as literal text, never as a user-supplied pattern.
func containsCI(query string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
}

func recentFirst(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit)
}

func (s *Store) TeamIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.memberships.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var m struct {
			TeamID primitive.ObjectID `bson:"team_id"`
		}
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m.TeamID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) SearchTeams(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Team, error) {
	filter := bson.M{
		"_id":        bson.M{"$in": teamIDs},
		"deleted_at": nil,
		"name":       containsCI(query),
	}
	cur, err := s.teams.Find(ctx, filter, recentFirst(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	teams := []models.Team{}
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) SearchProjects(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Project, error) {
	filter := bson.M{
		"team_id":    bson.M{"$in": teamIDs},
		"deleted_at": nil,
		"$or": []bson.M{
			{"name": containsCI(query)},
			{"description": containsCI(query)},
		},
	}
	cur, err := s.projects.Find(ctx, filter, recentFirst(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	projects := []models.Project{}
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// SearchIssues scopes transitively: resolve the visible project IDs first,
// then match issues inside them. Soft-deleted projects drop their issues
// out of scope here even if the issues themselves are not flagged.
func (s *Store) SearchIssues(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Issue, error) {
	projectIDs, err := s.visibleProjectIDs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"project_id": bson.M{"$in": projectIDs},
		"deleted_at": nil,
		"$or": []bson.M{
			{"title": containsCI(query)},
			{"description": containsCI(query)},
		},
	}
	cur, err := s.issues.Find(ctx, filter, recentFirst(limit))
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

func (s *Store) visibleProjectIDs(ctx context.Context, teamIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.projects.Find(ctx, bson.M{
		"team_id":    bson.M{"$in": teamIDs},
		"deleted_at": nil,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
