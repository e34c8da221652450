// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_memberships")}
}

var (
	ErrBadRole             = errors.New(`role must be "owner", "admin", or "member"`)
	ErrDuplicateMembership = errors.New("user is already a member of this team")
	ErrLastOwner           = errors.New("a team must keep at least one owner")
)

func validRole(role string) bool {
	return role == models.RoleOwner || role == models.RoleAdmin || role == models.RoleMember
}

// Add creates a membership after validating the role.
func (s *Store) Add(ctx context.Context, teamID, userID primitive.ObjectID, role string) error {
	if !validRole(role) {
		return ErrBadRole
	}
	doc := bson.M{
		"team_id":    teamID,
		"user_id":    userID,
		"role":       role,
		"created_at": time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (teamID, userID). Removing the
// last owner is refused so the team stays manageable.
func (s *Store) Remove(ctx context.Context, teamID, userID primitive.ObjectID) error {
	role, err := s.Role(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if role == models.RoleOwner {
		owners, err := s.c.CountDocuments(ctx, bson.M{"team_id": teamID, "role": models.RoleOwner})
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"team_id": teamID, "user_id": userID})
	return err
}

// SetRole changes an existing membership's role. Demoting the last owner is
// refused.
func (s *Store) SetRole(ctx context.Context, teamID, userID primitive.ObjectID, role string) error {
	if !validRole(role) {
		return ErrBadRole
	}
	current, err := s.Role(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if current == models.RoleOwner && role != models.RoleOwner {
		owners, err := s.c.CountDocuments(ctx, bson.M{"team_id": teamID, "role": models.RoleOwner})
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}
	_, err = s.c.UpdateOne(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	return err
}

// Role returns the role for (teamID, userID), or mongo.ErrNoDocuments if the
// user is not a member.
func (s *Store) Role(ctx context.Context, teamID, userID primitive.ObjectID) (string, error) {
	var m models.TeamMembership
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Decode(&m)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// IsMember checks membership without caring about role.
func (s *Store) IsMember(ctx context.Context, teamID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TeamIDsForUser resolves the set of team identifiers the user belongs to.
// This is the single membership lookup behind every authorization-scoped
// read; callers resolve it once per request and treat it as immutable.
func (s *Store) TeamIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
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

// ListByTeam returns all memberships for a team.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.TeamMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}
