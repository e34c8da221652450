// internal/app/store/memberships/membershipstore_test.go
package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	"github.com/issuedeck/issuedeck/internal/app/system/indexes"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"github.com/issuedeck/issuedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestAddAndRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := membershipstore.New(db)

	team := primitive.NewObjectID()
	user := primitive.NewObjectID()

	if err := store.Add(ctx, team, user, models.RoleOwner); err != nil {
		t.Fatalf("Add: %v", err)
	}

	role, err := store.Role(ctx, team, user)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if role != models.RoleOwner {
		t.Errorf("role = %q, want owner", role)
	}

	// Non-members have no role.
	if _, err := store.Role(ctx, team, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Role for non-member err = %v, want ErrNoDocuments", err)
	}
}

func TestAddRejectsDuplicatesAndBadRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := membershipstore.New(db)

	team := primitive.NewObjectID()
	user := primitive.NewObjectID()

	if err := store.Add(ctx, team, user, models.RoleMember); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, team, user, models.RoleAdmin); !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("duplicate Add err = %v, want ErrDuplicateMembership", err)
	}
	if err := store.Add(ctx, team, primitive.NewObjectID(), "emperor"); !errors.Is(err, membershipstore.ErrBadRole) {
		t.Errorf("bad role err = %v, want ErrBadRole", err)
	}
}

func TestLastOwnerGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := membershipstore.New(db)

	team := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()

	if err := store.Add(ctx, team, owner, models.RoleOwner); err != nil {
		t.Fatalf("Add owner: %v", err)
	}
	if err := store.Add(ctx, team, member, models.RoleMember); err != nil {
		t.Fatalf("Add member: %v", err)
	}

	// The only owner can neither leave nor be demoted.
	if err := store.Remove(ctx, team, owner); !errors.Is(err, membershipstore.ErrLastOwner) {
		t.Errorf("Remove last owner err = %v, want ErrLastOwner", err)
	}
	if err := store.SetRole(ctx, team, owner, models.RoleMember); !errors.Is(err, membershipstore.ErrLastOwner) {
		t.Errorf("demote last owner err = %v, want ErrLastOwner", err)
	}

	// With a second owner, the first may step down.
	if err := store.SetRole(ctx, team, member, models.RoleOwner); err != nil {
		t.Fatalf("promote second owner: %v", err)
	}
	if err := store.Remove(ctx, team, owner); err != nil {
		t.Errorf("Remove with second owner: %v", err)
	}
}

func TestTeamIDsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := membershipstore.New(db)

	user := primitive.NewObjectID()
	teamA := primitive.NewObjectID()
	teamB := primitive.NewObjectID()

	if err := store.Add(ctx, teamA, user, models.RoleMember); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, teamB, user, models.RoleOwner); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ids, err := store.TeamIDsForUser(ctx, user)
	if err != nil {
		t.Fatalf("TeamIDsForUser: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d team IDs, want 2", len(ids))
	}

	ids, err = store.TeamIDsForUser(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("TeamIDsForUser (no teams): %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("got %d team IDs for user with none, want 0", len(ids))
	}
}
