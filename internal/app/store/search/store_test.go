// internal/app/store/search/store_test.go
package searchstore_test

import (
	"testing"
	"time"

	searchstore "github.com/issuedeck/issuedeck/internal/app/store/search"
	"github.com/issuedeck/issuedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchScopingAndMatching(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := searchstore.New(db)

	user := fx.CreateUser(ctx, "Member One", "m1@example.com")
	team := fx.CreateTeam(ctx, "Falcon Crew")
	otherTeam := fx.CreateTeam(ctx, "Falcon Rivals")
	fx.AddMember(ctx, team.ID, user.ID, "member")

	project := fx.CreateProject(ctx, team.ID, "Falcon Tracker")
	otherProject := fx.CreateProject(ctx, otherTeam.ID, "Falcon Secret")
	fx.CreateIssue(ctx, project.ID, user.ID, "Falcon crash on launch")
	fx.CreateIssue(ctx, otherProject.ID, user.ID, "Falcon leak")

	teamIDs, err := store.TeamIDsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("TeamIDsForUser: %v", err)
	}
	if len(teamIDs) != 1 || teamIDs[0] != team.ID {
		t.Fatalf("teamIDs = %v, want just %v", teamIDs, team.ID)
	}

	// Case-insensitive substring match, scoped to the member's team.
	issues, err := store.SearchIssues(ctx, teamIDs, "fAlCoN", 10)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "Falcon crash on launch" {
		t.Errorf("issues = %+v, want only the in-scope issue", issues)
	}

	projects, err := store.SearchProjects(ctx, teamIDs, "falcon", 5)
	if err != nil {
		t.Fatalf("SearchProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != project.ID {
		t.Errorf("projects = %+v, want only the in-scope project", projects)
	}

	teams, err := store.SearchTeams(ctx, teamIDs, "falcon", 5)
	if err != nil {
		t.Fatalf("SearchTeams: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != team.ID {
		t.Errorf("teams = %+v, want only the member team", teams)
	}
}

func TestSearchExcludesSoftDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := searchstore.New(db)

	user := fx.CreateUser(ctx, "Member Two", "m2@example.com")
	team := fx.CreateTeam(ctx, "Orbit Crew")
	fx.AddMember(ctx, team.ID, user.ID, "member")
	project := fx.CreateProject(ctx, team.ID, "Orbit Tracker")
	fx.CreateIssue(ctx, project.ID, user.ID, "Orbit drift bug")

	// Soft-delete the project; its issue must fall out of scope too.
	now := time.Now().UTC()
	if _, err := db.Collection("projects").UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$set": bson.M{"deleted_at": now}}); err != nil {
		t.Fatalf("soft delete project: %v", err)
	}

	teamIDs := []primitive.ObjectID{team.ID}

	projects, err := store.SearchProjects(ctx, teamIDs, "orbit", 5)
	if err != nil {
		t.Fatalf("SearchProjects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("soft-deleted project still matched: %+v", projects)
	}

	issues, err := store.SearchIssues(ctx, teamIDs, "orbit", 10)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issue of soft-deleted project still matched: %+v", issues)
	}
}

func TestSearchIssuesLimitAndOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := searchstore.New(db)

	user := fx.CreateUser(ctx, "Member Three", "m3@example.com")
	team := fx.CreateTeam(ctx, "Limit Crew")
	fx.AddMember(ctx, team.ID, user.ID, "member")
	project := fx.CreateProject(ctx, team.ID, "Limit Tracker")

	for i := 0; i < 15; i++ {
		fx.CreateIssue(ctx, project.ID, user.ID, "widget bug")
	}

	issues, err := store.SearchIssues(ctx, []primitive.ObjectID{team.ID}, "widget", 10)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if len(issues) != 10 {
		t.Errorf("got %d issues, want limit of 10", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i].UpdatedAt.After(issues[i-1].UpdatedAt) {
			t.Errorf("issues not sorted newest-updated first at index %d", i)
		}
	}
}

func TestSearchEmptyTeamScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := searchstore.New(db)

	issues, err := store.SearchIssues(ctx, nil, "anything", 10)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("got %d issues for empty scope, want 0", len(issues))
	}
}

func TestSearchQueryTreatedAsLiteral(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := searchstore.New(db)

	user := fx.CreateUser(ctx, "Member Four", "m4@example.com")
	team := fx.CreateTeam(ctx, "Regex Crew")
	fx.AddMember(ctx, team.ID, user.ID, "member")
	project := fx.CreateProject(ctx, team.ID, "Regex Tracker")
	fx.CreateIssue(ctx, project.ID, user.ID, "literal a.c title")
	fx.CreateIssue(ctx, project.ID, user.ID, "abc title")

	// "a.c" must match only the literal dot, not act as a wildcard.
	issues, err := store.SearchIssues(ctx, []primitive.ObjectID{team.ID}, "a.c", 10)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "literal a.c title" {
		t.Errorf("regex metacharacters leaked into the query: %+v", issues)
	}
}
