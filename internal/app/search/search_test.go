// internal/app/search/search_test.go
package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeBackend serves canned data through the same scoping rules the Mongo
// store applies, so the aggregator is tested against the full contract.
type fakeBackend struct {
	memberships map[primitive.ObjectID][]primitive.ObjectID
	teams       []models.Team
	projects    []models.Project
	issues      []models.Issue

	calls         atomic.Int64
	membershipErr error
	issueErr      error
	issueDelay    time.Duration
}

func (f *fakeBackend) TeamIDsForUser(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.calls.Add(1)
	if f.membershipErr != nil {
		return nil, f.membershipErr
	}
	return f.memberships[userID], nil
}

func inScope(teamIDs []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, t := range teamIDs {
		if t == id {
			return true
		}
	}
	return false
}

func matches(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (f *fakeBackend) SearchTeams(_ context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Team, error) {
	f.calls.Add(1)
	out := []models.Team{}
	for _, t := range f.teams {
		if t.DeletedAt != nil || !inScope(teamIDs, t.ID) || !matches(query, t.Name) {
			continue
		}
		out = append(out, t)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBackend) SearchProjects(_ context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Project, error) {
	f.calls.Add(1)
	out := []models.Project{}
	for _, p := range f.projects {
		if p.DeletedAt != nil || !inScope(teamIDs, p.TeamID) || !matches(query, p.Name, p.Description) {
			continue
		}
		out = append(out, p)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBackend) SearchIssues(_ context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Issue, error) {
	f.calls.Add(1)
	if f.issueDelay > 0 {
		time.Sleep(f.issueDelay)
	}
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	visible := map[primitive.ObjectID]bool{}
	for _, p := range f.projects {
		if p.DeletedAt == nil && inScope(teamIDs, p.TeamID) {
			visible[p.ID] = true
		}
	}
	out := []models.Issue{}
	for _, i := range f.issues {
		if i.DeletedAt != nil || !visible[i.ProjectID] || !matches(query, i.Title, i.Description) {
			continue
		}
		out = append(out, i)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func newFixture() (*fakeBackend, primitive.ObjectID, primitive.ObjectID) {
	user := primitive.NewObjectID()
	outsider := primitive.NewObjectID()
	team := primitive.NewObjectID()
	otherTeam := primitive.NewObjectID()
	project := primitive.NewObjectID()
	otherProject := primitive.NewObjectID()

	fb := &fakeBackend{
		memberships: map[primitive.ObjectID][]primitive.ObjectID{
			user:     {team},
			outsider: {otherTeam},
		},
		teams: []models.Team{
			{ID: team, Name: "Alpha Squad"},
			{ID: otherTeam, Name: "Alpha Rivals"},
		},
		projects: []models.Project{
			{ID: project, TeamID: team, Name: "Alpha Launch"},
			{ID: otherProject, TeamID: otherTeam, Name: "Alpha Secret"},
		},
		issues: []models.Issue{
			{ID: primitive.NewObjectID(), ProjectID: project, Title: "Fix alpha banner", Status: models.IssueOpen},
			{ID: primitive.NewObjectID(), ProjectID: otherProject, Title: "Alpha leak", Status: models.IssueOpen},
		},
	}
	return fb, user, outsider
}

func TestSearchRequiresAuthentication(t *testing.T) {
	fb, _, _ := newFixture()
	agg := New(fb, zap.NewNop())

	_, err := agg.Search(context.Background(), primitive.NilObjectID, "alpha")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if got := fb.calls.Load(); got != 0 {
		t.Errorf("backend calls = %d, want 0 for unauthenticated request", got)
	}
}

func TestSearchBlankQueryShortCircuits(t *testing.T) {
	fb, user, _ := newFixture()
	agg := New(fb, zap.NewNop())

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := agg.Search(context.Background(), user, q)
		if err != nil {
			t.Fatalf("Search(%q) err = %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", q, len(results))
		}
	}
	if got := fb.calls.Load(); got != 0 {
		t.Errorf("backend calls = %d, want 0 for blank queries", got)
	}
}

func TestSearchScopedToMemberships(t *testing.T) {
	fb, user, _ := newFixture()
	agg := New(fb, zap.NewNop())

	results, err := agg.Search(context.Background(), user, "alpha")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}

	// One issue, one project, one team; nothing from the rival team.
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}
	for _, r := range results {
		switch r.Title {
		case "Alpha Rivals", "Alpha Secret", "Alpha leak":
			t.Errorf("result %q leaked from another team's scope", r.Title)
		}
	}
}

func TestSearchKindOrdering(t *testing.T) {
	fb, user, _ := newFixture()
	agg := New(fb, zap.NewNop())

	results, err := agg.Search(context.Background(), user, "alpha")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}

	want := []string{KindIssue, KindProject, KindTeam}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.Kind != want[i] {
			t.Errorf("results[%d].Kind = %q, want %q", i, r.Kind, want[i])
		}
	}
}

func TestSearchIssueResultCarriesProjectAndStatus(t *testing.T) {
	fb, user, _ := newFixture()
	agg := New(fb, zap.NewNop())

	results, err := agg.Search(context.Background(), user, "banner")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Kind != KindIssue {
		t.Fatalf("Kind = %q, want issue", r.Kind)
	}
	if r.ProjectID == "" || r.Status != models.IssueOpen {
		t.Errorf("issue result missing project/status: %+v", r)
	}
}

func TestSearchZeroMembershipsReturnsEmpty(t *testing.T) {
	fb, _, _ := newFixture()
	lonely := primitive.NewObjectID()
	agg := New(fb, zap.NewNop())

	results, err := agg.Search(context.Background(), lonely, "alpha")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for user with no teams, want 0", len(results))
	}
}

func TestSearchPerKindLimits(t *testing.T) {
	user := primitive.NewObjectID()
	team := primitive.NewObjectID()
	project := primitive.NewObjectID()

	fb := &fakeBackend{
		memberships: map[primitive.ObjectID][]primitive.ObjectID{user: {team}},
		projects:    []models.Project{{ID: project, TeamID: team, Name: "widget factory"}},
	}
	for i := 0; i < IssueLimit+5; i++ {
		fb.issues = append(fb.issues, models.Issue{
			ID:        primitive.NewObjectID(),
			ProjectID: project,
			Title:     "widget bug",
			Status:    models.IssueOpen,
		})
	}

	agg := New(fb, zap.NewNop())
	results, err := agg.Search(context.Background(), user, "widget")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}

	issueCount := 0
	for _, r := range results {
		if r.Kind == KindIssue {
			issueCount++
		}
	}
	if issueCount != IssueLimit {
		t.Errorf("issue results = %d, want cap of %d", issueCount, IssueLimit)
	}
}

func TestSearchSoftDeletedExcluded(t *testing.T) {
	fb, user, _ := newFixture()
	now := time.Now().UTC()
	fb.projects[0].DeletedAt = &now

	agg := New(fb, zap.NewNop())
	results, err := agg.Search(context.Background(), user, "alpha")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}

	// The deleted project disappears and takes its issue out of scope;
	// only the team remains.
	if len(results) != 1 || results[0].Kind != KindTeam {
		t.Fatalf("got %+v, want only the team result", results)
	}
}

func TestSearchFailsAtomically(t *testing.T) {
	fb, user, _ := newFixture()
	fb.issueErr = errors.New("cursor timeout")

	agg := New(fb, zap.NewNop())
	results, err := agg.Search(context.Background(), user, "alpha")
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want nil on failure", results)
	}
}

func TestSearchMembershipFailure(t *testing.T) {
	fb, user, _ := newFixture()
	fb.membershipErr = errors.New("connection reset")

	agg := New(fb, zap.NewNop())
	if _, err := agg.Search(context.Background(), user, "alpha"); !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed", err)
	}
}

func TestSearchOrderStableUnderSlowLookup(t *testing.T) {
	fb, user, _ := newFixture()
	fb.issueDelay = 20 * time.Millisecond

	agg := New(fb, zap.NewNop())
	results, err := agg.Search(context.Background(), user, "alpha")
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}
	if len(results) == 0 || results[0].Kind != KindIssue {
		t.Fatalf("issues must lead the list even when their lookup finishes last: %+v", results)
	}
}
