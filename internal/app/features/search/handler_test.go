// internal/app/features/search/handler_test.go
package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/issuedeck/issuedeck/internal/app/features/search"
	searchcore "github.com/issuedeck/issuedeck/internal/app/search"
	"github.com/issuedeck/issuedeck/internal/app/system/auth"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubBackend struct {
	teamIDs []primitive.ObjectID
	issues  []models.Issue
	err     error
}

func (s *stubBackend) TeamIDsForUser(context.Context, primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.teamIDs, s.err
}

func (s *stubBackend) SearchIssues(context.Context, []primitive.ObjectID, string, int64) ([]models.Issue, error) {
	return s.issues, s.err
}

func (s *stubBackend) SearchProjects(context.Context, []primitive.ObjectID, string, int64) ([]models.Project, error) {
	return nil, s.err
}

func (s *stubBackend) SearchTeams(context.Context, []primitive.ObjectID, string, int64) ([]models.Team, error) {
	return nil, s.err
}

func newHandler(backend searchcore.Backend) *search.Handler {
	agg := searchcore.New(backend, zap.NewNop())
	return search.NewHandler(agg, zap.NewNop())
}

func authedRequest(target string) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Quinn Tester",
		Email: "quinn@example.com",
	})
}

func TestServe_Unauthenticated(t *testing.T) {
	h := newHandler(&stubBackend{})

	req := httptest.NewRequest("GET", "/search?q=alpha", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body.Error != "unauthorized" {
		t.Errorf("error = %q, want %q", body.Error, "unauthorized")
	}
}

func TestServe_BlankQueryReturnsEmptyArray(t *testing.T) {
	// The backend errors on any call, so a 200 proves the blank query never
	// reached storage.
	h := newHandler(&stubBackend{err: errors.New("should not be called")})

	tests := []struct {
		name   string
		target string
	}{
		{"missing", "/search"},
		{"empty", "/search?q="},
		{"whitespace", "/search?q=%20%20%09"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Serve(rec, authedRequest(tc.target))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var results []searchcore.Result
			if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
				t.Fatalf("response is not a JSON array: %v (body %q)", err, rec.Body.String())
			}
			if len(results) != 0 {
				t.Errorf("got %d results, want 0", len(results))
			}
		})
	}
}

func TestServe_ResultsAsBareArray(t *testing.T) {
	team := primitive.NewObjectID()
	project := primitive.NewObjectID()
	backend := &stubBackend{
		teamIDs: []primitive.ObjectID{team},
		issues: []models.Issue{{
			ID:        primitive.NewObjectID(),
			ProjectID: project,
			Title:     "Fix login redirect",
			Status:    models.IssueOpen,
		}},
	}
	h := newHandler(backend)

	rec := httptest.NewRecorder()
	h.Serve(rec, authedRequest("/search?q=login"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var results []searchcore.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Kind != searchcore.KindIssue || r.Title != "Fix login redirect" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.ProjectID != project.Hex() || r.Status != models.IssueOpen {
		t.Errorf("issue result missing project/status fields: %+v", r)
	}
}

func TestServe_BackendFailure(t *testing.T) {
	h := newHandler(&stubBackend{err: errors.New("mongo down")})

	rec := httptest.NewRecorder()
	h.Serve(rec, authedRequest("/search?q=alpha"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body.Error != "search failed" {
		t.Errorf("error = %q, want %q", body.Error, "search failed")
	}
	if body.Error == "mongo down" {
		t.Error("backend detail leaked to client")
	}
}
