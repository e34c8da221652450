// pkg/client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/issuedeck/issuedeck/pkg/optimistic"
)

func newTestServer(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func waitSettled[T any](t *testing.T, m *optimistic.Mutation[T]) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("mutation never settled")
	}
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "hello world" {
			t.Errorf("q = %q, want %q", got, "hello world")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]SearchResult{
			{ID: "1", Title: "hello world issue", Type: "issue", Status: "open"},
		})
	})
	c := newTestServer(t, mux)

	results, err := c.Search(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Type != "issue" {
		t.Errorf("results = %+v", results)
	}
}

func TestMutateEnvelopeFailure(t *testing.T) {
	// success=false with HTTP 200 must still be treated as a failure.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "invalid email or password",
		})
	})
	c := newTestServer(t, mux)

	err := c.SignIn(context.Background(), "a@b.c", "nope")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestToggleFavoriteOptimistic(t *testing.T) {
	var toggles atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Project{
			{ID: "p1", Name: "Deck", Favorite: false},
		})
	})
	mux.HandleFunc("POST /projects/p1/favorite", func(w http.ResponseWriter, r *http.Request) {
		toggles.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]bool{"favorite": true},
		})
	})
	c := newTestServer(t, mux)

	pl, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}

	m := pl.ToggleFavorite(context.Background(), "p1")

	// Visible immediately, before the server answers.
	if items := pl.Items(); !items[0].Favorite {
		t.Error("favorite not applied optimistically")
	}

	waitSettled(t, m)
	if m.State() != optimistic.Confirmed {
		t.Fatalf("state = %v, want Confirmed (err %v)", m.State(), m.Err())
	}
	if items := pl.Items(); !items[0].Favorite {
		t.Error("favorite lost after confirmation")
	}
	if toggles.Load() != 1 {
		t.Errorf("toggle endpoint hit %d times, want 1", toggles.Load())
	}
}

func TestToggleFavoriteRollsBackOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Project{{ID: "p1", Favorite: false}})
	})
	mux.HandleFunc("POST /projects/p1/favorite", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "could not update favorite",
		})
	})
	c := newTestServer(t, mux)

	pl, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}

	m := pl.ToggleFavorite(context.Background(), "p1")
	if !pl.Items()[0].Favorite {
		t.Fatal("favorite not applied optimistically")
	}

	waitSettled(t, m)
	if m.State() != optimistic.RolledBack {
		t.Fatalf("state = %v, want RolledBack", m.State())
	}
	if m.Err() == nil {
		t.Error("Err() = nil, failure must be surfaced")
	}
	if pl.Items()[0].Favorite {
		t.Error("favorite still set after rollback")
	}
}

func TestCommentAddOptimistic(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Comment{
			{ID: "c1", IssueID: "i1", Body: "first"},
		})
	})
	mux.HandleFunc("POST /comments", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["issue_id"] != "i1" || req["body"] != "second" {
			t.Errorf("unexpected request: %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	c := newTestServer(t, mux)

	cl, err := c.Comments(context.Background(), "i1")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}

	m := cl.Add(context.Background(), "second")

	items := cl.Items()
	if len(items) != 2 || items[1].Body != "second" {
		t.Fatalf("optimistic append missing: %+v", items)
	}
	if items[1].ID == "" {
		t.Error("optimistic comment needs a placeholder ID")
	}

	waitSettled(t, m)
	if m.State() != optimistic.Confirmed {
		t.Fatalf("state = %v, want Confirmed (err %v)", m.State(), m.Err())
	}
}

func TestIssueEditorRollback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /issues/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(IssueDraft{ID: "i1", Title: "old title", Status: "open"})
	})
	mux.HandleFunc("PATCH /issues/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "title cannot be empty",
		})
	})
	c := newTestServer(t, mux)

	ie, err := c.Issue(context.Background(), "i1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m := ie.SetTitle(context.Background(), "")
	if ie.Draft().Title != "" {
		t.Error("title not applied optimistically")
	}

	waitSettled(t, m)
	if m.State() != optimistic.RolledBack {
		t.Fatalf("state = %v, want RolledBack", m.State())
	}
	if ie.Draft().Title != "old title" {
		t.Errorf("Draft().Title = %q, want rollback to %q", ie.Draft().Title, "old title")
	}
}

func TestRefreshRebasesPending(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	calls := 0
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			_ = json.NewEncoder(w).Encode([]Project{{ID: "p1"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]Project{{ID: "p1"}, {ID: "p2"}})
	})
	mux.HandleFunc("POST /projects/p1/favorite", func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	c := newTestServer(t, mux)

	pl, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}

	m := pl.ToggleFavorite(context.Background(), "p1")

	// A refresh lands while the toggle is still in flight.
	if err := pl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	items := pl.Items()
	if len(items) != 2 {
		t.Fatalf("got %d projects after refresh, want 2", len(items))
	}
	if !items[0].Favorite {
		t.Error("pending toggle lost across refresh")
	}

	close(release)
	waitSettled(t, m)
}
