// internal/app/search/search.go

// Package search aggregates authorization-scoped lookups across issues,
// projects, and teams into one ranked result list.
//
// Scoping rules:
//   - Teams: the requester must be a member.
//   - Projects: the project's team must be in the requester's membership set.
//   - Issues: transitively through project → team.
//
// Soft-deleted entities never match. Matching is a case-insensitive
// substring test against each kind's eligible text fields; per-kind ordering
// is most-recently-updated first, which stands in for relevance.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Per-kind result caps. Issues get the deepest cut because they are the
// most numerous and the most actionable result type; they also lead the
// merged list for the same reason, so the caps and the concatenation order
// must move together.
const (
	IssueLimit   = 10
	ProjectLimit = 5
	TeamLimit    = 5
)

// Result kinds, also the JSON discriminant values.
const (
	KindIssue   = "issue"
	KindProject = "project"
	KindTeam    = "team"
)

var (
	// ErrUnauthenticated means no valid identity was supplied; no data
	// access happened.
	ErrUnauthenticated = errors.New("search requires an authenticated user")

	// ErrSearchFailed is the generic failure for any backend fault during
	// the lookups. The operation fails atomically; partial results are
	// never returned. Details go to the log, not the caller.
	ErrSearchFailed = errors.New("search failed")
)

// Result is the normalized projection of one match. ProjectID and Status
// are populated for issues only.
type Result struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Backend executes the membership resolution and the three bounded,
// team-scoped lookups. The Mongo implementation lives in
// internal/app/store/search; tests substitute an in-memory one.
type Backend interface {
	TeamIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	SearchIssues(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Issue, error)
	SearchProjects(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Project, error)
	SearchTeams(ctx context.Context, teamIDs []primitive.ObjectID, query string, limit int64) ([]models.Team, error)
}

// Aggregator merges the three kind lookups into one ordered list.
type Aggregator struct {
	backend Backend
	log     *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *Aggregator {
	return &Aggregator{backend: backend, log: logger}
}

// Search resolves the requester's team scope once, fans out the three kind
// lookups, and concatenates matches in fixed kind order: issues, then
// projects, then teams. The fixed order makes lookup completion order
// unobservable, so the fan-out may run concurrently.
//
// A blank query returns an empty list without touching the backend. An
// empty membership set still issues the lookups (one code path; they are
// guaranteed to match nothing).
func (a *Aggregator) Search(ctx context.Context, userID primitive.ObjectID, rawQuery string) ([]Result, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthenticated
	}

	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return []Result{}, nil
	}

	teamIDs, err := a.backend.TeamIDsForUser(ctx, userID)
	if err != nil {
		a.log.Error("search membership lookup failed",
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
		return nil, ErrSearchFailed
	}

	var (
		issues   []models.Issue
		projects []models.Project
		teams    []models.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		issues, err = a.backend.SearchIssues(gctx, teamIDs, query, IssueLimit)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = a.backend.SearchProjects(gctx, teamIDs, query, ProjectLimit)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = a.backend.SearchTeams(gctx, teamIDs, query, TeamLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		a.log.Error("search lookup failed",
			zap.String("user_id", userID.Hex()),
			zap.String("query", query),
			zap.Error(err))
		return nil, ErrSearchFailed
	}

	results := make([]Result, 0, len(issues)+len(projects)+len(teams))
	for _, i := range issues {
		results = append(results, Result{
			ID:        i.ID.Hex(),
			Title:     i.Title,
			Kind:      KindIssue,
			ProjectID: i.ProjectID.Hex(),
			Status:    i.Status,
		})
	}
	for _, p := range projects {
		results = append(results, Result{
			ID:    p.ID.Hex(),
			Title: p.Name,
			Kind:  KindProject,
		})
	}
	for _, t := range teams {
		results = append(results, Result{
			ID:    t.ID.Hex(),
			Title: t.Name,
			Kind:  KindTeam,
		})
	}

	a.log.Debug("search completed",
		zap.String("user_id", userID.Hex()),
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}
