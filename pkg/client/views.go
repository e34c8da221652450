// pkg/client/views.go
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/issuedeck/issuedeck/pkg/optimistic"
	"go.uber.org/zap"
)

// Project is the project row as the list view sees it.
type Project struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Favorite    bool   `json:"favorite"`
}

// Comment is one issue comment.
type Comment struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueDraft is the locally edited slice of an issue.
type IssueDraft struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

/* ── ProjectList ──────────────────────────────────────────────────────── */

// ProjectList is an optimistic view over the caller's projects. Favorite
// toggles flip immediately; a failed toggle flips back.
type ProjectList struct {
	client *Client
	coord  *optimistic.Coordinator[[]Project]
}

// Projects returns an optimistic project list seeded from the server.
func (c *Client) Projects(ctx context.Context) (*ProjectList, error) {
	var projects []Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	return &ProjectList{
		client: c,
		coord:  optimistic.New(projects, c.log),
	}, nil
}

// Items returns the visible project list, optimistic changes included.
func (pl *ProjectList) Items() []Project {
	return pl.coord.Visible()
}

// Refresh re-fetches the list and rebases pending toggles onto it.
func (pl *ProjectList) Refresh(ctx context.Context) error {
	var projects []Project
	if err := pl.client.get(ctx, "/projects", &projects); err != nil {
		return err
	}
	pl.coord.SetBase(projects)
	return nil
}

// ToggleFavorite flips the project's favorite flag locally, fires the
// durable toggle, and settles the returned handle with the outcome. The
// visible list is already updated when this returns.
func (pl *ProjectList) ToggleFavorite(ctx context.Context, projectID string) *optimistic.Mutation[[]Project] {
	m := pl.coord.Begin(func(cur []Project) []Project {
		out := make([]Project, len(cur))
		copy(out, cur)
		for i := range out {
			if out[i].ID == projectID {
				out[i].Favorite = !out[i].Favorite
			}
		}
		return out
	})

	go func() {
		err := pl.client.mutate(ctx, http.MethodPost, "/projects/"+projectID+"/favorite", nil, nil)
		if err != nil {
			pl.client.log.Warn("favorite toggle failed, rolling back",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
		m.Resolve(err)
	}()

	return m
}

/* ── CommentList ──────────────────────────────────────────────────────── */

// CommentList is an optimistic view over one issue's comments. New
// comments appear immediately and are replaced by (or removed with) the
// server's verdict.
type CommentList struct {
	client  *Client
	issueID string
	coord   *optimistic.Coordinator[[]Comment]
}

// Comments returns an optimistic comment list for the issue.
func (c *Client) Comments(ctx context.Context, issueID string) (*CommentList, error) {
	var comments []Comment
	if err := c.get(ctx, "/comments?issue="+issueID, &comments); err != nil {
		return nil, err
	}
	return &CommentList{
		client:  c,
		issueID: issueID,
		coord:   optimistic.New(comments, c.log),
	}, nil
}

// Items returns the visible comments, optimistic appends included.
func (cl *CommentList) Items() []Comment {
	return cl.coord.Visible()
}

// Add appends the comment locally and posts it. The optimistic row carries
// a placeholder ID until the server assigns a real one; a Refresh after
// confirmation swaps in the durable row.
func (cl *CommentList) Add(ctx context.Context, body string) *optimistic.Mutation[[]Comment] {
	placeholder := Comment{
		ID:        uuid.NewString(),
		IssueID:   cl.issueID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	m := cl.coord.Begin(func(cur []Comment) []Comment {
		out := make([]Comment, len(cur), len(cur)+1)
		copy(out, cur)
		return append(out, placeholder)
	})

	go func() {
		err := cl.client.mutate(ctx, http.MethodPost, "/comments", map[string]string{
			"issue_id": cl.issueID,
			"body":     body,
		}, nil)
		if err != nil {
			cl.client.log.Warn("comment post failed, rolling back",
				zap.String("issue_id", cl.issueID),
				zap.Error(err))
		}
		m.Resolve(err)
	}()

	return m
}

// Refresh re-fetches the comments and rebases pending appends onto them.
func (cl *CommentList) Refresh(ctx context.Context) error {
	var comments []Comment
	if err := cl.client.get(ctx, "/comments?issue="+cl.issueID, &comments); err != nil {
		return err
	}
	cl.coord.SetBase(comments)
	return nil
}

/* ── IssueEditor ──────────────────────────────────────────────────────── */

// IssueEditor is an optimistic view over one issue's editable fields.
type IssueEditor struct {
	client *Client
	coord  *optimistic.Coordinator[IssueDraft]
}

// Issue returns an optimistic editor seeded from the server.
func (c *Client) Issue(ctx context.Context, issueID string) (*IssueEditor, error) {
	var draft IssueDraft
	if err := c.get(ctx, "/issues/"+issueID, &draft); err != nil {
		return nil, err
	}
	return &IssueEditor{
		client: c,
		coord:  optimistic.New(draft, c.log),
	}, nil
}

// Draft returns the visible issue fields, optimistic edits included.
func (ie *IssueEditor) Draft() IssueDraft {
	return ie.coord.Visible()
}

// SetTitle applies the title locally and patches the server.
func (ie *IssueEditor) SetTitle(ctx context.Context, title string) *optimistic.Mutation[IssueDraft] {
	return ie.patch(ctx, map[string]string{"title": title}, func(d IssueDraft) IssueDraft {
		d.Title = title
		return d
	})
}

// SetDescription applies the description locally and patches the server.
func (ie *IssueEditor) SetDescription(ctx context.Context, description string) *optimistic.Mutation[IssueDraft] {
	return ie.patch(ctx, map[string]string{"description": description}, func(d IssueDraft) IssueDraft {
		d.Description = description
		return d
	})
}

// SetStatus applies the status locally and patches the server.
func (ie *IssueEditor) SetStatus(ctx context.Context, status string) *optimistic.Mutation[IssueDraft] {
	return ie.patch(ctx, map[string]string{"status": status}, func(d IssueDraft) IssueDraft {
		d.Status = status
		return d
	})
}

func (ie *IssueEditor) patch(ctx context.Context, body map[string]string, transform optimistic.Transform[IssueDraft]) *optimistic.Mutation[IssueDraft] {
	m := ie.coord.Begin(transform)

	go func() {
		err := ie.client.mutate(ctx, http.MethodPatch, "/issues/"+ie.coord.Base().ID, body, nil)
		if err != nil {
			ie.client.log.Warn("issue edit failed, rolling back",
				zap.String("issue_id", ie.coord.Base().ID),
				zap.Error(err))
		}
		m.Resolve(err)
	}()

	return m
}
