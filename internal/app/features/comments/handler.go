// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	commentstore "github.com/issuedeck/issuedeck/internal/app/store/comments"
	issuestore "github.com/issuedeck/issuedeck/internal/app/store/issues"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	notificationstore "github.com/issuedeck/issuedeck/internal/app/store/notifications"
	projectstore "github.com/issuedeck/issuedeck/internal/app/store/projects"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/htmlsanitize"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves issue comments.
type Handler struct {
	Comments      *commentstore.Store
	Issues        *issuestore.Store
	Projects      *projectstore.Store
	Memberships   *membershipstore.Store
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(
	comments *commentstore.Store,
	issues *issuestore.Store,
	projects *projectstore.Store,
	memberships *membershipstore.Store,
	notifications *notificationstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Comments:      comments,
		Issues:        issues,
		Projects:      projects,
		Memberships:   memberships,
		Notifications: notifications,
		Log:           logger,
	}
}

type createCommentRequest struct {
	IssueID string `json:"issue_id"`
	Body    string `json:"body"`
}

func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Short())
}

func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// scopedIssue verifies the caller may see the issue through its project's
// team. Writes the error response itself on failure.
func (h *Handler) scopedIssue(ctx context.Context, w http.ResponseWriter, id, userID primitive.ObjectID) (models.Issue, bool) {
	i, err := h.Issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "issue not found")
			return models.Issue{}, false
		}
		h.Log.Error("load issue failed", zap.Error(err), zap.String("issue_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Issue{}, false
	}

	p, err := h.Projects.GetByID(ctx, i.ProjectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "issue not found")
			return models.Issue{}, false
		}
		h.Log.Error("load project failed", zap.Error(err), zap.String("project_id", i.ProjectID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Issue{}, false
	}

	member, err := h.Memberships.IsMember(ctx, p.TeamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", p.TeamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Issue{}, false
	}
	if !member {
		httpjson.Fail(w, http.StatusNotFound, "issue not found")
		return models.Issue{}, false
	}

	return i, true
}

// HandleCreate handles POST /comments. The issue's reporter is notified
// unless they wrote the comment themselves.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issueID, err := primitive.ObjectIDFromHex(req.IssueID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid issue id")
		return
	}
	body := htmlsanitize.UGC(req.Body)
	if strings.TrimSpace(body) == "" {
		httpjson.Fail(w, http.StatusBadRequest, "comment body is required")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	issue, ok := h.scopedIssue(ctx, w, issueID, userID)
	if !ok {
		return
	}

	created, err := h.Comments.Create(ctx, models.Comment{
		IssueID:  issueID,
		AuthorID: userID,
		Body:     body,
	})
	if err != nil {
		h.Log.Error("create comment failed", zap.Error(err), zap.String("issue_id", issueID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not post comment")
		return
	}

	if issue.ReporterID != userID {
		name, _, _ := authz.UserCtx(r)
		_, err := h.Notifications.Create(ctx, models.Notification{
			UserID:  issue.ReporterID,
			Kind:    models.NotifyCommented,
			Message: name + " commented on \"" + issue.Title + "\"",
			IssueID: &issue.ID,
		})
		if err != nil {
			h.Log.Warn("comment notification failed",
				zap.Error(err),
				zap.String("issue_id", issue.ID.Hex()))
		}
	}

	httpjson.Created(w, created)
}

// HandleList handles GET /comments?issue=…, oldest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(query.Get(r, "issue"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, ok := h.scopedIssue(ctx, w, issueID, userID); !ok {
		return
	}

	comments, err := h.Comments.ListByIssue(ctx, issueID)
	if err != nil {
		h.Log.Error("list comments failed", zap.Error(err), zap.String("issue_id", issueID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load comments")
		return
	}

	httpjson.Write(w, http.StatusOK, comments)
}

// HandleDelete handles DELETE /comments/{commentID}. Only the author may
// delete their comment.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "comment not found")
			return
		}
		h.Log.Error("load comment failed", zap.Error(err), zap.String("comment_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if cm.AuthorID != userID {
		httpjson.Fail(w, http.StatusForbidden, "only the author can delete a comment")
		return
	}

	if err := h.Comments.SoftDelete(ctx, id); err != nil {
		h.Log.Error("delete comment failed", zap.Error(err), zap.String("comment_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not delete comment")
		return
	}

	httpjson.OK(w, nil)
}
