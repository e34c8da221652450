// internal/app/features/issues/handler.go
package issues

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	issuestore "github.com/issuedeck/issuedeck/internal/app/store/issues"
	labelstore "github.com/issuedeck/issuedeck/internal/app/store/labels"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	notificationstore "github.com/issuedeck/issuedeck/internal/app/store/notifications"
	projectstore "github.com/issuedeck/issuedeck/internal/app/store/projects"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves issue CRUD. Scoping is transitive: every operation
// resolves the issue's project, then the project's team, then the caller's
// membership on that team.
type Handler struct {
	Issues        *issuestore.Store
	Projects      *projectstore.Store
	Memberships   *membershipstore.Store
	Labels        *labelstore.Store
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(
	issues *issuestore.Store,
	projects *projectstore.Store,
	memberships *membershipstore.Store,
	labels *labelstore.Store,
	notifications *notificationstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Issues:        issues,
		Projects:      projects,
		Memberships:   memberships,
		Labels:        labels,
		Notifications: notifications,
		Log:           logger,
	}
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

func issueID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "issueID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid issue id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// scopedProject verifies the caller may see projectID and returns the
// project. Missing projects and non-members both get a 404. Writes the
// error response itself on failure.
func (h *Handler) scopedProject(ctx context.Context, w http.ResponseWriter, projectID, userID primitive.ObjectID) (models.Project, bool) {
	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "project not found")
			return models.Project{}, false
		}
		h.Log.Error("load project failed", zap.Error(err), zap.String("project_id", projectID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Project{}, false
	}

	member, err := h.Memberships.IsMember(ctx, p.TeamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", p.TeamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Project{}, false
	}
	if !member {
		httpjson.Fail(w, http.StatusNotFound, "project not found")
		return models.Project{}, false
	}

	return p, true
}

// scopedIssue loads the issue and verifies team scope through its project.
func (h *Handler) scopedIssue(ctx context.Context, w http.ResponseWriter, id, userID primitive.ObjectID) (models.Issue, models.Project, bool) {
	i, err := h.Issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "issue not found")
			return models.Issue{}, models.Project{}, false
		}
		h.Log.Error("load issue failed", zap.Error(err), zap.String("issue_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return models.Issue{}, models.Project{}, false
	}

	p, ok := h.scopedProject(ctx, w, i.ProjectID, userID)
	if !ok {
		return models.Issue{}, models.Project{}, false
	}
	return i, p, true
}

// validateAssignee checks that the proposed assignee belongs to the team.
func (h *Handler) validateAssignee(ctx context.Context, w http.ResponseWriter, teamID, assigneeID primitive.ObjectID) bool {
	member, err := h.Memberships.IsMember(ctx, teamID, assigneeID)
	if err != nil {
		h.Log.Error("assignee lookup failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return false
	}
	if !member {
		httpjson.Fail(w, http.StatusBadRequest, "assignee must be a member of the team")
		return false
	}
	return true
}

// validateLabels checks that every label belongs to the team.
func (h *Handler) validateLabels(ctx context.Context, w http.ResponseWriter, teamID primitive.ObjectID, labelIDs []primitive.ObjectID) bool {
	for _, lid := range labelIDs {
		l, err := h.Labels.GetByID(ctx, lid)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				httpjson.Fail(w, http.StatusBadRequest, "unknown label")
				return false
			}
			h.Log.Error("label lookup failed", zap.Error(err), zap.String("label_id", lid.Hex()))
			httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
			return false
		}
		if l.TeamID != teamID {
			httpjson.Fail(w, http.StatusBadRequest, "label belongs to a different team")
			return false
		}
	}
	return true
}

// notifyAssigned tells the new assignee about the issue unless they made
// the change themselves. Notification failures are logged, never surfaced.
func (h *Handler) notifyAssigned(ctx context.Context, issue models.Issue, assigneeID, actorID primitive.ObjectID, actorName string) {
	if assigneeID == actorID {
		return
	}
	_, err := h.Notifications.Create(ctx, models.Notification{
		UserID:  assigneeID,
		Kind:    models.NotifyAssigned,
		Message: actorName + " assigned you to \"" + issue.Title + "\"",
		IssueID: &issue.ID,
	})
	if err != nil {
		h.Log.Warn("assignment notification failed",
			zap.Error(err),
			zap.String("issue_id", issue.ID.Hex()),
			zap.String("assignee_id", assigneeID.Hex()))
	}
}
