// internal/app/features/issues/crud.go
package issues

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	issuestore "github.com/issuedeck/issuedeck/internal/app/store/issues"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/htmlsanitize"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createIssueRequest struct {
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	LabelIDs    []string `json:"label_ids,omitempty"`
}

// updateIssueRequest distinguishes "absent" from "set to empty": pointer
// fields left nil are not touched. assignee_id is special-cased so clients
// can clear it with an explicit empty string.
type updateIssueRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	LabelIDs    *[]string `json:"label_ids,omitempty"`
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HandleCreate handles POST /issues.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createIssueRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	projID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		httpjson.Fail(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	p, ok := h.scopedProject(ctx, w, projID, userID)
	if !ok {
		return
	}

	issue := models.Issue{
		ProjectID:   projID,
		Title:       title,
		Description: htmlsanitize.UGC(req.Description),
		Status:      models.IssueOpen,
		ReporterID:  userID,
	}

	if req.AssigneeID != "" {
		aid, err := primitive.ObjectIDFromHex(req.AssigneeID)
		if err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "invalid assignee id")
			return
		}
		if !h.validateAssignee(ctx, w, p.TeamID, aid) {
			return
		}
		issue.AssigneeID = &aid
	}

	if len(req.LabelIDs) > 0 {
		lids, err := parseObjectIDs(req.LabelIDs)
		if err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "invalid label id")
			return
		}
		if !h.validateLabels(ctx, w, p.TeamID, lids) {
			return
		}
		issue.LabelIDs = lids
	}

	created, err := h.Issues.Create(ctx, issue)
	if err != nil {
		h.Log.Error("create issue failed", zap.Error(err), zap.String("project_id", projID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create issue")
		return
	}

	if created.AssigneeID != nil {
		name, _, _ := authz.UserCtx(r)
		h.notifyAssigned(ctx, created, *created.AssigneeID, userID, name)
	}

	h.Log.Info("issue created",
		zap.String("issue_id", created.ID.Hex()),
		zap.String("project_id", projID.Hex()),
		zap.String("by", userID.Hex()))

	httpjson.Created(w, created)
}

// HandleList handles GET /issues?project=…, listing a project's issues
// newest-updated first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	projID, err := primitive.ObjectIDFromHex(query.Get(r, "project"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, ok := h.scopedProject(ctx, w, projID, userID); !ok {
		return
	}

	issues, err := h.Issues.ListByProject(ctx, projID)
	if err != nil {
		h.Log.Error("list issues failed", zap.Error(err), zap.String("project_id", projID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load issues")
		return
	}

	httpjson.Write(w, http.StatusOK, issues)
}

// HandleView handles GET /issues/{issueID}.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	issue, _, ok := h.scopedIssue(ctx, w, id, userID)
	if !ok {
		return
	}

	httpjson.Write(w, http.StatusOK, issue)
}

// HandleUpdate handles PATCH /issues/{issueID}. Only fields present in the
// body change; a newly assigned user is notified.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}

	var req updateIssueRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	issue, p, ok := h.scopedIssue(ctx, w, id, userID)
	if !ok {
		return
	}

	var upd issuestore.Update

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			httpjson.Fail(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		upd.Title = &title
	}
	if req.Description != nil {
		desc := htmlsanitize.UGC(*req.Description)
		upd.Description = &desc
	}
	if req.Status != nil {
		if !models.ValidIssueStatus(*req.Status) {
			httpjson.Fail(w, http.StatusBadRequest, "invalid status")
			return
		}
		upd.Status = req.Status
	}

	var newAssignee *primitive.ObjectID
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			var cleared *primitive.ObjectID
			upd.AssigneeID = &cleared
		} else {
			aid, err := primitive.ObjectIDFromHex(*req.AssigneeID)
			if err != nil {
				httpjson.Fail(w, http.StatusBadRequest, "invalid assignee id")
				return
			}
			if !h.validateAssignee(ctx, w, p.TeamID, aid) {
				return
			}
			newAssignee = &aid
			upd.AssigneeID = &newAssignee
		}
	}

	if req.LabelIDs != nil {
		lids, err := parseObjectIDs(*req.LabelIDs)
		if err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "invalid label id")
			return
		}
		if !h.validateLabels(ctx, w, p.TeamID, lids) {
			return
		}
		upd.LabelIDs = &lids
	}

	if err := h.Issues.Update(ctx, id, upd); err != nil {
		h.Log.Error("update issue failed", zap.Error(err), zap.String("issue_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not update issue")
		return
	}

	// Notify only when the assignee actually changed.
	if newAssignee != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *newAssignee) {
		name, _, _ := authz.UserCtx(r)
		if req.Title != nil {
			issue.Title = *upd.Title
		}
		h.notifyAssigned(ctx, issue, *newAssignee, userID, name)
	}

	httpjson.OK(w, nil)
}

// HandleDelete handles DELETE /issues/{issueID} (soft delete; any team
// member).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, _, ok := h.scopedIssue(ctx, w, id, userID); !ok {
		return
	}

	if err := h.Issues.SoftDelete(ctx, id); err != nil {
		h.Log.Error("delete issue failed", zap.Error(err), zap.String("issue_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not delete issue")
		return
	}

	h.Log.Info("issue deleted",
		zap.String("issue_id", id.Hex()),
		zap.String("by", userID.Hex()))

	httpjson.OK(w, nil)
}
