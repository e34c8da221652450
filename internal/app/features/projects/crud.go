// internal/app/features/projects/crud.go
package projects

import (
	"errors"
	"net/http"
	"strings"

	projectstore "github.com/issuedeck/issuedeck/internal/app/store/projects"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createProjectRequest struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectView struct {
	models.Project
	Favorite bool `json:"favorite"`
}

// HandleCreate handles POST /projects. Any member of the target team may
// create a project in it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	teamID, err := primitive.ObjectIDFromHex(req.TeamID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid team id")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "project name is required")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	member, err := h.Memberships.IsMember(ctx, teamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create project")
		return
	}
	if !member {
		httpjson.Fail(w, http.StatusNotFound, "team not found")
		return
	}

	p, err := h.Projects.Create(ctx, models.Project{
		TeamID:      teamID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		if errors.Is(err, projectstore.ErrDuplicateProjectName) {
			httpjson.Fail(w, http.StatusConflict, "a project with that name already exists in this team")
			return
		}
		h.Log.Error("create project failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create project")
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("team_id", teamID.Hex()),
		zap.String("by", userID.Hex()))

	httpjson.Created(w, p)
}

// HandleList handles GET /projects, returning every project across the
// caller's teams with their favorite flag, newest-updated first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	teamIDs, err := h.Memberships.TeamIDsForUser(ctx, userID)
	if err != nil {
		h.Log.Error("list memberships failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load projects")
		return
	}

	projects, err := h.Projects.ListByTeams(ctx, teamIDs)
	if err != nil {
		h.Log.Error("list projects failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load projects")
		return
	}

	favs, err := h.Favorites.ProjectIDsForUser(ctx, userID)
	if err != nil {
		h.Log.Error("list favorites failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load projects")
		return
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		_, fav := favs[p.ID]
		views = append(views, projectView{Project: p, Favorite: fav})
	}

	httpjson.Write(w, http.StatusOK, views)
}

// HandleView handles GET /projects/{projectID}.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	p, _, ok := h.loadScoped(ctx, w, id, userID)
	if !ok {
		return
	}

	fav, err := h.Favorites.IsFavorite(ctx, userID, p.ID)
	if err != nil {
		h.Log.Warn("favorite lookup failed", zap.Error(err), zap.String("project_id", p.ID.Hex()))
	}

	httpjson.Write(w, http.StatusOK, projectView{Project: p, Favorite: fav})
}

// HandleUpdate handles PATCH /projects/{projectID} (any team member).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "project name is required")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, _, ok := h.loadScoped(ctx, w, id, userID); !ok {
		return
	}

	if err := h.Projects.UpdateInfo(ctx, id, name, strings.TrimSpace(req.Description)); err != nil {
		if errors.Is(err, projectstore.ErrDuplicateProjectName) {
			httpjson.Fail(w, http.StatusConflict, "a project with that name already exists in this team")
			return
		}
		h.Log.Error("update project failed", zap.Error(err), zap.String("project_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not update project")
		return
	}

	httpjson.OK(w, nil)
}

// HandleDelete handles DELETE /projects/{projectID} (owners and admins of
// the team; soft delete — the project's issues fall out of scope with it).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	_, role, ok := h.loadScoped(ctx, w, id, userID)
	if !ok {
		return
	}
	if !authz.CanManageTeam(role) {
		httpjson.Fail(w, http.StatusForbidden, "you do not have permission to do that")
		return
	}

	if err := h.Projects.SoftDelete(ctx, id); err != nil {
		h.Log.Error("delete project failed", zap.Error(err), zap.String("project_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not delete project")
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", id.Hex()),
		zap.String("by", userID.Hex()))

	httpjson.OK(w, nil)
}

// HandleFavorite handles POST /projects/{projectID}/favorite, toggling the
// caller's favorite flag and returning the new state.
func (h *Handler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, _, ok := h.loadScoped(ctx, w, id, userID); !ok {
		return
	}

	fav, err := h.Favorites.Toggle(ctx, userID, id)
	if err != nil {
		h.Log.Error("toggle favorite failed", zap.Error(err), zap.String("project_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not update favorite")
		return
	}

	httpjson.OK(w, map[string]bool{"favorite": fav})
}
