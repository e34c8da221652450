// internal/app/features/teams/view.go
package teams

import (
	"errors"
	"net/http"
	"strings"

	teamstore "github.com/issuedeck/issuedeck/internal/app/store/teams"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memberView struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type teamView struct {
	Team    models.Team  `json:"team"`
	Members []memberView `json:"members"`
	MyRole  string       `json:"my_role"`
}

// HandleView handles GET /teams/{teamID}, returning the team with its
// member roster.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	role, ok := h.requireRole(ctx, w, id, userID, anyMember)
	if !ok {
		return
	}

	team, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "team not found")
			return
		}
		h.Log.Error("load team failed", zap.Error(err), zap.String("team_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load team")
		return
	}

	memberships, err := h.Memberships.ListByTeam(ctx, id)
	if err != nil {
		h.Log.Error("load members failed", zap.Error(err), zap.String("team_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load team")
		return
	}

	members := make([]memberView, 0, len(memberships))
	for _, m := range memberships {
		mv := memberView{UserID: m.UserID.Hex(), Role: m.Role}
		// Soft-deleted users stay in the roster with their name blanked.
		if u, err := h.Users.GetByID(ctx, m.UserID); err == nil {
			mv.FullName = u.FullName
			mv.Email = u.Email
		}
		members = append(members, mv)
	}

	httpjson.Write(w, http.StatusOK, teamView{Team: team, Members: members, MyRole: role})
}

// HandleUpdate handles PATCH /teams/{teamID} (rename; owners and admins).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}

	var req createTeamRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "team name is required")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if _, ok := h.requireRole(ctx, w, id, userID, authz.CanManageTeam); !ok {
		return
	}

	if err := h.Teams.UpdateName(ctx, id, name); err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			httpjson.Fail(w, http.StatusConflict, "a team with that name already exists")
			return
		}
		h.Log.Error("rename team failed", zap.Error(err), zap.String("team_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not rename team")
		return
	}

	httpjson.OK(w, nil)
}

// HandleDelete handles DELETE /teams/{teamID} (owners only; soft delete).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	ownerOnly := func(role string) bool { return role == models.RoleOwner }
	if _, ok := h.requireRole(ctx, w, id, userID, ownerOnly); !ok {
		return
	}

	if err := h.Teams.SoftDelete(ctx, id); err != nil {
		h.Log.Error("delete team failed", zap.Error(err), zap.String("team_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not delete team")
		return
	}

	h.Log.Info("team deleted",
		zap.String("team_id", id.Hex()),
		zap.String("by", userID.Hex()))

	httpjson.OK(w, nil)
}
