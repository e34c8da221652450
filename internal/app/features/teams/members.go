// internal/app/features/teams/members.go
package teams

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/normalize"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// memberUserID pulls the {userID} URL parameter.
func memberUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleAddMember handles POST /teams/{teamID}/members. Owners and admins
// invite by email; the default role is member.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	callerRole, ok := h.requireRole(ctx, w, id, userID, authz.CanManageTeam)
	if !ok {
		return
	}
	// Admins cannot mint owners.
	if role == models.RoleOwner && callerRole != models.RoleOwner {
		httpjson.Fail(w, http.StatusForbidden, "only an owner can add another owner")
		return
	}

	invitee, err := h.Users.GetByEmail(ctx, normalize.Email(req.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "no account with that email")
			return
		}
		h.Log.Error("invitee lookup failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "could not add member")
		return
	}

	if err := h.Memberships.Add(ctx, id, invitee.ID, role); err != nil {
		switch {
		case errors.Is(err, membershipstore.ErrDuplicateMembership):
			httpjson.Fail(w, http.StatusConflict, "that user is already a member")
		case errors.Is(err, membershipstore.ErrBadRole):
			httpjson.Fail(w, http.StatusBadRequest, "invalid role")
		default:
			h.Log.Error("add member failed", zap.Error(err), zap.String("team_id", id.Hex()))
			httpjson.Fail(w, http.StatusInternalServerError, "could not add member")
		}
		return
	}

	h.Log.Info("member added",
		zap.String("team_id", id.Hex()),
		zap.String("user_id", invitee.ID.Hex()),
		zap.String("role", role),
		zap.String("by", userID.Hex()))

	httpjson.Created(w, memberView{
		UserID:   invitee.ID.Hex(),
		FullName: invitee.FullName,
		Email:    invitee.Email,
		Role:     role,
	})
}

// HandleRemoveMember handles DELETE /teams/{teamID}/members/{userID}.
// Owners and admins may remove anyone; plain members may remove only
// themselves (leave). Removing the last owner is refused.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}
	target, ok := memberUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	allow := func(role string) bool {
		return authz.CanManageTeam(role) || target == userID
	}
	if _, ok := h.requireRole(ctx, w, id, userID, allow); !ok {
		return
	}

	if err := h.Memberships.Remove(ctx, id, target); err != nil {
		if errors.Is(err, membershipstore.ErrLastOwner) {
			httpjson.Fail(w, http.StatusConflict, "a team must keep at least one owner")
			return
		}
		h.Log.Error("remove member failed", zap.Error(err), zap.String("team_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not remove member")
		return
	}

	httpjson.OK(w, nil)
}

// HandleSetRole handles PATCH /teams/{teamID}/members/{userID}. Only owners
// may change roles; demoting the last owner is refused.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := teamID(w, r)
	if !ok {
		return
	}
	target, ok := memberUserID(w, r)
	if !ok {
		return
	}

	var req setRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	ownerOnly := func(role string) bool { return role == models.RoleOwner }
	if _, ok := h.requireRole(ctx, w, id, userID, ownerOnly); !ok {
		return
	}

	if err := h.Memberships.SetRole(ctx, id, target, req.Role); err != nil {
		switch {
		case errors.Is(err, membershipstore.ErrBadRole):
			httpjson.Fail(w, http.StatusBadRequest, "invalid role")
		case errors.Is(err, membershipstore.ErrLastOwner):
			httpjson.Fail(w, http.StatusConflict, "a team must keep at least one owner")
		default:
			h.Log.Error("set role failed", zap.Error(err), zap.String("team_id", id.Hex()))
			httpjson.Fail(w, http.StatusInternalServerError, "could not change role")
		}
		return
	}

	httpjson.OK(w, nil)
}
