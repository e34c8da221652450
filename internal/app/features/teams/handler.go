// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	teamstore "github.com/issuedeck/issuedeck/internal/app/store/teams"
	userstore "github.com/issuedeck/issuedeck/internal/app/store/users"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves team CRUD and membership management.
type Handler struct {
	Teams       *teamstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Log         *zap.Logger
}

func NewHandler(teams *teamstore.Store, memberships *membershipstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Teams: teams, Memberships: memberships, Users: users, Log: logger}
}

// teamID pulls and validates the {teamID} URL parameter. On failure it has
// already written the 400 response.
func teamID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "teamID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid team id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// requireRole loads the caller's role on the team and checks it with allow.
// Non-members get a 404 rather than a 403 so the team's existence is not
// revealed. Writes the error response itself on failure.
func (h *Handler) requireRole(ctx context.Context, w http.ResponseWriter, teamID, userID primitive.ObjectID, allow func(role string) bool) (string, bool) {
	role, err := h.Memberships.Role(ctx, teamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return "", false
	}
	if role == "" {
		httpjson.Fail(w, http.StatusNotFound, "team not found")
		return "", false
	}
	if !allow(role) {
		httpjson.Fail(w, http.StatusForbidden, "you do not have permission to do that")
		return "", false
	}
	return role, true
}

func anyMember(string) bool { return true }

// reqCtx is the standard per-request DB timeout.
func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Short())
}

// callerID extracts the authenticated user or writes a 401.
func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return userID, true
}
