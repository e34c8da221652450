// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	favoritestore "github.com/issuedeck/issuedeck/internal/app/store/favorites"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	projectstore "github.com/issuedeck/issuedeck/internal/app/store/projects"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project CRUD and favorites.
type Handler struct {
	Projects    *projectstore.Store
	Memberships *membershipstore.Store
	Favorites   *favoritestore.Store
	Log         *zap.Logger
}

func NewHandler(projects *projectstore.Store, memberships *membershipstore.Store, favorites *favoritestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, Memberships: memberships, Favorites: favorites, Log: logger}
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

func projectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid project id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadScoped fetches the project and verifies the caller belongs to its
// team. Non-members and missing projects both get a 404. Writes the error
// response itself on failure.
func (h *Handler) loadScoped(ctx context.Context, w http.ResponseWriter, id, userID primitive.ObjectID) (models.Project, string, bool) {
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "project not found")
			return models.Project{}, "", false
		}
		h.Log.Error("load project failed", zap.Error(err), zap.String("project_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load project")
		return models.Project{}, "", false
	}

	role, err := h.Memberships.Role(ctx, p.TeamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", p.TeamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load project")
		return models.Project{}, "", false
	}
	if role == "" {
		httpjson.Fail(w, http.StatusNotFound, "project not found")
		return models.Project{}, "", false
	}

	return p, role, true
}
