// internal/app/features/labels/handler.go
package labels

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	labelstore "github.com/issuedeck/issuedeck/internal/app/store/labels"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// colorRe matches a CSS hex color like #d73a4a.
var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultColor = "#6b7280"

// Handler serves team-scoped label management.
type Handler struct {
	Labels      *labelstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

func NewHandler(labels *labelstore.Store, memberships *membershipstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Labels: labels, Memberships: memberships, Log: logger}
}

type createLabelRequest struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
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

// requireManager checks the caller can manage the team's labels. Writes
// the error response itself on failure.
func (h *Handler) requireManager(ctx context.Context, w http.ResponseWriter, teamID, userID primitive.ObjectID) bool {
	role, err := h.Memberships.Role(ctx, teamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return false
	}
	if role == "" {
		httpjson.Fail(w, http.StatusNotFound, "team not found")
		return false
	}
	if !authz.CanManageTeam(role) {
		httpjson.Fail(w, http.StatusForbidden, "you do not have permission to do that")
		return false
	}
	return true
}

// HandleCreate handles POST /labels (owners and admins of the team).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createLabelRequest
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
		httpjson.Fail(w, http.StatusBadRequest, "label name is required")
		return
	}
	color := req.Color
	if color == "" {
		color = defaultColor
	}
	if !colorRe.MatchString(color) {
		httpjson.Fail(w, http.StatusBadRequest, "color must be a hex value like #d73a4a")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if !h.requireManager(ctx, w, teamID, userID) {
		return
	}

	l, err := h.Labels.Create(ctx, models.Label{TeamID: teamID, Name: name, Color: color})
	if err != nil {
		if errors.Is(err, labelstore.ErrDuplicateLabelName) {
			httpjson.Fail(w, http.StatusConflict, "a label with that name already exists")
			return
		}
		h.Log.Error("create label failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create label")
		return
	}

	httpjson.Created(w, l)
}

// HandleList handles GET /labels?team=… (any team member).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	teamID, err := primitive.ObjectIDFromHex(query.Get(r, "team"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid team id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	member, err := h.Memberships.IsMember(ctx, teamID, userID)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load labels")
		return
	}
	if !member {
		httpjson.Fail(w, http.StatusNotFound, "team not found")
		return
	}

	labels, err := h.Labels.ListByTeam(ctx, teamID)
	if err != nil {
		h.Log.Error("list labels failed", zap.Error(err), zap.String("team_id", teamID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load labels")
		return
	}

	httpjson.Write(w, http.StatusOK, labels)
}

// HandleDelete handles DELETE /labels/{labelID} (owners and admins). The
// delete is hard; issues holding the label ID simply stop resolving it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "labelID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid label id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	l, err := h.Labels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, http.StatusNotFound, "label not found")
			return
		}
		h.Log.Error("load label failed", zap.Error(err), zap.String("label_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if !h.requireManager(ctx, w, l.TeamID, userID) {
		return
	}

	if _, err := h.Labels.Delete(ctx, id); err != nil {
		h.Log.Error("delete label failed", zap.Error(err), zap.String("label_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not delete label")
		return
	}

	httpjson.OK(w, nil)
}
