// internal/app/features/teams/create.go
package teams

import (
	"errors"
	"net/http"
	"strings"

	teamstore "github.com/issuedeck/issuedeck/internal/app/store/teams"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.uber.org/zap"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /teams. The creator becomes the team's owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
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

	team, err := h.Teams.Create(ctx, models.Team{Name: name})
	if err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			httpjson.Fail(w, http.StatusConflict, "a team with that name already exists")
			return
		}
		h.Log.Error("create team failed", zap.Error(err), zap.String("name", name))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create team")
		return
	}

	if err := h.Memberships.Add(ctx, team.ID, userID, models.RoleOwner); err != nil {
		// Without an owner the team is unreachable; undo the create.
		h.Log.Error("add owner membership failed", zap.Error(err), zap.String("team_id", team.ID.Hex()))
		if delErr := h.Teams.SoftDelete(ctx, team.ID); delErr != nil {
			h.Log.Error("orphaned team cleanup failed", zap.Error(delErr), zap.String("team_id", team.ID.Hex()))
		}
		httpjson.Fail(w, http.StatusInternalServerError, "could not create team")
		return
	}

	h.Log.Info("team created",
		zap.String("team_id", team.ID.Hex()),
		zap.String("owner_id", userID.Hex()))

	httpjson.Created(w, team)
}
