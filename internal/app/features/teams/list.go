// internal/app/features/teams/list.go
package teams

import (
	"net/http"

	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// HandleList handles GET /teams, returning the caller's teams newest-updated
// first.
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
		httpjson.Fail(w, http.StatusInternalServerError, "could not load teams")
		return
	}

	teams, err := h.Teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		h.Log.Error("list teams failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load teams")
		return
	}

	httpjson.Write(w, http.StatusOK, teams)
}
