// internal/app/features/search/handler.go
package search

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	searchcore "github.com/issuedeck/issuedeck/internal/app/search"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/normalize"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the cross-entity search endpoint.
type Handler struct {
	Agg *searchcore.Aggregator
	Log *zap.Logger
}

func NewHandler(agg *searchcore.Aggregator, logger *zap.Logger) *Handler {
	return &Handler{Agg: agg, Log: logger}
}

// Serve handles GET /search?q=… and writes the merged result list as a bare
// JSON array. Failures never leak partial results or backend details.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	results, err := h.Agg.Search(ctx, userID, normalize.QueryParam(query.Get(r, "q")))
	if err != nil {
		if errors.Is(err, searchcore.ErrUnauthenticated) {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "search failed")
		return
	}

	httpjson.Write(w, http.StatusOK, results)
}
