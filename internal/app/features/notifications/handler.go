// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	notificationstore "github.com/issuedeck/issuedeck/internal/app/store/notifications"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listLimit caps a notification page.
const listLimit = 50

// Handler serves the caller's in-app notifications.
type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(notifications *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notifications, Log: logger}
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

// HandleList handles GET /notifications[?unread=true], newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	unreadOnly := query.Get(r, "unread") == "true"
	list, err := h.Notifications.ListForUser(ctx, userID, unreadOnly, listLimit)
	if err != nil {
		h.Log.Error("list notifications failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load notifications")
		return
	}

	unread, err := h.Notifications.CountUnread(ctx, userID)
	if err != nil {
		h.Log.Error("count unread failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load notifications")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unread_count":  unread,
	})
}

// HandleMarkRead handles POST /notifications/{notificationID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, userID); err != nil {
		h.Log.Error("mark read failed", zap.Error(err), zap.String("notification_id", id.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not update notification")
		return
	}

	httpjson.OK(w, nil)
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		h.Log.Error("mark all read failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not update notifications")
		return
	}

	httpjson.OK(w, map[string]int64{"marked": n})
}
