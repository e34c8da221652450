// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	loginstore "github.com/issuedeck/issuedeck/internal/app/store/logins"
	userstore "github.com/issuedeck/issuedeck/internal/app/store/users"
	"github.com/issuedeck/issuedeck/internal/app/system/authz"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const recentLoginLimit = 10

// Handler serves the caller's own account.
type Handler struct {
	Users  *userstore.Store
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Logins: logins, Log: logger}
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

// HandleMe handles GET /me, returning the account with recent sign-ins.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Session survived the account; treat as signed out.
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.Log.Error("load user failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not load account")
		return
	}

	logins, err := h.Logins.RecentForUser(ctx, userID, recentLoginLimit)
	if err != nil {
		h.Log.Warn("recent logins lookup failed", zap.Error(err), zap.String("user_id", userID.Hex()))
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"user":          u,
		"recent_logins": logins,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles POST /me/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if utf8.RuneCountInString(req.NewPassword) < 8 {
		httpjson.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.Log.Error("load user failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not change password")
		return
	}
	if u.PasswordHash == "" {
		httpjson.Fail(w, http.StatusBadRequest, "this account signs in with Google")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httpjson.Fail(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("bcrypt hash failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "could not change password")
		return
	}
	if err := h.Users.SetPasswordHash(ctx, userID, string(hash)); err != nil {
		h.Log.Error("set password failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not change password")
		return
	}

	h.Log.Info("password changed", zap.String("user_id", userID.Hex()))

	httpjson.OK(w, nil)
}
