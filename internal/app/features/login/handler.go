// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	loginstore "github.com/issuedeck/issuedeck/internal/app/store/logins"
	userstore "github.com/issuedeck/issuedeck/internal/app/store/users"
	"github.com/issuedeck/issuedeck/internal/app/system/auth"
	"github.com/issuedeck/issuedeck/internal/app/system/httpjson"
	"github.com/issuedeck/issuedeck/internal/app/system/normalize"
	"github.com/issuedeck/issuedeck/internal/app/system/timeouts"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Handler serves password signup, login, and logout.
type Handler struct {
	Users      *userstore.Store
	Logins     *loginstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, logins *loginstore.Store, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Logins: logins, SessionMgr: sm, Log: logger}
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleSignup handles POST /auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := normalize.Email(req.Email)
	switch {
	case fullName == "":
		httpjson.Fail(w, http.StatusBadRequest, "name is required")
		return
	case email == "" || !strings.Contains(email, "@"):
		httpjson.Fail(w, http.StatusBadRequest, "a valid email is required")
		return
	case utf8.RuneCountInString(req.Password) < minPasswordLen:
		httpjson.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("bcrypt hash failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Fail(w, http.StatusConflict, "an account with that email already exists")
			return
		}
		h.Log.Error("create user failed", zap.Error(err), zap.String("email", email))
		httpjson.Fail(w, http.StatusInternalServerError, "could not create account")
		return
	}

	h.signIn(w, r, u, loginstore.MethodPassword)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same message as a bad password so the response does not
			// reveal which accounts exist.
			httpjson.Fail(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	if u.Status == "disabled" {
		httpjson.Fail(w, http.StatusForbidden, "account is disabled")
		return
	}
	if u.PasswordHash == "" {
		// OAuth-only account.
		httpjson.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.Log.Info("login rejected", zap.String("email", email))
		httpjson.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.signIn(w, r, u, loginstore.MethodPassword)
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "logout failed")
		return
	}
	httpjson.OK(w, nil)
}

// HandleSession handles GET /auth/session, returning the signed-in user.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u models.User, method string) {
	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		httpjson.Fail(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Logins.Record(ctx, u.ID, method, extractIP(r), r.UserAgent()); err != nil {
		// History only; the login itself succeeded.
		h.Log.Warn("record login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Log.Info("user signed in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("method", method))

	httpjson.OK(w, sessionResponse{ID: su.ID, Name: su.Name, Email: su.Email})
}

// extractIP extracts the client IP address from the request.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
