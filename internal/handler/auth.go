package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tasktreasure/tasktreasure/internal/auth"
	"github.com/tasktreasure/tasktreasure/internal/middleware"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

const minPasswordLength = 8

type AuthHandler struct {
	parentStore  *store.ParentStore
	sessionStore *store.SessionStore
	sessionTTL   time.Duration
	logger       *slog.Logger
}

func NewAuthHandler(ps *store.ParentStore, ss *store.SessionStore, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		parentStore:  ps,
		sessionStore: ss,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Parent    *model.Parent `json:"parent"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.parentStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		storeError(w, h.logger, "failed to register", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	parent, err := h.parentStore.Create(r.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		storeError(w, h.logger, "failed to register", err)
		return
	}
	h.logger.Info("parent registered", "parent_id", parent.ID)

	h.startSession(w, r, parent, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}

	parent, err := h.parentStore.GetByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		storeError(w, h.logger, "failed to log in", err)
		return
	}
	// Same response for unknown email and wrong password.
	if parent == nil || bcrypt.CompareHashAndPassword([]byte(parent.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.startSession(w, r, parent, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, parent *model.Parent, status int) {
	sess, err := h.sessionStore.Create(r.Context(), parent.ID, h.sessionTTL)
	if err != nil {
		storeError(w, h.logger, "failed to create session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, sessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Parent: parent})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := auth.SessionID(r.Context()); id != "" {
		if err := h.sessionStore.Delete(r.Context(), id); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	parent, err := h.parentStore.GetByID(r.Context(), parentID(r))
	if err != nil {
		storeError(w, h.logger, "failed to get account", err)
		return
	}
	if parent == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

// UpdateMe changes the account's reward type preference.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RewardType string `json:"reward_type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, err := model.ParseRewardType(req.RewardType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parent, err := h.parentStore.SetRewardType(r.Context(), parentID(r), rt)
	if err != nil {
		storeError(w, h.logger, "failed to update account", err)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

var errConfirmation = errors.New("password confirmation failed")

// ConfirmPassword re-authenticates the signed-in parent for destructive
// actions using the X-Confirm-Password header.
func (h *AuthHandler) ConfirmPassword(r *http.Request) error {
	password := r.Header.Get("X-Confirm-Password")
	if password == "" {
		return errConfirmation
	}
	parent, err := h.parentStore.GetByID(r.Context(), parentID(r))
	if err != nil {
		return err
	}
	if parent == nil || bcrypt.CompareHashAndPassword([]byte(parent.PasswordHash), []byte(password)) != nil {
		return errConfirmation
	}
	return nil
}

// confirmer is what destructive handlers need from AuthHandler.
type confirmer interface {
	ConfirmPassword(r *http.Request) error
}

// requireConfirmation writes the error response and returns false when the
// request fails re-authentication.
func requireConfirmation(w http.ResponseWriter, r *http.Request, c confirmer, logger *slog.Logger) bool {
	err := c.ConfirmPassword(r)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errConfirmation):
		writeError(w, http.StatusForbidden, "password confirmation required")
	default:
		storeError(w, logger, "failed to confirm password", err)
	}
	return false
}
