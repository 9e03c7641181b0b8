// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

// oauthStateTTL bounds how long a login may take at the provider
const oauthStateTTL = 10 * time.Minute

type AuthHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	provider auth.IdentityProvider
	sessions *SessionStore
	key      []byte
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config, provider auth.IdentityProvider) *AuthHandler {
	return &AuthHandler{
		db:       db,
		cfg:      cfg,
		provider: provider,
		sessions: NewSessionStore(db),
		key:      auth.DeriveKey(cfg.CookieSecret, auth.PurposeSessionCookie),
	}
}

// safeRedirect keeps only same-site absolute paths
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return ""
	}
	return from
}

// encodeOAuthState packs the state and return path into a cookie-safe value
func encodeOAuthState(state, from string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(state + "|" + from))
}

func decodeOAuthState(value string) (state, from string, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", "", false
	}
	state, from, ok = strings.Cut(string(raw), "|")
	return state, from, ok && state != ""
}

// Login handles GET /login?from=/path
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	state, err := auth.GenerateID(16)
	if err != nil {
		logger.Error("failed to generate oauth state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	from := safeRedirect(r.URL.Query().Get("from"))
	middleware.SetSignedCookie(w, middleware.OAuthCookieName, encodeOAuthState(state, from),
		h.key, time.Now().Add(oauthStateTTL), h.cfg.SecureCookies())

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/google/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	secure := h.cfg.SecureCookies()

	value, err := middleware.ReadSignedCookie(r, middleware.OAuthCookieName, h.key)
	if err != nil {
		logger.Info("missing or tampered oauth cookie", "error", err)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid state")
		return
	}
	middleware.ClearCookie(w, middleware.OAuthCookieName, secure)

	state, from, ok := decodeOAuthState(value)
	got := r.URL.Query().Get("state")
	if !ok || subtle.ConstantTimeCompare([]byte(state), []byte(got)) != 1 {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	identity, err := h.provider.Identify(r.Context(), code)
	if err != nil {
		logger.Warn("failed to identify user", "error", err)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	acc, err := upsertAccount(r.Context(), h.db, identity)
	if err != nil {
		logger.Error("failed to upsert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	session, err := h.sessions.Create(r.Context(), acc, h.cfg.SessionTTL)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}
	middleware.SetSignedCookie(w, middleware.SessionCookieName, session.Token, h.key, session.ExpiresAt, secure)

	logger.Info("user signed in", "account_id", acc.ID)

	if from == "" {
		from = "/"
	}
	http.Redirect(w, r, from, http.StatusFound)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := h.sessions.Delete(r.Context(), session.Token); err != nil {
			logger.Error("failed to delete session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
			return
		}
		logger.Info("user signed out", "account_id", session.AccountID)
	}

	middleware.ClearCookie(w, middleware.SessionCookieName, h.cfg.SecureCookies())
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	middleware.DataResponse(w, http.StatusOK, models.MeResponse{
		ID:    session.AccountID,
		Email: session.Email,
	})
}
