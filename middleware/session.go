// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/models"
)

const (
	SessionCookieName = "roodle_session"
	OAuthCookieName   = "roodle_oauth"
)

// ErrNoSession is returned by a SessionResolver for unknown or expired tokens
var ErrNoSession = errors.New("no session")

// SessionResolver looks up the session behind a token
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (models.Session, error)
}

type sessionKey struct{}

// ContextWithSession returns a derived context carrying the session
func ContextWithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session attached by LoadSession
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// LoadSession resolves the session cookie once per request and attaches the
// session to the request context. Requests without a valid cookie pass
// through unauthenticated.
func LoadSession(resolver SessionResolver, key []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ReadSignedCookie(r, SessionCookieName, key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.ResolveSession(r.Context(), token)
			if errors.Is(err, ErrNoSession) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logging.FromContext(r.Context()).Error("failed to resolve session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, MsgInternalError)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

// RequireSession rejects requests that carry no session
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			ErrorResponse(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next(w, r)
	}
}

// SetSignedCookie stores a signed value in an HttpOnly cookie
func SetSignedCookie(w http.ResponseWriter, name, value string, key []byte, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    auth.Sign(value, key),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadSignedCookie returns the verified value of a cookie set by SetSignedCookie
func ReadSignedCookie(r *http.Request, name string, key []byte) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return auth.Verify(c.Value, key)
}

// ClearCookie expires a cookie in the browser
func ClearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
