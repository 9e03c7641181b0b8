// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
	"github.com/danielhkuo/roodle/testutil"
)

// fakeProvider stands in for Google
type fakeProvider struct {
	identity auth.Identity
	err      error
	codes    []string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Identify(ctx context.Context, code string) (auth.Identity, error) {
	p.codes = append(p.codes, code)
	return p.identity, p.err
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login runs /login and returns the state sent to the provider and the
// oauth cookie
func login(t *testing.T, h *AuthHandler, from string) (string, *http.Cookie) {
	t.Helper()

	req := testutil.MakeRequest("GET", "/login?from="+url.QueryEscape(from), nil, nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	testutil.AssertStatus(t, w, http.StatusFound)
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Failed to parse redirect: %v", err)
	}
	cookie := findCookie(w, middleware.OAuthCookieName)
	if cookie == nil {
		t.Fatal("Expected oauth cookie")
	}
	return loc.Query().Get("state"), cookie
}

func callback(h *AuthHandler, state, code string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("GET", "/auth/google/callback?state="+url.QueryEscape(state)+"&code="+code, nil, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.Callback(w, req)
	return w
}

func TestLoginCallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	provider := &fakeProvider{identity: auth.Identity{Email: "jane@example.com", Name: "Jane Doe"}}
	handler := NewAuthHandler(db, cfg, provider)

	state, cookie := login(t, handler, "/poll/abc")
	if state == "" {
		t.Fatal("Expected a state in the provider redirect")
	}

	w := callback(handler, state, "good-code", cookie)

	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/poll/abc" {
		t.Errorf("Expected redirect to /poll/abc, got %q", loc)
	}
	if len(provider.codes) != 1 || provider.codes[0] != "good-code" {
		t.Errorf("Expected code to be exchanged once, got %v", provider.codes)
	}

	sessionCookie := findCookie(w, middleware.SessionCookieName)
	if sessionCookie == nil {
		t.Fatal("Expected session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("Expected HttpOnly session cookie")
	}

	// The cookie resolves to the new account
	token, err := auth.Verify(sessionCookie.Value, auth.DeriveKey(cfg.CookieSecret, auth.PurposeSessionCookie))
	if err != nil {
		t.Fatalf("Failed to verify session cookie: %v", err)
	}
	session, err := NewSessionStore(db).ResolveSession(context.Background(), token)
	if err != nil {
		t.Fatalf("Failed to resolve session: %v", err)
	}
	if session.Email != "jane@example.com" {
		t.Errorf("Expected jane@example.com, got %q", session.Email)
	}

	var username, name string
	if err := db.QueryRow("SELECT username, name FROM account WHERE email = $1", "jane@example.com").Scan(&username, &name); err != nil {
		t.Fatalf("Failed to query account: %v", err)
	}
	if username != "jane" || name != "Jane Doe" {
		t.Errorf("Expected jane / Jane Doe, got %s / %s", username, name)
	}

	// Signing in again reuses the account
	state, cookie = login(t, handler, "")
	w = callback(handler, state, "again", cookie)
	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %q", loc)
	}
	var accounts int
	if err := db.QueryRow("SELECT COUNT(*) FROM account").Scan(&accounts); err != nil {
		t.Fatalf("Failed to count accounts: %v", err)
	}
	if accounts != 1 {
		t.Errorf("Expected 1 account, got %d", accounts)
	}
}

func TestCallback_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := &fakeProvider{identity: auth.Identity{Email: "jane@example.com"}}
	handler := NewAuthHandler(db, testutil.GetTestConfig(), provider)

	state, cookie := login(t, handler, "/")

	tampered := *cookie
	tampered.Value = "x" + cookie.Value

	tests := []struct {
		name           string
		state          string
		code           string
		cookie         *http.Cookie
		expectedStatus int
		expectedError  string
	}{
		{"no cookie", state, "c", nil, http.StatusUnauthorized, "invalid state"},
		{"tampered cookie", state, "c", &tampered, http.StatusUnauthorized, "invalid state"},
		{"wrong state", "not-the-state", "c", cookie, http.StatusUnauthorized, "invalid state"},
		{"missing code", state, "", cookie, http.StatusBadRequest, "missing authorization code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := callback(handler, tt.state, tt.code, tt.cookie)
			testutil.AssertStatus(t, w, tt.expectedStatus)
			testutil.AssertError(t, w, tt.expectedError)
		})
	}

	if len(provider.codes) != 0 {
		t.Errorf("Expected no code exchange, got %v", provider.codes)
	}
}

func TestCallback_ProviderFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := &fakeProvider{err: errors.New("exchange failed")}
	handler := NewAuthHandler(db, testutil.GetTestConfig(), provider)

	state, cookie := login(t, handler, "/")
	w := callback(handler, state, "bad-code", cookie)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	testutil.AssertError(t, w, "not authenticated")
	if findCookie(w, middleware.SessionCookieName) != nil {
		t.Error("Expected no session cookie")
	}
}

func TestSafeRedirect(t *testing.T) {
	testCases := []struct {
		from string
		want string
	}{
		{"/poll/abc", "/poll/abc"},
		{"/", "/"},
		{"", ""},
		{"https://evil.example.com", ""},
		{"//evil.example.com", ""},
		{"/\\evil.example.com", ""},
		{"poll/abc", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.from, func(t *testing.T) {
			if got := safeRedirect(tc.from); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAuthHandler(db, testutil.GetTestConfig(), &fakeProvider{})

	acc := testutil.CreateTestAccount(t, db, "jane@example.com")
	session := testutil.CreateTestSession(t, db, acc, time.Hour)

	req := testutil.WithSession(testutil.MakeRequest("GET", "/logout", nil, nil), session)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	testutil.AssertStatus(t, w, http.StatusFound)
	if c := findCookie(w, middleware.SessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("Expected session cookie to be cleared, got %+v", c)
	}

	_, err := NewSessionStore(db).ResolveSession(context.Background(), session.Token)
	if !errors.Is(err, middleware.ErrNoSession) {
		t.Errorf("Expected session to be gone, got %v", err)
	}

	// Logging out without a session still clears the cookie
	w = httptest.NewRecorder()
	handler.Logout(w, testutil.MakeRequest("GET", "/logout", nil, nil))
	testutil.AssertStatus(t, w, http.StatusFound)
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAuthHandler(db, testutil.GetTestConfig(), &fakeProvider{})

	acc := testutil.CreateTestAccount(t, db, "jane@example.com")
	session := testutil.CreateTestSession(t, db, acc, time.Hour)

	w := httptest.NewRecorder()
	handler.Me(w, testutil.WithSession(testutil.MakeRequest("GET", "/api/v1/me", nil, nil), session))

	testutil.AssertStatus(t, w, http.StatusOK)
	var me models.MeResponse
	testutil.DecodeData(t, w, &me)
	if me.ID != acc.ID || me.Email != "jane@example.com" {
		t.Errorf("Unexpected me %+v", me)
	}
}
