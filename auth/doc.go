// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides sign-in, signing, and identifier utilities.

# Google Sign-In

GoogleProvider implements IdentityProvider with the OAuth2 authorization
code flow:

	creds, err := auth.LoadCredentials(cfg.GoogleCredentialsFile, cfg.GoogleCredentials)
	provider := auth.NewGoogleProvider(creds, cfg.BaseURL+"/auth/google/callback")

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	// ...in the callback
	identity, err := provider.Identify(ctx, code)

The credentials file holds {"clientid": "...", "secret": "..."}.

# Derived Keys

A single configured secret is expanded with HKDF-SHA256 into one key per
purpose:

	cookieKey := auth.DeriveKey(cfg.CookieSecret, auth.PurposeSessionCookie)
	ipKey := auth.DeriveKey(cfg.CookieSecret, auth.PurposeIPHash)

# Signed Values

Sign appends an HMAC-SHA256 of a value, URL-safe base64 encoded without
padding. Verify checks it in constant time and returns the value:

	cookie := auth.Sign(token, cookieKey)
	token, err := auth.Verify(cookie, cookieKey)

# Identifiers

Poll and option IDs are 12 random alphanumeric characters:

	id, err := auth.GeneratePollID()

Session tokens are random UUIDs:

	token := auth.GenerateSessionToken()

# IP Hashing

For privacy-preserving vote auditing:

	hash := auth.HashIP(ipAddress, ipKey)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
