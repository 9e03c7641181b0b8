// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrNoEmail = errors.New("identity has no email")

// Identity is what an identity provider knows about a signed-in user
type Identity struct {
	Email string
	Name  string
}

// IdentityProvider runs the OAuth2 authorization code flow
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (Identity, error)
}

// Credentials is the Google client config file format
type Credentials struct {
	ClientID     string `json:"clientid"`
	ClientSecret string `json:"secret"`
}

// LoadCredentials reads credentials from a JSON file or, when contents is
// set, from the JSON string itself.
func LoadCredentials(path, contents string) (Credentials, error) {
	var c Credentials

	data := []byte(contents)
	if contents == "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read oauth credentials file: %w", err)
		}
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse oauth credentials: %w", err)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return c, errors.New("oauth credentials require clientid and secret")
	}
	return c, nil
}

// GoogleProvider signs users in with Google
type GoogleProvider struct {
	conf *oauth2.Config
}

func NewGoogleProvider(creds Credentials, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				goauth.OpenIDScope,
				goauth.UserinfoEmailScope,
				goauth.UserinfoProfileScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

// Identify exchanges an authorization code and looks up the user's profile
func (p *GoogleProvider) Identify(ctx context.Context, code string) (Identity, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to exchange code for oauth token: %w", err)
	}

	svc, err := goauth.NewService(ctx, option.WithTokenSource(p.conf.TokenSource(ctx, tok)))
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create oauth service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get user info: %w", err)
	}
	if info.Email == "" {
		return Identity{}, ErrNoEmail
	}

	return Identity{Email: info.Email, Name: info.Name}, nil
}
