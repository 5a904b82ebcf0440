// Package auth resolves who is signing in. Outside dev mode that is an
// OAuth 2.0 authorization-code flow against an OpenID Connect provider;
// in dev mode a fixed identity is returned without leaving the app.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

var (
	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("missing authorization code")

	// ErrProviderDenied is returned when the provider reports an error on the callback.
	ErrProviderDenied = errors.New("identity provider denied the request")

	// ErrMissingIdentity is returned when userinfo has no subject or email.
	ErrMissingIdentity = errors.New("identity provider returned no subject or email")
)

// Identity is the signed-in user as reported by the provider.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Provider turns a browser redirect into an identity.
type Provider interface {
	// AuthURL returns where to send the browser to sign in.
	AuthURL(state string) string
	// Exchange completes sign-in from the callback request.
	Exchange(ctx context.Context, r *http.Request) (*oauth2.Token, Identity, error)
}

// Config configures an OAuthProvider.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// OAuthProvider signs users in with the authorization-code flow and reads
// their identity from the userinfo endpoint.
type OAuthProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewOAuthProvider creates an OAuthProvider.
func NewOAuthProvider(cfg Config) *OAuthProvider {
	return &OAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// AuthURL returns the provider's consent page URL.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a token and fetches the identity.
// The caller verifies state.
func (p *OAuthProvider) Exchange(ctx context.Context, r *http.Request) (*oauth2.Token, Identity, error) {
	q := r.URL.Query()
	if errMsg := q.Get("error"); errMsg != "" {
		return nil, Identity{}, fmt.Errorf("%w: %s", ErrProviderDenied, errMsg)
	}
	code := q.Get("code")
	if code == "" {
		return nil, Identity{}, ErrMissingCode
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, Identity{}, fmt.Errorf("exchanging code for token: %w", err)
	}

	id, err := p.userInfo(ctx, token)
	if err != nil {
		return nil, Identity{}, err
	}
	return token, id, nil
}

// userInfoResponse is the subset of OpenID Connect userinfo claims used.
type userInfoResponse struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func (p *OAuthProvider) userInfo(ctx context.Context, token *oauth2.Token) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("creating userinfo request: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, body)
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return Identity{}, ErrMissingIdentity
	}

	return Identity{UserID: info.Subject, Email: info.Email, Name: info.Name}, nil
}

// DevProvider signs everyone in as one fixed identity.
type DevProvider struct {
	identity Identity
}

// NewDevProvider creates a DevProvider for id.
func NewDevProvider(id Identity) *DevProvider {
	return &DevProvider{identity: id}
}

// AuthURL points straight back at the local callback.
func (p *DevProvider) AuthURL(state string) string {
	v := url.Values{"state": {state}, "code": {"dev"}}
	return "/callback?" + v.Encode()
}

// Exchange returns the fixed identity with a placeholder token.
func (p *DevProvider) Exchange(_ context.Context, _ *http.Request) (*oauth2.Token, Identity, error) {
	return &oauth2.Token{AccessToken: "dev", TokenType: "Bearer"}, p.identity, nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var (
	_ Provider = (*OAuthProvider)(nil)
	_ Provider = (*DevProvider)(nil)
)
