// Package config defines the server configuration. Values come from flags
// with environment variable fallbacks, parsed by kong in main.
package config

import (
	"errors"
	"strings"
)

var (
	// ErrMissingDatabaseURL is returned when DATABASE_URL is not set outside dev mode.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
	// ErrMissingOAuth is returned when the OAuth client is not configured outside dev mode.
	ErrMissingOAuth = errors.New("missing OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET or provider endpoints")
	// ErrInvalidLifeYears is returned when the life grid is neither 80 nor 100 years.
	ErrInvalidLifeYears = errors.New("life years must be 80 or 100")
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// Config holds the server configuration.
type Config struct {
	Addr        string `help:"Address to listen on." default:"127.0.0.1:8080" env:"HISTORIA_ADDR"`
	BaseURL     string `help:"Public base URL, used for the OAuth redirect." default:"http://127.0.0.1:8080" env:"HISTORIA_BASE_URL" name:"base-url"`
	DatabaseURL string `help:"PostgreSQL connection string." env:"DATABASE_URL" name:"database-url"`

	Dev   bool   `help:"Run against a seeded SQLite journal with a built-in dev identity." env:"HISTORIA_DEV"`
	DevDB string `help:"SQLite database path used in dev mode." default:":memory:" env:"HISTORIA_DEV_DB" name:"dev-db"`

	OAuth OAuthConfig `embed:"" prefix:"oauth-" envprefix:"OAUTH_"`

	LogDir string `help:"Directory for rotated log files." env:"HISTORIA_LOG_DIR" name:"log-dir"`
	Debug  bool   `help:"Enable debug logging." env:"HISTORIA_DEBUG"`

	LifeYears int `help:"Years shown by the life view (80 or 100)." default:"100" env:"HISTORIA_LIFE_YEARS" name:"life-years"`
}

// OAuthConfig configures the OpenID Connect provider used outside dev mode.
type OAuthConfig struct {
	ClientID     string   `help:"OAuth client ID." env:"CLIENT_ID" name:"client-id"`
	ClientSecret string   `help:"OAuth client secret." env:"CLIENT_SECRET" name:"client-secret"`
	AuthURL      string   `help:"Authorization endpoint." env:"AUTH_URL" name:"auth-url"`
	TokenURL     string   `help:"Token endpoint." env:"TOKEN_URL" name:"token-url"`
	UserInfoURL  string   `help:"Userinfo endpoint." env:"USERINFO_URL" name:"userinfo-url"`
	Scopes       []string `help:"Requested scopes." default:"openid,email,profile" env:"SCOPES"`
}

// RedirectURL returns the OAuth callback URL.
func (c *Config) RedirectURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/callback"
}

// LifeWeeks returns the number of weeks in the life view.
func (c *Config) LifeWeeks() int {
	return c.LifeYears * 52
}

// Validate checks the configuration. Dev mode needs neither a database URL
// nor OAuth credentials.
func (c *Config) Validate() error {
	if c.LifeYears != 80 && c.LifeYears != 100 {
		return ErrInvalidLifeYears
	}
	if c.Dev {
		return nil
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	o := c.OAuth
	if o.ClientID == "" || o.ClientSecret == "" || o.AuthURL == "" || o.TokenURL == "" || o.UserInfoURL == "" {
		return ErrMissingOAuth
	}
	return nil
}
