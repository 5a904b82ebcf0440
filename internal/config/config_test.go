package config

import (
	"errors"
	"os"
	"testing"

	"github.com/alecthomas/kong"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	var cfg Config
	parser, err := kong.New(&cfg, kong.Name("historia"))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return &cfg
}

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestParse_Defaults(t *testing.T) {
	unsetenv(t, "HISTORIA_ADDR", "HISTORIA_LIFE_YEARS", "HISTORIA_DEV_DB", "OAUTH_SCOPES")

	cfg := parse(t)

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.LifeYears != 100 {
		t.Errorf("LifeYears = %d, want 100", cfg.LifeYears)
	}
	if cfg.DevDB != ":memory:" {
		t.Errorf("DevDB = %q, want :memory:", cfg.DevDB)
	}
	if len(cfg.OAuth.Scopes) != 3 {
		t.Errorf("Scopes = %v, want 3 defaults", cfg.OAuth.Scopes)
	}
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/historia")
	t.Setenv("OAUTH_CLIENT_ID", "client")
	t.Setenv("HISTORIA_LIFE_YEARS", "80")
	t.Setenv("HISTORIA_DEV", "true")

	cfg := parse(t)

	if cfg.DatabaseURL != "postgres://localhost/historia" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.OAuth.ClientID != "client" {
		t.Errorf("OAuth.ClientID = %q, want client", cfg.OAuth.ClientID)
	}
	if cfg.LifeWeeks() != 4160 {
		t.Errorf("LifeWeeks() = %d, want 4160", cfg.LifeWeeks())
	}
	if !cfg.Dev {
		t.Error("Dev = false, want true")
	}
}

func TestParse_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("HISTORIA_ADDR", ":9000")

	cfg := parse(t, "--addr=:9100", "--oauth-client-secret=s3cret")

	if cfg.Addr != ":9100" {
		t.Errorf("Addr = %q, want :9100", cfg.Addr)
	}
	if cfg.OAuth.ClientSecret != "s3cret" {
		t.Errorf("OAuth.ClientSecret = %q, want s3cret", cfg.OAuth.ClientSecret)
	}
}

func TestValidate(t *testing.T) {
	complete := func() Config {
		return Config{
			DatabaseURL: "postgres://localhost/historia",
			LifeYears:   100,
			OAuth: OAuthConfig{
				ClientID:     "id",
				ClientSecret: "secret",
				AuthURL:      "https://id.example.com/authorize",
				TokenURL:     "https://id.example.com/token",
				UserInfoURL:  "https://id.example.com/userinfo",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"complete", func(*Config) {}, nil},
		{"dev mode needs nothing", func(c *Config) { *c = Config{Dev: true, LifeYears: 80} }, nil},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, ErrMissingDatabaseURL},
		{"missing client secret", func(c *Config) { c.OAuth.ClientSecret = "" }, ErrMissingOAuth},
		{"missing userinfo", func(c *Config) { c.OAuth.UserInfoURL = "" }, ErrMissingOAuth},
		{"bad life years", func(c *Config) { c.LifeYears = 90 }, ErrInvalidLifeYears},
		{"bad life years in dev", func(c *Config) { c.Dev = true; c.LifeYears = 0 }, ErrInvalidLifeYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := complete()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedirectURL(t *testing.T) {
	cfg := Config{BaseURL: "https://historia.example.com/"}
	if got := cfg.RedirectURL(); got != "https://historia.example.com/callback" {
		t.Errorf("RedirectURL() = %q", got)
	}
}
