package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// newFakeProvider starts an identity provider that issues "test-token" for
// code "good" and answers userinfo with claims.
func newFakeProvider(t *testing.T, claims map[string]string) (*OAuthProvider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing token form: %v", err)
		}
		if r.PostForm.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(claims)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewOAuthProvider(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
		RedirectURL:  "http://127.0.0.1:8080/callback",
		Scopes:       []string{"openid", "email"},
	})
	return p, srv
}

func callback(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
}

func TestOAuthProvider_AuthURL(t *testing.T) {
	p, srv := newFakeProvider(t, nil)

	u, err := url.Parse(p.AuthURL("abc123"))
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}
	if !strings.HasPrefix(u.String(), srv.URL+"/authorize") {
		t.Errorf("AuthURL() = %s, want prefix %s/authorize", u, srv.URL)
	}
	q := u.Query()
	if q.Get("state") != "abc123" {
		t.Errorf("state = %q, want abc123", q.Get("state"))
	}
	if q.Get("client_id") != "client" {
		t.Errorf("client_id = %q, want client", q.Get("client_id"))
	}
	if q.Get("scope") != "openid email" {
		t.Errorf("scope = %q, want %q", q.Get("scope"), "openid email")
	}
}

func TestOAuthProvider_Exchange(t *testing.T) {
	p, _ := newFakeProvider(t, map[string]string{
		"sub":   "user-42",
		"email": "ada@example.com",
		"name":  "Ada",
	})

	token, id, err := p.Exchange(context.Background(), callback("code=good&state=x"))
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if token.AccessToken != "test-token" {
		t.Errorf("AccessToken = %q, want test-token", token.AccessToken)
	}
	want := Identity{UserID: "user-42", Email: "ada@example.com", Name: "Ada"}
	if id != want {
		t.Errorf("Identity = %+v, want %+v", id, want)
	}
}

func TestOAuthProvider_ExchangeErrors(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]string
		query   string
		wantErr error
	}{
		{"provider error", nil, "error=access_denied", ErrProviderDenied},
		{"missing code", nil, "state=x", ErrMissingCode},
		{"bad code", nil, "code=bad", nil},
		{"no subject", map[string]string{"email": "ada@example.com"}, "code=good", ErrMissingIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newFakeProvider(t, tt.claims)

			_, _, err := p.Exchange(context.Background(), callback(tt.query))
			if err == nil {
				t.Fatal("Exchange() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Exchange() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDevProvider(t *testing.T) {
	want := Identity{UserID: "dev-user-123", Email: "dev@historia.app", Name: "Dev User"}
	p := NewDevProvider(want)

	u, err := url.Parse(p.AuthURL("s1"))
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}
	if u.Path != "/callback" || u.Query().Get("state") != "s1" {
		t.Errorf("AuthURL() = %s, want local callback with state", u)
	}

	token, id, err := p.Exchange(context.Background(), callback(u.RawQuery))
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if id != want {
		t.Errorf("Identity = %+v, want %+v", id, want)
	}
	if token == nil || token.AccessToken == "" {
		t.Error("Exchange() returned empty token")
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, _ := GenerateState()
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two states are equal")
	}
}
