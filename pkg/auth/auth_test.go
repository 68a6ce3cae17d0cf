package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/handlers"
)

const secret = "0123456789abcdef0123456789abcdef"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHMACRoundTrip(t *testing.T) {
	h := auth.NewHMAC(secret, "veranstalter", time.Hour)

	token, err := h.Issue("42", "admin", auth.RoleAdmin, auth.RoleUser)
	require.NoError(t, err)

	p, err := h.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "42", p.Subject)
	assert.Equal(t, "admin", p.Username)
	assert.True(t, p.HasAnyRole(auth.RoleAdmin))
}

func TestHMACRejects(t *testing.T) {
	h := auth.NewHMAC(secret, "veranstalter", time.Hour)
	other := auth.NewHMAC(strings.Repeat("x", 32), "veranstalter", time.Hour)
	foreign := auth.NewHMAC(secret, "someone-else", time.Hour)

	expired := auth.NewHMAC(secret, "veranstalter", time.Minute)
	expired.SetNow(func() time.Time { return time.Now().Add(-time.Hour) })

	tokens := map[string]func() (string, error){
		"wrong secret": func() (string, error) { return other.Issue("1", "u", auth.RoleUser) },
		"wrong issuer": func() (string, error) { return foreign.Issue("1", "u", auth.RoleUser) },
		"expired":      func() (string, error) { return expired.Issue("1", "u", auth.RoleUser) },
		"garbage":      func() (string, error) { return "not.a.token", nil },
	}

	for name, issue := range tokens {
		t.Run(name, func(t *testing.T) {
			token, err := issue()
			require.NoError(t, err)

			_, err = h.Verify(context.Background(), token)
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
		})
	}
}

func TestMergeRoles(t *testing.T) {
	roles := auth.MergeRoles(
		[]string{"user", "offline_access"},
		map[string][]string{
			"veranstalter": {"admin", "user"},
			"account":      {"manage-account"},
		},
		"veranstalter",
	)

	assert.Equal(t, []string{"user", "offline_access", "admin"}, roles)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		p       *auth.Principal
		roles   []string
		wantErr error
	}{
		{"anonymous", nil, []string{auth.RoleAdmin}, auth.ErrUnauthorized},
		{"missing role", &auth.Principal{Roles: []string{auth.RoleUser}}, []string{auth.RoleAdmin}, auth.ErrForbidden},
		{"any role matches", &auth.Principal{Roles: []string{auth.RoleUser}}, []string{auth.RoleAdmin, auth.RoleUser}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.p != nil {
				ctx = auth.WithPrincipal(ctx, tt.p)
			}

			err := auth.Authorize(ctx, tt.roles...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

type stubVerifier struct {
	principal *auth.Principal
	err       error
}

func (s stubVerifier) Verify(context.Context, string) (*auth.Principal, error) {
	return s.principal, s.err
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		verifier auth.Verifier
		header   string
		want     int
		wantMsg  string
	}{
		{"no token", stubVerifier{}, "", http.StatusUnauthorized, "authentication required"},
		{"rejected token", stubVerifier{err: auth.ErrUnauthorized}, "Bearer bad", http.StatusUnauthorized, "authentication required"},
		{"wrong role", stubVerifier{principal: &auth.Principal{Roles: []string{"guest"}}}, "Bearer t", http.StatusForbidden, "Kein Token mit ausreichender Berechtigung vorhanden"},
		{"admitted", stubVerifier{principal: &auth.Principal{Roles: []string{auth.RoleUser}}}, "bearer t", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := discard()
			h := auth.Authenticate(tt.verifier, logger)(
				auth.Require(logger, auth.RoleAdmin, auth.RoleUser)(ok),
			)

			req := httptest.NewRequest("PUT", "/veranstalter/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.wantMsg == "" {
				return
			}

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body.Error)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.Config
		wantErr string
	}{
		{"hmac defaults", auth.Config{Secret: secret}, ""},
		{"short secret", auth.Config{Secret: "short"}, "secret must be at least 32 bytes"},
		{"oidc without client", auth.Config{Mode: auth.ModeOIDC, Issuer: "http://kc/realms/x"}, "client_id required"},
		{"unknown mode", auth.Config{Mode: "basic"}, "unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "veranstalter", tt.cfg.Issuer)
				assert.Equal(t, time.Hour, tt.cfg.TokenTTLDuration())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_AUTH_MODE", "oidc")
	t.Setenv("TEST_AUTH_ISSUER", "http://localhost:8880/realms/veranstalter")
	t.Setenv("TEST_AUTH_CLIENT", "veranstalter-api")

	cfg := auth.Config{}
	err := cfg.Finalize(&auth.Env{
		Mode:     "TEST_AUTH_MODE",
		Issuer:   "TEST_AUTH_ISSUER",
		ClientID: "TEST_AUTH_CLIENT",
	})

	require.NoError(t, err)
	assert.Equal(t, auth.ModeOIDC, cfg.Mode)
	assert.Equal(t, "veranstalter-api", cfg.ClientID)
}
