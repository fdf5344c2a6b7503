package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/invitelinks/pkg/cryptox"
	"github.com/aussiebroadwan/invitelinks/pkg/httpx"
	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("first"), mark("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	keys.Add(signer.KID(), signer.Public())
	verifier := jwtx.NewVerifierEdDSA(keys, jwtx.VerifyOptions{Issuer: "bartab-auth"})

	var seen jwtx.Claims
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), httpx.AuthnMiddleware(verifier))

	sign := func(subject string) string {
		token, err := signer.Sign(jwtx.NewAccessClaims(subject, []string{"invites:read"}, time.Minute, "bartab-auth", "alice", "", time.Now()))
		require.NoError(t, err)
		return token
	}

	t.Run("accepts a valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+sign("user-1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "user-1", seen.Subject)
		require.Equal(t, "alice", seen.DisplayName())
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"no subject", "Bearer " + sign("")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)

			var body httpx.ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, "invalid_token", body.Error)
		})
	}
}

func TestScopeMiddleware(t *testing.T) {
	withScopes := func(scopes ...string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		claims := jwtx.Claims{Scopes: scopes}
		claims.Subject = "user-1"
		return req.WithContext(httpx.WithClaims(context.Background(), claims))
	}

	t.Run("any", func(t *testing.T) {
		h := httpx.RequireAnyScope("invites:read", "invites:write")(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withScopes("invites:write"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, withScopes("profile:read"))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `scope="invites:read invites:write"`)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(s string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
		err := httpx.DecodeJSON(req, &b)
		return b, err
	}

	got, err := decode(`{"name":"Alice"}`)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)

	for _, bad := range []string{``, `{`, `{"nme":"Alice"}`, `{"name":"a"}{"name":"b"}`} {
		_, err := decode(bad)
		require.ErrorIs(t, err, httpx.ErrBadBody, bad)
	}
}
