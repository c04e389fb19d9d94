package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Role", claims.Role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(req), "header %q", header)
	}
}

func TestRequireAuthentication(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	log := zap.NewNop().Sugar()
	h := RequireAuthentication(ts, log)(okHandler(t))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer garbage").Code)

	forged, err := NewTokenService("other", time.Hour).Issue(ana)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+forged).Code)

	tok, err := ts.Issue(ana)
	require.NoError(t, err)
	rec := serve(h, "Bearer "+tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, RoleClient, rec.Header().Get("X-Role"))
}

func TestRequireRoleAdminOnly(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	log := zap.NewNop().Sugar()
	h := Protect(okHandler(t), ts, log, RoleAdmin)

	client, err := ts.Issue(ana)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+client).Code)

	admin := ana
	admin.Role = RoleAdmin
	adminTok, err := ts.Issue(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(h, "Bearer "+adminTok).Code)
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	h := RequireRole(zap.NewNop().Sugar(), RoleAdmin, RoleClient)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	assert.Equal(t, http.StatusForbidden, serve(h, "").Code)
}
