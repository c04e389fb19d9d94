package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/auth"
)

func newTestHandler() *Handler {
	svc, _ := newTestService(newMemStore(), "")
	return NewHandler(svc, zap.NewNop().Sugar())
}

func post(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSignupSigninFlow(t *testing.T) {
	h := newTestHandler()

	rec := post(h.Signup, "/signup", `{"userName":"ana","email":"ana@x.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var signup SignupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signup))
	assert.NotEmpty(t, signup.UserID)
	assert.Equal(t, auth.RoleClient, signup.Role)
	assert.Equal(t, "User registered successfully!", signup.Message)

	rec = post(h.Signin, "/signin", `{"email":"ana@x.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var signin SigninResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signin))
	assert.NotEmpty(t, signin.Token)
	assert.Equal(t, auth.RoleClient, signin.User.Role)
	assert.Equal(t, signup.UserID, signin.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignupErrors(t *testing.T) {
	h := newTestHandler()

	rec := post(h.Signup, "/signup", `{"userName":"ana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h.Signup, "/signup", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, post(h.Signup, "/signup", `{"userName":"ana","email":"ana@x.com","password":"p"}`).Code)
	rec = post(h.Signup, "/signup", `{"userName":"bob","email":"ana@x.com","password":"p"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var env apperr.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "User with this email already exists.", env.Message)
}

func TestSigninErrors(t *testing.T) {
	h := newTestHandler()
	require.Equal(t, http.StatusCreated, post(h.Signup, "/signup", `{"userName":"ana","email":"ana@x.com","password":"p"}`).Code)

	assert.Equal(t, http.StatusBadRequest, post(h.Signin, "/signin", `{"email":"ana@x.com"}`).Code)

	unknown := post(h.Signin, "/signin", `{"email":"zed@x.com","password":"p"}`)
	wrong := post(h.Signin, "/signin", `{"email":"ana@x.com","password":"q"}`)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())
}
