package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindRejected, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindConflict, http.StatusConflict},
		{KindUpstream, http.StatusInternalServerError},
		{KindTooLarge, http.StatusRequestEntityTooLarge},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.kind.Status())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("dup"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestWriteUpstreamIncludesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, zap.NewNop().Sugar(), Upstream("Error fetching media.", errors.New("boom")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Error fetching media.", env.Message)
	assert.Equal(t, "boom", env.Error)
}

func TestWriteValidationHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, &Error{Kind: KindValidation, Message: "bad", Err: errors.New("detail")})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad", body["message"])
	_, hasErr := body["error"]
	assert.False(t, hasErr)
}

func TestWriteRejectedAttachesResult(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, Rejected("Failed to delete.", map[string]string{"result": "not found"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to delete.","result":{"result":"not found"}}`, rec.Body.String())
}

func TestWriteUnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, errors.New("kaput"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
