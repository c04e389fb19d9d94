package media

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/entity"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/store"
)

func newTestHandler(fs *fakeStore, maxBytes int64) *Handler {
	return NewHandler(newTestService(fs), zap.NewNop().Sugar(), maxBytes)
}

func multipartRequest(t *testing.T, field, name, mime string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	h.Set("Content-Type", mime)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	return m
}

func TestUploadHandler(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(fs, 1<<20)
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, FormField, "clip one.mp4", "video/mp4", []byte("frames")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "File uploaded successfully!", body["message"])
	assert.Equal(t, "uploads/videos/video_1700000000000_clip_one_K", body["publicId"])
	assert.Equal(t, "video", body["resourceType"])
	assert.EqualValues(t, 6, body["bytes"])
	for _, k := range []string{"url", "thumbnailUrl", "format"} {
		assert.NotEmpty(t, body[k], k)
	}
}

func TestUploadHandlerNoFile(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(fs, 1<<20)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, "other", "a.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded.", decodeBody(t, rec)["message"])

	rec = httptest.NewRecorder()
	h.Upload(rec, httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fs.uploads)
}

func TestUploadHandlerRejectsOtherTypes(t *testing.T) {
	fs := newFakeStore()
	rec := httptest.NewRecorder()
	newTestHandler(fs, 1<<20).Upload(rec, multipartRequest(t, FormField, "a.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fs.uploads)
}

func TestUploadHandlerTooLarge(t *testing.T) {
	fs := newFakeStore()
	rec := httptest.NewRecorder()
	newTestHandler(fs, 1024).Upload(rec, multipartRequest(t, FormField, "big.png", "image/png", bytes.Repeat([]byte("x"), 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, fs.uploads)
}

func TestUploadHandlerStoreFailure(t *testing.T) {
	fs := newFakeStore()
	fs.uploadErr = assert.AnError
	rec := httptest.NewRecorder()
	newTestHandler(fs, 1<<20).Upload(rec, multipartRequest(t, FormField, "a.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
}

func TestListHandler(t *testing.T) {
	fs := newFakeStore()
	fs.seed(entity.KindImage, 2)
	rec := httptest.NewRecorder()
	newTestHandler(fs, 0).List(rec, httptest.NewRequest(http.MethodGet, "/api/media", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["media"], 2)
	_, hasCursor := body["nextCursor"]
	assert.False(t, hasCursor)

	rec = httptest.NewRecorder()
	newTestHandler(fs, 0).List(rec, httptest.NewRequest(http.MethodGet, "/api/media?cursor=%25%25", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteHandler(t *testing.T) {
	del := func(fs *fakeStore, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		newTestHandler(fs, 0).Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/delete", strings.NewReader(body)))
		return rec
	}

	rec := del(newFakeStore(), `{"publicId":"uploads/images/a","resourceType":"image"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uploads/images/a", decodeBody(t, rec)["publicId"])

	assert.Equal(t, http.StatusBadRequest, del(newFakeStore(), `{"resourceType":"image"}`).Code)
	assert.Equal(t, http.StatusBadRequest, del(newFakeStore(), ``).Code)

	fs := newFakeStore()
	fs.destroyResult = store.ResultNotFound
	rec = del(fs, `{"publicId":"gone","resourceType":"image"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"result": "not found"}, decodeBody(t, rec)["result"])

	fs = newFakeStore()
	fs.destroyErr = assert.AnError
	assert.Equal(t, http.StatusInternalServerError, del(fs, `{"publicId":"a","resourceType":"image"}`).Code)
}
