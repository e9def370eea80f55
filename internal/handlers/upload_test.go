package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	keys  []string
	types []string
	err   error
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	m.types = append(m.types, contentType)
	return "http://cdn.test/" + key, nil
}

// 1x1 transparent PNG
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89\x00\x00\x00\rIDATx\x9cc\xf8\x0f\x00\x00\x01\x01\x00\x05\x18\xd8N\x00\x00\x00\x00IEND\xaeB`\x82")

func uploadRequest(t *testing.T, field, name string, data []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	sess := session.NewRequest(nil)
	sess.UserID = "u1"
	req = req.WithContext(session.IntoContext(req.Context(), sess))

	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestUploadImage(t *testing.T) {
	store := &memStore{}
	h := &UploadHTTP{Store: store}

	c, rec := uploadRequest(t, "file", "dot.png", pngBytes)
	require.NoError(t, h.UploadImage(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], "items/u1/"))
	assert.True(t, strings.HasSuffix(store.keys[0], ".png"))
	assert.Equal(t, "image/png", store.types[0])

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "http://cdn.test/"+store.keys[0], resp["image"])
}

func TestUploadImage_Rejects(t *testing.T) {
	h := &UploadHTTP{Store: &memStore{}}

	c, _ := uploadRequest(t, "other", "dot.png", pngBytes)
	err := h.UploadImage(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	c, _ = uploadRequest(t, "file", "notes.txt", []byte("just some text"))
	require.ErrorAs(t, h.UploadImage(c), &he)
	assert.Equal(t, http.StatusUnsupportedMediaType, he.Code)

	h.Store = &memStore{err: errors.New("bucket gone")}
	c, _ = uploadRequest(t, "file", "dot.png", pngBytes)
	require.ErrorAs(t, h.UploadImage(c), &he)
	assert.Equal(t, http.StatusBadGateway, he.Code)
}
