package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/container"
	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/storage"
)

type fakeModel struct{ responses map[string]string }

func (m fakeModel) Describe(ctx context.Context, prompt string, image []byte) (string, error) {
	if text, ok := m.responses[string(image)]; ok {
		return text, nil
	}
	return "", errors.New("model unavailable")
}
func (fakeModel) Name() string  { return "ollama" }
func (fakeModel) Model() string { return "llava-phi3" }

type rejectingPreprocessor struct{}

func (rejectingPreprocessor) Prepare(ctx context.Context, data []byte) ([]byte, error) {
	if string(data) == "blurry" {
		return nil, errors.New("quality gate failed: image is blurry")
	}
	return data, nil
}

func newTestServer(t *testing.T, withHistory bool) *Server {
	t.Helper()
	deps := container.Deps{
		Sessions: storage.NewMemorySessionRepository(),
		Model: fakeModel{responses: map[string]string{
			"one": "The image clearly shows 12.5 meters.",
			"two": "10 m",
		}},
		Preprocessor: rejectingPreprocessor{},
		Method:       "Ollama Model",
	}
	if withHistory {
		repo, err := storage.NewSQLiteHistoryRepository(context.Background(), filepath.Join(t.TempDir(), "h.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		deps.History = repo
	}
	return NewServer(container.New(deps), nil)
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func perform(s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMeasure(t *testing.T) {
	s := newTestServer(t, false)

	body, ct := multipartBody(t, map[string]string{"image": "one"})
	rec := perform(s, http.MethodPost, "/api/v1/measure", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var r entity.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.NotNil(t, r.DetectedLength)
	require.Equal(t, 12.5, *r.DetectedLength)
	require.Equal(t, 90, r.Confidence)
}

func TestMeasure_Errors(t *testing.T) {
	s := newTestServer(t, false)

	rec := perform(s, http.MethodPost, "/api/v1/measure", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := multipartBody(t, map[string]string{"image": "unknown"})
	rec = perform(s, http.MethodPost, "/api/v1/measure", body, ct)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var r entity.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.Nil(t, r.DetectedLength)
	require.Equal(t, entity.UnitNA, r.Unit)
	require.NotEmpty(t, r.Error)
}

func TestMeasure_RejectedImage(t *testing.T) {
	s := newTestServer(t, false)

	body, ct := multipartBody(t, map[string]string{"image": "blurry"})
	rec := perform(s, http.MethodPost, "/api/v1/measure", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var r entity.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.Contains(t, r.Error, "image is blurry")

	body, ct = multipartBody(t, map[string]string{"image1": "one", "image2": "blurry"})
	rec = perform(s, http.MethodPost, "/api/v1/compare", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var c entity.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.Equal(t, entity.MethodDualFailed, c.Method)
}

func TestCompare(t *testing.T) {
	s := newTestServer(t, false)

	body, ct := multipartBody(t, map[string]string{"image1": "one", "image2": "two"})
	rec := perform(s, http.MethodPost, "/api/v1/compare", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var c entity.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.Equal(t, entity.MethodDual, c.Method)
	require.NotNil(t, c.Difference)
	require.Equal(t, 2.5, *c.Difference)
	require.Equal(t, "image1.jpg", c.Image1Path)

	body, ct = multipartBody(t, map[string]string{"image1": "one"})
	rec = perform(s, http.MethodPost, "/api/v1/compare", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, false)
	rec := perform(s, http.MethodGet, "/api/v1/history", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	s = newTestServer(t, true)
	for _, content := range []string{"one", "two"} {
		body, ct := multipartBody(t, map[string]string{"image": content})
		require.Equal(t, http.StatusOK, perform(s, http.MethodPost, "/api/v1/measure", body, ct).Code)
	}

	rec = perform(s, http.MethodGet, "/api/v1/history?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []historyItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, "http", resp.Items[0].Source)
	require.Equal(t, 10.0, *resp.Items[0].Reading.DetectedLength)

	rec = perform(s, http.MethodGet, "/api/v1/history?limit=x", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, false)
	rec := perform(s, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "llava-phi3")
}
