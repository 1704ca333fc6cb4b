package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Describe(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "llava-phi3",
			"message": map[string]any{"role": "assistant", "content": " The number reads 12.5 meters. "},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{URL: srv.URL + "/"}, nil)
	out, err := c.Describe(context.Background(), "prompt", []byte("img"))
	require.NoError(t, err)
	require.Equal(t, " The number reads 12.5 meters. ", out)

	require.Equal(t, DefaultOllamaModel, got.Model)
	require.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "user", got.Messages[0].Role)
	require.Equal(t, "prompt", got.Messages[0].Content)
	require.Equal(t, []string{base64.StdEncoding.EncodeToString([]byte("img"))}, got.Messages[0].Images)
}

func TestOllamaClient_DescribeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{URL: srv.URL, Model: "missing"}, nil)
	_, err := c.Describe(context.Background(), "prompt", []byte("img"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
	require.Contains(t, err.Error(), "model not found")
}

func TestOllamaClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llava-phi3:latest"},{"name":"llama3:8b"}]}`))
	}))
	defer srv.Close()

	require.NoError(t, NewOllamaClient(OllamaConfig{URL: srv.URL}, nil).Ping(context.Background()))

	err := NewOllamaClient(OllamaConfig{URL: srv.URL, Model: "bakllava"}, nil).Ping(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bakllava")
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(BackendConfig{}, nil)
	require.NoError(t, err)
	require.Equal(t, "ollama", m.Name())
	require.Equal(t, DefaultOllamaModel, m.Model())

	_, err = NewModel(BackendConfig{Backend: "gemini"}, nil)
	require.Error(t, err)

	g, err := NewModel(BackendConfig{Backend: "Gemini", Gemini: GeminiConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "gemini", g.Name())
	require.Equal(t, DefaultGeminiModel, g.Model())

	_, err = NewModel(BackendConfig{Backend: "tesseract"}, nil)
	require.Error(t, err)
}

func TestMethodName(t *testing.T) {
	require.Equal(t, "Ollama Model", MethodName("ollama"))
	require.Equal(t, "Gemini Model", MethodName("gemini"))
	require.Equal(t, "Vision Model", MethodName(""))
}
