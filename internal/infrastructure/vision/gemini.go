package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"fiber-meter/internal/domain/port"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig параметры Gemini API.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiClient реализует альтернативный бэкенд на Gemini.
type GeminiClient struct {
	apiKey   string
	model    string
	attempts int
	logger   *zap.Logger
}

// NewGeminiClient создаёт клиента; без ключа вернёт ошибку.
func NewGeminiClient(cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{apiKey: key, model: model, attempts: 3, logger: logger}, nil
}

func (c *GeminiClient) Name() string  { return "gemini" }
func (c *GeminiClient) Model() string { return c.model }

// Describe отправляет запрос и изображение, повторяя попытку при сбоях.
func (c *GeminiClient) Describe(ctx context.Context, prompt string, image []byte) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.SetTemperature(0)

	parts := []genai.Part{
		genai.Text(prompt),
		genai.Blob{MIMEType: http.DetectContentType(image), Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err == nil {
			return firstText(resp), nil
		}
		lastErr = err
		c.logger.Warn("gemini request failed", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
		}
	}
	return "", fmt.Errorf("gemini: %w", lastErr)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

var _ port.VisionModel = (*GeminiClient)(nil)
