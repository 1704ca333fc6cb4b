package vision

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fiber-meter/internal/domain/port"
)

const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

// BackendConfig выбор и настройки бэкенда модели.
type BackendConfig struct {
	Backend string
	Ollama  OllamaConfig
	Gemini  GeminiConfig
}

// NewModel создаёт бэкенд по имени из конфигурации.
func NewModel(cfg BackendConfig, logger *zap.Logger) (port.VisionModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendOllama:
		return NewOllamaClient(cfg.Ollama, logger), nil
	case BackendGemini:
		return NewGeminiClient(cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unsupported vision backend: %s", cfg.Backend)
	}
}

// MethodName возвращает подпись метода для отчёта, например "Ollama Model".
func MethodName(backend string) string {
	if backend == "" {
		return "Vision Model"
	}
	return strings.ToUpper(backend[:1]) + backend[1:] + " Model"
}
