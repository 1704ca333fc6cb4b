package port

import "context"

// VisionModel интерфейс мультимодальной модели
type VisionModel interface {
	// Describe отправляет изображение с запросом и возвращает текстовый ответ модели
	Describe(ctx context.Context, prompt string, image []byte) (string, error)

	// Name возвращает название бэкенда, например "ollama"
	Name() string

	// Model возвращает имя модели, например "llava-phi3"
	Model() string
}
