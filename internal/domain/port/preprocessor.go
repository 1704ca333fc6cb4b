package port

import "context"

// ImagePreprocessor готовит изображение перед отправкой в модель
type ImagePreprocessor interface {
	// Prepare проверяет качество и нормализует изображение
	Prepare(ctx context.Context, imageData []byte) ([]byte, error)
}
