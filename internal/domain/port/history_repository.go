package port

import (
	"context"

	"fiber-meter/internal/domain/entity"
)

// HistoryRepository интерфейс журнала замеров
type HistoryRepository interface {
	// Save добавляет замер в журнал
	Save(ctx context.Context, record *entity.HistoryRecord) error

	// Recent возвращает последние замеры, новые первыми
	Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error)
}
