package app

import (
	"context"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

const DefaultHistoryLimit = 10

type HistoryService struct {
	repo port.HistoryRepository
}

// NewHistoryService создаёт сервис журнала. При repo == nil журнал выключен.
func NewHistoryService(repo port.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) Enabled() bool { return s.repo != nil }

// Recent возвращает последние замеры, новые первыми.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	if s.repo == nil {
		return nil, entity.ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.Recent(ctx, limit)
}
