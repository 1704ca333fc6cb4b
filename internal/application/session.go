package app

import (
	"context"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

type SessionService struct {
	repo port.SessionRepository
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *SessionService) SetState(ctx context.Context, userID, chatID int64, state entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.SetState(state)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// BeginSingle переводит сессию в ожидание одного фото.
func (s *SessionService) BeginSingle(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.begin(ctx, userID, chatID, entity.ModeSingle, entity.StateAwaitingPhoto)
}

// BeginDual переводит сессию в ожидание первого из двух фото.
func (s *SessionService) BeginDual(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.begin(ctx, userID, chatID, entity.ModeDual, entity.StateAwaitingFirstPhoto)
}

func (s *SessionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.begin(ctx, userID, chatID, entity.ModeSingle, entity.StateMainMenu)
}

func (s *SessionService) begin(ctx context.Context, userID, chatID int64, mode entity.Mode, state entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.Mode = mode
	session.SetState(state)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
