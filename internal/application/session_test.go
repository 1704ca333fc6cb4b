package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/storage"
)

func TestSessionService_BeginAndCancel(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.BeginDual(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFirstPhoto, session.State)
	require.Equal(t, entity.ModeDual, session.Mode)

	session, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
	require.Equal(t, entity.ModeSingle, session.Mode)

	session, err = svc.BeginSingle(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, session.State)
}

func TestSessionService_SetState(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, session.State)

	got, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, got.State)
}
