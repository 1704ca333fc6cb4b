package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/domain/entity"
)

func TestHistoryService_Recent(t *testing.T) {
	ctx := context.Background()

	_, err := NewHistoryService(nil).Recent(ctx, 5)
	require.ErrorIs(t, err, entity.ErrHistoryDisabled)

	repo := &memoryHistory{}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		require.NoError(t, repo.Save(ctx, &entity.HistoryRecord{ImageName: name}))
	}

	svc := NewHistoryService(repo)
	require.True(t, svc.Enabled())

	records, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "c.jpg", records[0].ImageName)

	records, err = svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
}
