package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/domain/entity"
)

func TestSQLiteHistoryRepository_SaveAndRecent(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteHistoryRepository(ctx, filepath.Join(t.TempDir(), "db", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	length := 12.5
	first := &entity.HistoryRecord{
		Source:    entity.SourceCLI,
		ImageName: "a.jpg",
		Reading: entity.Reading{
			DetectedLength:    &length,
			Unit:              entity.UnitMeters,
			Confidence:        90,
			Method:            "Ollama Model",
			RawText:           "12.5 meters",
			AdditionalNumbers: []float64{3},
			ModelUsed:         "llava-phi3",
		},
	}
	require.NoError(t, repo.Save(ctx, first))
	require.NotZero(t, first.ID)

	second := &entity.HistoryRecord{
		Source:    entity.SourceBot,
		ImageName: "b.jpg",
		Reading:   *entity.NewFailedReading("Ollama Model", context.DeadlineExceeded),
	}
	require.NoError(t, repo.Save(ctx, second))

	recs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "b.jpg", recs[0].ImageName)
	require.Nil(t, recs[0].Reading.DetectedLength)
	require.Equal(t, entity.SourceBot, recs[0].Source)
	require.Equal(t, context.DeadlineExceeded.Error(), recs[0].Reading.Error)

	require.Equal(t, "a.jpg", recs[1].ImageName)
	require.NotNil(t, recs[1].Reading.DetectedLength)
	require.InDelta(t, 12.5, *recs[1].Reading.DetectedLength, 1e-9)
	require.Equal(t, []float64{3}, recs[1].Reading.AdditionalNumbers)
	require.False(t, recs[1].CreatedAt.IsZero())

	limited, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
