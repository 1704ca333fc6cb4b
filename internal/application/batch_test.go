package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

func newTestBatchService(t *testing.T, model *fakeModel) *BatchService {
	t.Helper()
	writer, err := report.NewJSONWriter()
	require.NoError(t, err)
	return NewBatchService(newTestMeasurementService(model, nil), writer, report.XLSXWriter{}, nil)
}

func TestBatchService_Discover(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "b.PNG", "x")
	writeImage(t, dir, "a.jpg", "x")
	writeImage(t, dir, "c.gif", "x")
	writeImage(t, dir, "notes.txt", "x")
	writeImage(t, dir, "mixed.Jpg", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))
	writeImage(t, filepath.Join(dir, "nested.jpg"), "deep.jpg", "x")

	svc := newTestBatchService(t, newFakeModel(nil))
	files, err := svc.Discover(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.gif"),
	}, files)
}

func TestBatchService_DiscoverErrors(t *testing.T) {
	svc := newTestBatchService(t, newFakeModel(nil))

	_, err := svc.Discover(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, entity.ErrDirectoryNotFound)

	file := writeImage(t, t.TempDir(), "a.jpg", "x")
	_, err = svc.Discover(file)
	require.ErrorIs(t, err, entity.ErrNotDirectory)

	_, err = svc.ProcessDirectory(context.Background(), t.TempDir(), BatchOptions{})
	require.ErrorIs(t, err, entity.ErrNoImages)
}

func TestBatchService_ProcessDirectory(t *testing.T) {
	for _, workers := range []int{0, 3} {
		dir := t.TempDir()
		writeImage(t, dir, "a.jpg", "one")
		writeImage(t, dir, "b.jpg", "two")
		writeImage(t, dir, "c.jpg", "broken")

		model := newFakeModel(map[string]string{
			"one": "The image clearly shows 12.5 meters.",
			"two": "no digits here",
		})
		svc := newTestBatchService(t, model)

		var seen []Progress
		rep, err := svc.ProcessDirectory(context.Background(), dir, BatchOptions{
			Workers:  workers,
			Progress: func(p Progress) { seen = append(seen, p) },
		})
		require.NoError(t, err)

		require.Len(t, rep.Results, 3)
		require.Equal(t, "a.jpg", rep.Results[0].Filename)
		require.Equal(t, "b.jpg", rep.Results[1].Filename)
		require.Equal(t, "c.jpg", rep.Results[2].Filename)
		require.Equal(t, filepath.Join(dir, "a.jpg"), rep.Results[0].Filepath)
		require.NotEmpty(t, rep.Results[0].ProcessedAt)

		require.Equal(t, 3, rep.Summary.TotalFiles)
		require.Equal(t, 2, rep.Summary.SuccessfullyProcessed)
		require.Equal(t, 1, rep.Summary.FailedFiles)
		require.Equal(t, 1, rep.Summary.DetectedCount)
		require.Equal(t, dir, rep.Summary.InputDirectory)
		require.Equal(t, "llava-phi3", rep.Summary.ModelUsed)
		require.NotEmpty(t, rep.Summary.RunID)

		require.Len(t, seen, 3)
		require.Equal(t, 3, seen[2].Index)
		require.Equal(t, 3, seen[2].Total)
		require.Zero(t, seen[2].Remaining)

		require.Equal(t, 1, len(rep.Detected()))
	}
}

func TestBatchService_WriteReport(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", "one")

	svc := newTestBatchService(t, newFakeModel(map[string]string{"one": "12 m"}))
	rep, err := svc.ProcessDirectory(context.Background(), dir, BatchOptions{})
	require.NoError(t, err)

	paths, err := svc.WriteReport(rep, dir, "run1")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "run1.json"), filepath.Join(dir, "run1.xlsx")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Contains(t, got, "processing_summary")
	require.Contains(t, got, "results")

	_, err = os.Stat(paths[1])
	require.NoError(t, err)
}

func TestNormalizeOutputName(t *testing.T) {
	require.Equal(t, DefaultReportName, NormalizeOutputName(""))
	require.Equal(t, DefaultReportName, NormalizeOutputName("   "))
	require.Equal(t, "out.json", NormalizeOutputName("out"))
	require.Equal(t, "out.json", NormalizeOutputName("out.json"))
	require.Equal(t, "out.txt.json", NormalizeOutputName("out.txt"))
}
