package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fiber-meter/internal/domain/entity"
)

func ptr(v float64) *float64 { return &v }

func sampleReport() *entity.BatchReport {
	return &entity.BatchReport{
		Summary: entity.BatchSummary{
			RunID:                      "run-1",
			TotalFiles:                 2,
			SuccessfullyProcessed:      1,
			FailedFiles:                1,
			DetectedCount:              1,
			TotalProcessingTimeSeconds: 1.5,
			AverageTimePerFile:         0.75,
			ProcessedAt:                "2025-01-01T10:00:00Z",
			InputDirectory:             "/data/photos",
			ModelUsed:                  "llava-phi3",
		},
		Results: []entity.BatchEntry{
			{
				Reading: entity.Reading{
					DetectedLength:    ptr(12.5),
					Unit:              entity.UnitMeters,
					Confidence:        90,
					Method:            "Ollama Model",
					RawText:           "The image clearly shows 12.5 meters.",
					AdditionalNumbers: []float64{},
				},
				Filename:              "a.jpg",
				Filepath:              "/data/photos/a.jpg",
				ProcessedAt:           "2025-01-01T10:00:00Z",
				ProcessingTimeSeconds: 1.2,
			},
			{
				Reading:               *entity.NewFailedReading("Ollama Model", os.ErrNotExist),
				Filename:              "b.png",
				Filepath:              "/data/photos/b.png",
				ProcessedAt:           "2025-01-01T10:00:01Z",
				ProcessingTimeSeconds: 0.3,
			},
		},
	}
}

func TestJSONWriter_WriteFile(t *testing.T) {
	w, err := NewJSONWriter()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "batch_results.json")
	rep := sampleReport()
	require.NoError(t, w.WriteFile(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.Contains(data, []byte("\n  \"processing_summary\"")))

	var got entity.BatchReport
	require.NoError(t, json.Unmarshal(data, &got))
	if diff := cmp.Diff(*rep, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONWriter_RejectsBadReport(t *testing.T) {
	w, err := NewJSONWriter()
	require.NoError(t, err)

	rep := sampleReport()
	rep.Results[0].Confidence = 150
	_, err = w.Marshal(rep)
	require.Error(t, err)

	rep = sampleReport()
	rep.Summary.TotalFiles = 0
	_, err = w.Marshal(rep)
	require.Error(t, err)
}

func TestJSONWriter_NullLengthAllowed(t *testing.T) {
	w, err := NewJSONWriter()
	require.NoError(t, err)

	data, err := w.Marshal(sampleReport())
	require.NoError(t, err)
	require.Contains(t, string(data), `"detected_length": null`)
	require.Contains(t, string(data), `"unit": "N/A"`)
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{readingsSheet}, f.GetSheetList())

	header, err := f.GetCellValue(readingsSheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Filename", header)

	length, err := f.GetCellValue(readingsSheet, "B2")
	require.NoError(t, err)
	require.Equal(t, "12.5", length)

	level, err := f.GetCellValue(readingsSheet, "E2")
	require.NoError(t, err)
	require.Equal(t, "HIGH", level)

	missing, err := f.GetCellValue(readingsSheet, "B3")
	require.NoError(t, err)
	require.Equal(t, "Not detected", missing)
}

func TestRenderReading(t *testing.T) {
	r := &entity.Reading{
		DetectedLength:    ptr(12.5),
		Unit:              entity.UnitMeters,
		Confidence:        90,
		Method:            "Ollama Model",
		RawText:           "12.5 meters, also 3",
		AdditionalNumbers: []float64{3},
	}
	out := RenderReading(r)
	require.Contains(t, out, "DETECTED LENGTH: 12.5 meters")
	require.Contains(t, out, "CONFIDENCE: 90%")
	require.Contains(t, out, "STATUS: HIGH CONFIDENCE")
	require.Contains(t, out, "Other Numbers Found: 3")
	require.Contains(t, out, "FULL JSON RESULT:")

	out = RenderReading(entity.NewFailedReading("Ollama Model", os.ErrNotExist))
	require.Contains(t, out, "NO LENGTH DETECTED")
	require.NotContains(t, out, "STATUS:")
}

func TestRenderComparison(t *testing.T) {
	c := &entity.Comparison{
		Image1Result:         &entity.Reading{DetectedLength: ptr(10), Unit: entity.UnitMeters, Confidence: 60},
		Image2Result:         &entity.Reading{DetectedLength: ptr(7.5), Unit: entity.UnitMeters, Confidence: 80},
		Difference:           ptr(2.5),
		DifferenceUnit:       entity.UnitMeters,
		DifferenceConfidence: 60,
		Method:               entity.MethodDual,
	}
	out := RenderComparison(c)
	require.Contains(t, out, "FIBER LENGTH DIFFERENCE: 2.5 meters")
	require.Contains(t, out, "STATUS: MEDIUM CONFIDENCE COMPARISON")
	require.Contains(t, out, "IMAGE 1:\n   Length: 10 meters")

	c.Difference = nil
	c.Image2Result = &entity.Reading{Unit: entity.UnitNA, Confidence: 50}
	out = RenderComparison(c)
	require.Contains(t, out, "COULD NOT CALCULATE DIFFERENCE")
	require.True(t, strings.Contains(out, "IMAGE 2:\n   Length: Not detected meters"))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "12", FormatNumber(12))
	require.Equal(t, "3.25", FormatNumber(3.25))
}
