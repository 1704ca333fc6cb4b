package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFailedReading(t *testing.T) {
	r := NewFailedReading("Ollama Model", errors.New("boom"))
	require.False(t, r.Detected())
	require.Equal(t, UnitNA, r.Unit)
	require.Equal(t, 0, r.Confidence)
	require.Equal(t, "Error: boom", r.RawText)
	require.Equal(t, "boom", r.Error)
	require.NotNil(t, r.AdditionalNumbers)
}

func TestReadingJSON_NullLength(t *testing.T) {
	r := NewFailedReading("Ollama Model", errors.New("x"))
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(b), `"detected_length":null`)
	require.Contains(t, string(b), `"additional_numbers":[]`)
}

func TestBatchReportDetected(t *testing.T) {
	v := 12.5
	rep := BatchReport{Results: []BatchEntry{
		{Reading: Reading{DetectedLength: &v}, Filename: "a.jpg"},
		{Reading: Reading{}, Filename: "b.jpg"},
	}}
	got := rep.Detected()
	require.Len(t, got, 1)
	require.Equal(t, "a.jpg", got[0].Filename)
}
