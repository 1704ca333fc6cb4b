package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "B.JPEG", "c.png", "d.BMP", "e.TIFF", "f.gif"} {
		require.True(t, IsImageFile(name), name)
	}
	for _, name := range []string{"notes.txt", "archive.tif", "noext", "photo.jpg.bak", "mixed.Jpg"} {
		require.False(t, IsImageFile(name), name)
	}
}
