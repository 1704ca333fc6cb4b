package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"fiber-meter/internal/domain/entity"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessor_Downscales(t *testing.T) {
	p := NewPreprocessor(300, nil, nil)
	out, err := p.Prepare(context.Background(), makePNG(t, 900, 300))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 300, cfg.Width)
	require.InDelta(t, 100, cfg.Height, 1)
}

func TestPreprocessor_KeepsSmallImage(t *testing.T) {
	in := makePNG(t, 50, 40)
	out, err := NewPreprocessor(300, nil, nil).Prepare(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestPreprocessor_PassesUndecodable(t *testing.T) {
	in := []byte("not an image at all")
	out, err := NewPreprocessor(300, NewQualityGate(), nil).Prepare(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestPreprocessor_Disabled(t *testing.T) {
	in := makePNG(t, 900, 300)
	out, err := NewPreprocessor(0, nil, nil).Prepare(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestPreprocessor_Empty(t *testing.T) {
	_, err := NewPreprocessor(300, nil, nil).Prepare(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrEmptyImage)
}
