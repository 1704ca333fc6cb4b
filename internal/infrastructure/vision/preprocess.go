package vision

import (
	"bytes"
	"context"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

const (
	DefaultMaxSide     = 1600
	defaultJPEGQuality = 90
)

// Preprocessor проверяет качество и уменьшает большие фото перед отправкой в модель.
type Preprocessor struct {
	MaxSide     int          // длинная сторона после уменьшения, 0 не трогает размер
	JPEGQuality int          // качество перекодирования
	Gate        *QualityGate // nil: без проверки качества
	logger      *zap.Logger
}

// NewPreprocessor создаёт препроцессор.
func NewPreprocessor(maxSide int, gate *QualityGate, logger *zap.Logger) *Preprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preprocessor{
		MaxSide:     maxSide,
		JPEGQuality: defaultJPEGQuality,
		Gate:        gate,
		logger:      logger,
	}
}

// Prepare возвращает байты, которые пойдут в модель.
func (p *Preprocessor) Prepare(ctx context.Context, imageData []byte) ([]byte, error) {
	_ = ctx
	if len(imageData) == 0 {
		return nil, entity.ErrEmptyImage
	}

	if p.Gate != nil {
		if err := p.Gate.Check(imageData); err != nil {
			return nil, err
		}
	}

	if p.MaxSide <= 0 {
		return imageData, nil
	}

	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		// Модель может принять формат, который мы не декодируем.
		p.logger.Debug("image decode failed, sending as is", zap.Error(err))
		return imageData, nil
	}

	b := img.Bounds()
	if b.Dx() <= p.MaxSide && b.Dy() <= p.MaxSide {
		return imageData, nil
	}

	resized := imaging.Fit(img, p.MaxSide, p.MaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(p.JPEGQuality)); err != nil {
		return nil, err
	}

	p.logger.Debug("image downscaled",
		zap.Int("from_w", b.Dx()), zap.Int("from_h", b.Dy()),
		zap.Int("to_w", resized.Bounds().Dx()), zap.Int("to_h", resized.Bounds().Dy()),
	)
	return buf.Bytes(), nil
}

var _ port.ImagePreprocessor = (*Preprocessor)(nil)
