package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/measure"
	"fiber-meter/internal/domain/port"
)

// Image хранит снимок вместе с именем, под которым он попадёт в лог и журнал.
type Image struct {
	Name string
	Data []byte
}

// MeasurementService извлекает длину волокна со снимков через мультимодальную модель.
type MeasurementService struct {
	sessions     *SessionService
	model        port.VisionModel
	preprocessor port.ImagePreprocessor
	history      port.HistoryRepository
	method       string
	logger       *zap.Logger

	firsts map[int64]Image
	mu     sync.RWMutex
}

// NewMeasurementService собирает сервис. preprocessor и history могут быть nil.
func NewMeasurementService(
	sessions *SessionService,
	model port.VisionModel,
	preprocessor port.ImagePreprocessor,
	history port.HistoryRepository,
	method string,
	logger *zap.Logger,
) *MeasurementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeasurementService{
		sessions:     sessions,
		model:        model,
		preprocessor: preprocessor,
		history:      history,
		method:       method,
		logger:       logger,
		firsts:       make(map[int64]Image),
	}
}

// Method возвращает подпись метода в результатах, например "Ollama Model".
func (s *MeasurementService) Method() string { return s.method }

// ModelName возвращает имя модели, которая делает замеры.
func (s *MeasurementService) ModelName() string {
	if s.model == nil {
		return ""
	}
	return s.model.Model()
}

// Analyze отправляет снимок модели и разбирает её ответ.
func (s *MeasurementService) Analyze(ctx context.Context, src entity.Source, img Image) (*entity.Reading, error) {
	if s.model == nil {
		return nil, entity.ErrModelNotConfigured
	}
	if len(img.Data) == 0 {
		return nil, entity.ErrEmptyImage
	}

	data := img.Data
	if s.preprocessor != nil {
		prepared, err := s.preprocessor.Prepare(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("prepare image: %w: %w", entity.ErrImageRejected, err)
		}
		data = prepared
	}

	content, err := s.model.Describe(ctx, measure.Prompt, data)
	if err != nil {
		return nil, fmt.Errorf("failed to process image with %s: %w", s.model.Name(), err)
	}

	name := filepath.Base(img.Name)
	s.logger.Info("raw model output", zap.String("image", name), zap.String("output", content))

	value, additional := measure.ExtractLength(content)
	reading := &entity.Reading{
		DetectedLength:    value,
		Unit:              entity.UnitNA,
		Confidence:        measure.BaseConfidence(),
		Method:            s.method,
		RawText:           strings.TrimSpace(content),
		AdditionalNumbers: additional,
		ModelUsed:         s.model.Model(),
	}
	if value != nil {
		reading.Unit = entity.UnitMeters
		reading.Confidence = measure.Confidence(content, *value)
	} else {
		s.logger.Info("no number found", zap.String("image", name))
	}

	s.record(ctx, src, name, reading)
	return reading, nil
}

// ProcessImage читает файл и анализирует его. Ошибка превращается в результат с полем error.
func (s *MeasurementService) ProcessImage(ctx context.Context, src entity.Source, path string) *entity.Reading {
	data, err := readImage(path)
	if err != nil {
		return entity.NewFailedReading(s.method, err)
	}

	reading, err := s.Analyze(ctx, src, Image{Name: path, Data: data})
	if err != nil {
		s.logger.Warn("image processing failed", zap.String("path", path), zap.Error(err))
		return entity.NewFailedReading(s.method, err)
	}
	return reading
}

// CompareImages замеряет оба файла и считает разницу длин.
func (s *MeasurementService) CompareImages(ctx context.Context, src entity.Source, path1, path2 string) *entity.Comparison {
	s.logger.Info("processing two images for comparison",
		zap.String("image1", filepath.Base(path1)),
		zap.String("image2", filepath.Base(path2)),
	)

	data1, err := readImage(path1)
	if err != nil {
		return failedComparison(path1, path2, err)
	}
	data2, err := readImage(path2)
	if err != nil {
		return failedComparison(path1, path2, err)
	}

	c := s.Compare(ctx, src, Image{Name: path1, Data: data1}, Image{Name: path2, Data: data2})
	c.Image1Path, c.Image2Path = path1, path2
	return c
}

// Compare замеряет два снимка в памяти. Ошибка любого из них делает сравнение неудачным.
func (s *MeasurementService) Compare(ctx context.Context, src entity.Source, img1, img2 Image) *entity.Comparison {
	r1, err := s.Analyze(ctx, src, img1)
	if err != nil {
		return failedComparison("", "", err)
	}
	r2, err := s.Analyze(ctx, src, img2)
	if err != nil {
		return failedComparison("", "", err)
	}

	c := &entity.Comparison{
		Image1Result:   r1,
		Image2Result:   r2,
		Difference:     measure.Difference(r1.DetectedLength, r2.DetectedLength),
		DifferenceUnit: entity.UnitNA,
		Method:         entity.MethodDual,
	}
	if c.HasDifference() {
		c.DifferenceUnit = entity.UnitMeters
		s.logger.Info("fiber length difference", zap.Float64("meters", *c.Difference))
	} else {
		s.logger.Info("could not calculate difference due to missing number(s)")
	}
	c.DifferenceConfidence = measure.DifferenceConfidence(r1.Confidence, r2.Confidence, c.HasDifference())
	return c
}

// AcceptFirstPhoto запоминает первый снимок сравнения и ждёт второй.
func (s *MeasurementService) AcceptFirstPhoto(ctx context.Context, userID, chatID int64, img Image) (*entity.Session, error) {
	// Держим первый снимок в памяти до прихода второго.
	s.mu.Lock()
	s.firsts[userID] = img
	s.mu.Unlock()
	return s.sessions.SetState(ctx, userID, chatID, entity.StateAwaitingSecondPhoto)
}

// CompareWithFirst сравнивает сохранённый первый снимок со вторым и возвращает сессию в меню.
func (s *MeasurementService) CompareWithFirst(ctx context.Context, userID, chatID int64, second Image) (*entity.Comparison, error) {
	s.mu.Lock()
	first, ok := s.firsts[userID]
	delete(s.firsts, userID)
	s.mu.Unlock()
	if !ok || len(first.Data) == 0 {
		return nil, entity.ErrFirstPhotoMissing
	}

	c := s.Compare(ctx, entity.SourceBot, first, second)
	if _, err := s.sessions.Cancel(ctx, userID, chatID); err != nil {
		return c, err
	}
	return c, nil
}

// ForgetFirstPhoto сбрасывает незавершённое сравнение.
func (s *MeasurementService) ForgetFirstPhoto(userID int64) {
	s.mu.Lock()
	delete(s.firsts, userID)
	s.mu.Unlock()
}

func (s *MeasurementService) record(ctx context.Context, src entity.Source, name string, reading *entity.Reading) {
	if s.history == nil {
		return
	}
	rec := &entity.HistoryRecord{
		Source:    src,
		ImageName: name,
		Reading:   *reading,
		CreatedAt: time.Now(),
	}
	if err := s.history.Save(ctx, rec); err != nil {
		s.logger.Warn("history save failed", zap.String("image", name), zap.Error(err))
	}
}

func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to read image file: %w", entity.ErrEmptyImage)
	}
	return data, nil
}

func failedComparison(path1, path2 string, err error) *entity.Comparison {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &entity.Comparison{
		Image1Path:     path1,
		Image2Path:     path2,
		DifferenceUnit: entity.UnitNA,
		Method:         entity.MethodDualFailed,
		Error:          err.Error(),
		Cause:          err,
	}
}
