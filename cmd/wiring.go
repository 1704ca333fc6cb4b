package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fiber-meter/config"
	"fiber-meter/internal/container"
	"fiber-meter/internal/domain/port"
	"fiber-meter/internal/infrastructure/report"
	"fiber-meter/internal/infrastructure/storage"
	"fiber-meter/internal/infrastructure/vision"
)

// runtime хранит собранные сервисы и то, что нужно закрыть на выходе.
type runtime struct {
	services *container.Container
	model    port.VisionModel
	closers  []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

// Ping проверяет, что модель доступна. Проверка есть только у Ollama.
func (r *runtime) Ping(ctx context.Context) error {
	if o, ok := r.model.(*vision.OllamaClient); ok {
		return o.Ping(ctx)
	}
	return nil
}

func buildRuntime(ctx context.Context, c *config.Config, log *zap.Logger) (*runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}

	model, err := vision.NewModel(vision.BackendConfig{
		Backend: c.Vision.Backend,
		Ollama: vision.OllamaConfig{
			URL:     c.Vision.Ollama.URL,
			Model:   c.Vision.Ollama.Model,
			Timeout: c.Vision.Ollama.Timeout,
		},
		Gemini: vision.GeminiConfig{
			APIKey: c.Vision.Gemini.APIKey,
			Model:  c.Vision.Gemini.Model,
		},
	}, log.Named("vision"))
	if err != nil {
		return nil, err
	}

	var gate *vision.QualityGate
	if c.Preprocess.QualityGate {
		if vision.QualityGateAvailable {
			gate = vision.NewQualityGate()
		} else {
			log.Warn("quality gate requested but binary is built without gocv")
		}
	}
	prep := vision.NewPreprocessor(c.Preprocess.MaxSide, gate, log.Named("preprocess"))

	jsonWriter, err := report.NewJSONWriter()
	if err != nil {
		return nil, fmt.Errorf("init report writer: %w", err)
	}
	var xlsxWriter port.ReportWriter
	if c.Batch.XLSX {
		xlsxWriter = report.XLSXWriter{}
	}

	rt := &runtime{model: model}

	var history port.HistoryRepository
	if c.History.Path != "" {
		repo, err := storage.NewSQLiteHistoryRepository(ctx, c.History.Path, log.Named("history"))
		if err != nil {
			// Журнал не обязателен для замеров.
			log.Warn("history disabled", zap.Error(err))
		} else {
			history = repo
			rt.closers = append(rt.closers, repo.Close)
		}
	}

	rt.services = container.New(container.Deps{
		Sessions:     storage.NewMemorySessionRepository(),
		Model:        model,
		Preprocessor: prep,
		History:      history,
		JSONReport:   jsonWriter,
		XLSXReport:   xlsxWriter,
		Method:       vision.MethodName(model.Name()),
		Logger:       log,
	})

	log.Info("vision model configured",
		zap.String("backend", model.Name()),
		zap.String("model", model.Model()),
	)
	return rt, nil
}
