package container

import (
	"go.uber.org/zap"

	app "fiber-meter/internal/application"
	"fiber-meter/internal/domain/port"
)

// Deps перечисляет адаптеры, из которых собираются сервисы приложения.
type Deps struct {
	Sessions     port.SessionRepository
	Model        port.VisionModel
	Preprocessor port.ImagePreprocessor
	History      port.HistoryRepository // nil: журнал выключен
	JSONReport   port.ReportWriter
	XLSXReport   port.ReportWriter // nil: без книги Excel
	Method       string
	Logger       *zap.Logger
}

type Container struct {
	SessionService     *app.SessionService
	MeasurementService *app.MeasurementService
	BatchService       *app.BatchService
	HistoryService     *app.HistoryService
}

func New(d Deps) *Container {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sessionService := app.NewSessionService(d.Sessions)
	measurementService := app.NewMeasurementService(
		sessionService,
		d.Model,
		d.Preprocessor,
		d.History,
		d.Method,
		logger.Named("measure"),
	)
	batchService := app.NewBatchService(measurementService, d.JSONReport, d.XLSXReport, logger.Named("batch"))

	return &Container{
		SessionService:     sessionService,
		MeasurementService: measurementService,
		BatchService:       batchService,
		HistoryService:     app.NewHistoryService(d.History),
	}
}
