// Package httpapi отдаёт замеры по HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "fiber-meter/internal/application"
	"fiber-meter/internal/container"
	"fiber-meter/internal/domain/entity"
)

const maxUploadSize = 20 << 20

// Server HTTP-обёртка над сервисами замеров.
type Server struct {
	services *container.Container
	engine   *gin.Engine
	logger   *zap.Logger
}

// NewServer собирает маршруты.
func NewServer(services *container.Container, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{services: services, engine: gin.New(), logger: logger}
	s.engine.MaxMultipartMemory = maxUploadSize
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/measure", s.measureHandler)
	v1.POST("/compare", s.compareHandler)
	v1.GET("/history", s.historyHandler)
}

// Handler нужен для httptest и http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

// Run слушает addr до отмены ctx.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.services.MeasurementService.ModelName(),
	})
}

func (s *Server) measureHandler(c *gin.Context) {
	img, err := formImage(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, err := s.services.MeasurementService.Analyze(c.Request.Context(), entity.SourceHTTP, img)
	if err != nil {
		s.logger.Warn("measure failed", zap.String("image", img.Name), zap.Error(err))
		c.JSON(errorStatus(err), entity.NewFailedReading(s.services.MeasurementService.Method(), err))
		return
	}
	c.JSON(http.StatusOK, reading)
}

func (s *Server) compareHandler(c *gin.Context) {
	img1, err := formImage(c, "image1")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img2, err := formImage(c, "image2")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.services.MeasurementService.Compare(c.Request.Context(), entity.SourceHTTP, img1, img2)
	result.Image1Path, result.Image2Path = img1.Name, img2.Name
	status := http.StatusOK
	if result.Error != "" {
		status = errorStatus(result.Cause)
	}
	c.JSON(status, result)
}

// errorStatus выбирает код ответа: отклонённый снимок 422, нет модели 503, прочее 502.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrImageRejected), errors.Is(err, entity.ErrEmptyImage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrModelNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) historyHandler(c *gin.Context) {
	limit := app.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := s.services.HistoryService.Recent(c.Request.Context(), limit)
	if errors.Is(err, entity.ErrHistoryDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}

	out := make([]historyItem, 0, len(records))
	for _, rec := range records {
		out = append(out, historyItem{
			ID:        rec.ID,
			Source:    string(rec.Source),
			ImageName: rec.ImageName,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			Reading:   rec.Reading,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

type historyItem struct {
	ID        int64          `json:"id"`
	Source    string         `json:"source"`
	ImageName string         `json:"image_name"`
	CreatedAt string         `json:"created_at"`
	Reading   entity.Reading `json:"reading"`
}

func formImage(c *gin.Context, field string) (app.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return app.Image{}, fmt.Errorf("%s missing", field)
	}
	if fh.Size > maxUploadSize {
		return app.Image{}, fmt.Errorf("%s too large (max %d MB)", field, maxUploadSize>>20)
	}
	data, err := readUpload(fh)
	if err != nil {
		return app.Image{}, err
	}
	if len(data) == 0 {
		return app.Image{}, fmt.Errorf("%s is empty", field)
	}
	return app.Image{Name: fh.Filename, Data: data}, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
