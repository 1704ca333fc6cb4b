package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

const DefaultReportName = "batch_results.json"

// Progress описывает состояние прогона после очередного файла.
type Progress struct {
	Index     int // сколько файлов уже готово
	Total     int
	Entry     entity.BatchEntry
	Elapsed   time.Duration
	Remaining time.Duration // оценка по среднему времени на файл
}

// BatchOptions настройки прогона.
type BatchOptions struct {
	Workers  int // 0 или 1: по одному файлу
	Progress func(Progress)
}

// BatchService обрабатывает все снимки каталога и собирает отчёт.
type BatchService struct {
	measurements *MeasurementService
	jsonWriter   port.ReportWriter
	xlsxWriter   port.ReportWriter // nil: без книги Excel
	logger       *zap.Logger
	now          func() time.Time
}

// NewBatchService создаёт сервис пакетной обработки.
func NewBatchService(measurements *MeasurementService, jsonWriter, xlsxWriter port.ReportWriter, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		measurements: measurements,
		jsonWriter:   jsonWriter,
		xlsxWriter:   xlsxWriter,
		logger:       logger,
		now:          time.Now,
	}
}

// Discover возвращает отсортированный список снимков каталога без обхода подкаталогов.
func (s *BatchService) Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entity.ErrDirectoryNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !entity.IsImageFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// ProcessDirectory замеряет каждый снимок каталога. Ошибка одного файла не останавливает прогон.
func (s *BatchService) ProcessDirectory(ctx context.Context, dir string, opts BatchOptions) (*entity.BatchReport, error) {
	files, err := s.Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", entity.ErrNoImages, dir)
	}

	runID := uuid.NewString()
	total := len(files)
	s.logger.Info("batch started",
		zap.String("run_id", runID),
		zap.String("dir", dir),
		zap.Int("files", total),
		zap.Int("workers", max(opts.Workers, 1)),
	)

	entries := make([]entity.BatchEntry, total)
	start := s.now()

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry := s.processFile(gctx, path)
			entries[i] = entry

			mu.Lock()
			done++
			p := Progress{Index: done, Total: total, Entry: entry, Elapsed: s.now().Sub(start)}
			if done < total {
				avg := p.Elapsed / time.Duration(done)
				p.Remaining = avg * time.Duration(total-done)
			}
			if opts.Progress != nil {
				opts.Progress(p)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	elapsed := s.now().Sub(start).Seconds()
	rep := &entity.BatchReport{
		Summary: entity.BatchSummary{
			RunID:                      runID,
			TotalFiles:                 total,
			TotalProcessingTimeSeconds: round2(elapsed),
			AverageTimePerFile:         round2(elapsed / float64(total)),
			ProcessedAt:                s.now().Format(time.RFC3339Nano),
			InputDirectory:             dir,
			ModelUsed:                  s.measurements.ModelName(),
		},
		Results: entries,
	}
	for _, e := range entries {
		if e.Error != "" {
			rep.Summary.FailedFiles++
		} else {
			rep.Summary.SuccessfullyProcessed++
		}
		if e.DetectedLength != nil {
			rep.Summary.DetectedCount++
		}
	}

	s.logger.Info("batch complete",
		zap.String("run_id", runID),
		zap.Int("processed", rep.Summary.SuccessfullyProcessed),
		zap.Int("failed", rep.Summary.FailedFiles),
		zap.Int("detected", rep.Summary.DetectedCount),
		zap.Float64("seconds", rep.Summary.TotalProcessingTimeSeconds),
	)
	return rep, nil
}

// WriteReport пишет отчёт в каталог и возвращает пути созданных файлов.
func (s *BatchService) WriteReport(rep *entity.BatchReport, dir, name string) ([]string, error) {
	if s.jsonWriter == nil {
		return nil, fmt.Errorf("report writer is not configured")
	}

	jsonPath := filepath.Join(dir, NormalizeOutputName(name))
	if err := s.jsonWriter.WriteFile(jsonPath, rep); err != nil {
		return nil, fmt.Errorf("error saving results: %w", err)
	}
	paths := []string{jsonPath}

	if s.xlsxWriter != nil {
		xlsxPath := strings.TrimSuffix(jsonPath, ".json") + ".xlsx"
		if err := s.xlsxWriter.WriteFile(xlsxPath, rep); err != nil {
			return paths, fmt.Errorf("error saving xlsx: %w", err)
		}
		paths = append(paths, xlsxPath)
	}

	s.logger.Info("results saved", zap.Strings("paths", paths))
	return paths, nil
}

// NormalizeOutputName подставляет имя по умолчанию и расширение .json.
func NormalizeOutputName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultReportName
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name
}

func (s *BatchService) processFile(ctx context.Context, path string) entity.BatchEntry {
	started := s.now()
	reading := s.measurements.ProcessImage(ctx, entity.SourceBatch, path)
	took := s.now().Sub(started)

	return entity.BatchEntry{
		Reading:               *reading,
		Filename:              filepath.Base(path),
		Filepath:              path,
		ProcessedAt:           s.now().Format(time.RFC3339Nano),
		ProcessingTimeSeconds: round2(took.Seconds()),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
