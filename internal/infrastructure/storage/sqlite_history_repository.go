package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	source             TEXT    NOT NULL,
	image_name         TEXT    NOT NULL,
	detected_length    REAL,
	unit               TEXT    NOT NULL,
	confidence         INTEGER NOT NULL,
	method             TEXT    NOT NULL,
	model_used         TEXT    NOT NULL DEFAULT '',
	raw_text           TEXT    NOT NULL DEFAULT '',
	additional_numbers TEXT    NOT NULL DEFAULT '[]',
	error              TEXT    NOT NULL DEFAULT '',
	created_at         TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_created_at ON readings(created_at);`

// SQLiteHistoryRepository журнал замеров в файле SQLite
type SQLiteHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteHistoryRepository открывает (или создаёт) базу и накатывает схему.
func NewSQLiteHistoryRepository(ctx context.Context, path string, logger *zap.Logger) (*SQLiteHistoryRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite не любит параллельных писателей.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaReadings); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	logger.Info("history store opened", zap.String("path", path))
	return &SQLiteHistoryRepository{db: db, logger: logger}, nil
}

// Save добавляет замер в журнал
func (r *SQLiteHistoryRepository) Save(ctx context.Context, rec *entity.HistoryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	extra := rec.Reading.AdditionalNumbers
	if extra == nil {
		extra = []float64{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("encode additional numbers: %w", err)
	}

	var length sql.NullFloat64
	if rec.Reading.DetectedLength != nil {
		length = sql.NullFloat64{Float64: *rec.Reading.DetectedLength, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO readings (source, image_name, detected_length, unit, confidence, method,
		                      model_used, raw_text, additional_numbers, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Source), rec.ImageName, length, rec.Reading.Unit, rec.Reading.Confidence,
		rec.Reading.Method, rec.Reading.ModelUsed, rec.Reading.RawText, string(extraJSON),
		rec.Reading.Error, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// Recent возвращает последние замеры, новые первыми
func (r *SQLiteHistoryRepository) Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, image_name, detected_length, unit, confidence, method,
		       model_used, raw_text, additional_numbers, error, created_at
		FROM readings
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []entity.HistoryRecord
	for rows.Next() {
		var (
			rec       entity.HistoryRecord
			source    string
			length    sql.NullFloat64
			extraJSON string
			created   string
		)
		if err := rows.Scan(&rec.ID, &source, &rec.ImageName, &length, &rec.Reading.Unit,
			&rec.Reading.Confidence, &rec.Reading.Method, &rec.Reading.ModelUsed,
			&rec.Reading.RawText, &extraJSON, &rec.Reading.Error, &created); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		rec.Source = entity.Source(source)
		if length.Valid {
			v := length.Float64
			rec.Reading.DetectedLength = &v
		}
		if err := json.Unmarshal([]byte(extraJSON), &rec.Reading.AdditionalNumbers); err != nil {
			r.logger.Warn("bad additional_numbers in history", zap.Int64("id", rec.ID), zap.Error(err))
			rec.Reading.AdditionalNumbers = []float64{}
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close закрывает базу
func (r *SQLiteHistoryRepository) Close() error {
	return r.db.Close()
}

var _ port.HistoryRepository = (*SQLiteHistoryRepository)(nil)
