package entity

import "time"

// Source откуда пришёл замер
type Source string

const (
	SourceCLI   Source = "cli"
	SourceBatch Source = "batch"
	SourceBot   Source = "bot"
	SourceHTTP  Source = "http"
	SourceTUI   Source = "tui"
	SourceWatch Source = "watch"
)

// HistoryRecord сохранённый замер.
type HistoryRecord struct {
	ID        int64
	Source    Source
	ImageName string
	Reading   Reading
	CreatedAt time.Time
}
