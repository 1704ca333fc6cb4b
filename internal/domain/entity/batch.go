package entity

// BatchEntry хранит результат по одному файлу пакетной обработки.
type BatchEntry struct {
	Reading
	Filename              string  `json:"filename"`
	Filepath              string  `json:"filepath"`
	ProcessedAt           string  `json:"processed_at"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// BatchSummary содержит сводку по всему прогону.
type BatchSummary struct {
	RunID                      string  `json:"run_id"`
	TotalFiles                 int     `json:"total_files"`
	SuccessfullyProcessed      int     `json:"successfully_processed"`
	FailedFiles                int     `json:"failed_files"`
	DetectedCount              int     `json:"detected_count"`
	TotalProcessingTimeSeconds float64 `json:"total_processing_time_seconds"`
	AverageTimePerFile         float64 `json:"average_time_per_file"`
	ProcessedAt                string  `json:"processed_at"`
	InputDirectory             string  `json:"input_directory"`
	ModelUsed                  string  `json:"model_used,omitempty"`
}

// BatchReport описывает содержимое итогового JSON-отчёта.
type BatchReport struct {
	Summary BatchSummary `json:"processing_summary"`
	Results []BatchEntry `json:"results"`
}

// Detected возвращает записи, в которых найдена длина.
func (r *BatchReport) Detected() []BatchEntry {
	out := make([]BatchEntry, 0, len(r.Results))
	for _, e := range r.Results {
		if e.DetectedLength != nil {
			out = append(out, e)
		}
	}
	return out
}
