package port

import "fiber-meter/internal/domain/entity"

// ReportWriter сохраняет пакетный отчёт в файл
type ReportWriter interface {
	WriteFile(path string, report *entity.BatchReport) error
}
