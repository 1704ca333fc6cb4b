package report

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/measure"
	"fiber-meter/internal/domain/port"
)

const readingsSheet = "Readings"

// XLSX собирает книгу Excel с одной строкой на файл.
func XLSX(rep *entity.BatchReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(readingsSheet); index == -1 {
		if _, err := f.NewSheet(readingsSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(readingsSheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Filename",
		"Detected Length",
		"Unit",
		"Confidence",
		"Level",
		"Processing Time (s)",
		"Other Numbers",
		"Raw Response",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(readingsSheet, cell, h)
	}

	for i, e := range rep.Results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(readingsSheet, cell, v)
		}

		write(1, e.Filename)
		if e.DetectedLength != nil {
			write(2, *e.DetectedLength)
			write(5, string(measure.LevelOf(e.Confidence)))
		} else {
			write(2, "Not detected")
			write(5, "")
		}
		write(3, e.Unit)
		write(4, e.Confidence)
		write(6, e.ProcessingTimeSeconds)
		write(7, joinNumbers(e.AdditionalNumbers))
		write(8, truncate(e.RawText, 500))
		write(9, e.Error)
	}

	_ = f.SetColWidth(readingsSheet, "A", "A", 28)
	_ = f.SetColWidth(readingsSheet, "B", "F", 16)
	_ = f.SetColWidth(readingsSheet, "G", "G", 20)
	_ = f.SetColWidth(readingsSheet, "H", "H", 60)
	_ = f.SetColWidth(readingsSheet, "I", "I", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX сохраняет книгу Excel рядом с JSON-отчётом.
func WriteXLSX(path string, rep *entity.BatchReport) error {
	data, err := XLSX(rep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// XLSXWriter ReportWriter для книги Excel.
type XLSXWriter struct{}

// WriteFile реализует port.ReportWriter.
func (XLSXWriter) WriteFile(path string, rep *entity.BatchReport) error {
	return WriteXLSX(path, rep)
}

var _ port.ReportWriter = XLSXWriter{}
