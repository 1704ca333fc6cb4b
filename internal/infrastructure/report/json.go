// Package report сериализует результаты замеров в JSON, XLSX и текст.
package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/port"
)

//go:embed batch_report.schema.json
var batchReportSchema []byte

const schemaName = "batch_report.schema.json"

// JSONWriter пишет пакетный отчёт, предварительно сверяя его со схемой.
type JSONWriter struct {
	schema *jsonschema.Schema
}

// NewJSONWriter компилирует встроенную схему отчёта.
func NewJSONWriter() (*JSONWriter, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(batchReportSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &JSONWriter{schema: schema}, nil
}

// Marshal возвращает отчёт с отступом в два пробела.
func (w *JSONWriter) Marshal(rep *entity.BatchReport) ([]byte, error) {
	data, err := MarshalIndent(rep)
	if err != nil {
		return nil, err
	}
	if err := w.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Validate проверяет JSON по схеме отчёта.
func (w *JSONWriter) Validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := w.schema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

// WriteFile сохраняет отчёт в файл.
func (w *JSONWriter) WriteFile(path string, rep *entity.BatchReport) error {
	data, err := w.Marshal(rep)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// MarshalIndent сериализует любой результат так же, как отчёт.
func MarshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

// WriteJSON сохраняет одиночный результат или сравнение.
func WriteJSON(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var _ port.ReportWriter = (*JSONWriter)(nil)
