package app

import (
	"context"
	"errors"
	"sync"

	"fiber-meter/internal/domain/entity"
)

// fakeModel отвечает заранее заданным текстом в зависимости от содержимого снимка.
type fakeModel struct {
	mu        sync.Mutex
	responses map[string]string
	prompts   []string
}

func newFakeModel(responses map[string]string) *fakeModel {
	return &fakeModel{responses: responses}
}

func (m *fakeModel) Describe(ctx context.Context, prompt string, image []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	text, ok := m.responses[string(image)]
	if !ok {
		return "", errors.New("model unavailable")
	}
	return text, nil
}

func (m *fakeModel) Name() string  { return "ollama" }
func (m *fakeModel) Model() string { return "llava-phi3" }

type memoryHistory struct {
	mu      sync.Mutex
	records []entity.HistoryRecord
}

func (h *memoryHistory) Save(ctx context.Context, rec *entity.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec.ID = int64(len(h.records) + 1)
	h.records = append(h.records, *rec)
	return nil
}

func (h *memoryHistory) Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]entity.HistoryRecord, 0, len(h.records))
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

type countingPreprocessor struct {
	calls  int
	reject error
}

func (p *countingPreprocessor) Prepare(ctx context.Context, data []byte) ([]byte, error) {
	p.calls++
	if p.reject != nil {
		return nil, p.reject
	}
	return data, nil
}
