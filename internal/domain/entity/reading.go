package entity

const (
	UnitMeters = "meters" // единица измерения длины волокна
	UnitNA     = "N/A"    // единица, когда число не найдено
)

// Reading хранит результат анализа одного изображения.
type Reading struct {
	DetectedLength    *float64  `json:"detected_length"`    // длина в метрах, nil если не найдена
	Unit              string    `json:"unit"`               // meters или N/A
	Confidence        int       `json:"confidence"`         // эвристическая уверенность 0..100
	Method            string    `json:"method"`             // например "Ollama Model"
	RawText           string    `json:"raw_text"`           // ответ модели без пробелов по краям
	AdditionalNumbers []float64 `json:"additional_numbers"` // остальные числа из ответа
	ModelUsed         string    `json:"model_used,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// Detected сообщает, удалось ли извлечь длину.
func (r *Reading) Detected() bool {
	return r != nil && r.DetectedLength != nil
}

// Length возвращает найденную длину или 0.
func (r *Reading) Length() float64 {
	if !r.Detected() {
		return 0
	}
	return *r.DetectedLength
}

// NewFailedReading собирает результат для изображения, которое не удалось обработать.
func NewFailedReading(method string, err error) *Reading {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Reading{
		Unit:              UnitNA,
		Confidence:        0,
		Method:            method,
		RawText:           "Error: " + msg,
		AdditionalNumbers: []float64{},
		Error:             msg,
	}
}
