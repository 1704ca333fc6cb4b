package entity

const (
	MethodDual       = "Dual Image Analysis"
	MethodDualFailed = "Dual Image Analysis - Failed"
)

// Comparison хранит результат сравнения двух снимков.
type Comparison struct {
	Image1Result         *Reading `json:"image1_result"`
	Image2Result         *Reading `json:"image2_result"`
	Image1Path           string   `json:"image1_path,omitempty"`
	Image2Path           string   `json:"image2_path,omitempty"`
	Difference           *float64 `json:"difference"`      // |первое - второе| в метрах
	DifferenceUnit       string   `json:"difference_unit"` // meters или N/A
	DifferenceConfidence int      `json:"difference_confidence"`
	Method               string   `json:"method"`
	Error                string   `json:"error,omitempty"`

	Cause error `json:"-"` // исходная ошибка неудачного сравнения
}

// HasDifference сообщает, удалось ли посчитать разницу.
func (c *Comparison) HasDifference() bool {
	return c != nil && c.Difference != nil
}
