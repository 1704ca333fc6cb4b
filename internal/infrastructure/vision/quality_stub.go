//go:build !gocv
// +build !gocv

package vision

// QualityGateAvailable сообщает, собрана ли проверка качества с OpenCV.
const QualityGateAvailable = false

// QualityGate без тега gocv ничего не проверяет.
type QualityGate struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// NewQualityGate создаёт проверку-заглушку (без OpenCV).
func NewQualityGate() *QualityGate {
	return &QualityGate{
		MinImageSide:          200,
		MinSharpnessEdgeRatio: 0.004,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// Check всегда пропускает изображение, если сборка без тега gocv.
func (g *QualityGate) Check(imageData []byte) error {
	_ = imageData
	return nil
}
