package measure

import "strings"

const baseConfidence = 50

var (
	measurementTerms = []string{"meter", "meters", "m", "measurement", "length", "fiber"}
	certaintyWords   = []string{"clearly", "shows", "reads", "indicates", "visible"}
	uncertaintyWords = []string{"might", "appears", "seems", "possibly", "unclear"}
)

// BaseConfidence задаёт уверенность, когда число не найдено.
func BaseConfidence() int { return baseConfidence }

// Confidence оценивает уверенность по формулировкам ответа модели.
func Confidence(text string, value float64) int {
	lower := strings.ToLower(text)
	score := baseConfidence

	for _, term := range measurementTerms {
		if strings.Contains(lower, term) {
			score += 10
			break
		}
	}

	if strings.Contains(text, formatDecimal(value)) &&
		(strings.Contains(lower, "m") || strings.Contains(lower, "meter")) {
		score += 20
	}

	for _, w := range certaintyWords {
		if strings.Contains(lower, w) {
			score += 5
		}
	}
	for _, w := range uncertaintyWords {
		if strings.Contains(lower, w) {
			score -= 10
		}
	}

	return clamp(score, 0, 100)
}

// Level задаёт словесную оценку уверенности.
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

// LevelOf переводит число в уровень: >=80 высокий, >=50 средний.
func LevelOf(confidence int) Level {
	switch {
	case confidence >= 80:
		return LevelHigh
	case confidence >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DifferenceConfidence считает уверенность в разнице двух замеров по худшему из них.
func DifferenceConfidence(a, b int, hasDifference bool) int {
	if !hasDifference {
		return 0
	}
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
