// Package measure извлекает длину волокна из текстового ответа модели
// и оценивает уверенность по ключевым словам.
package measure

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Prompt содержит запрос, который отправляется модели вместе с изображением.
const Prompt = "Extract the handwritten number in meters from this image."

var (
	// число, за которым может идти "m" или " meters"; цифры любой письменности
	reLength = regexp.MustCompile(`(\p{Nd}+(?:\.\p{Nd}+)?)(?:\s*m| meters)?`)
	reNumber = regexp.MustCompile(`\p{Nd}+(?:\.\p{Nd}+)?`)
)

// ExtractLength ищет первое число в ответе модели.
// Остальные числа возвращаются отдельно, в порядке появления.
func ExtractLength(text string) (*float64, []float64) {
	lower := strings.ToLower(text)
	additional := []float64{}

	m := reLength.FindStringSubmatch(lower)
	if m == nil {
		return nil, additional
	}
	v, err := parseNumber(m[1])
	if err != nil {
		return nil, additional
	}

	all := reNumber.FindAllString(lower, -1)
	for _, s := range all[1:] {
		if f, err := parseNumber(s); err == nil {
			additional = append(additional, f)
		}
	}
	return &v, additional
}

// Difference возвращает |a-b|, если оба значения есть.
func Difference(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	if d < 0 {
		d = -d
	}
	return &d
}

// parseNumber переводит цифры любой письменности в ASCII и разбирает число.
func parseNumber(s string) (float64, error) {
	ascii := strings.Map(func(r rune) rune {
		if d, ok := digitValue(r); ok {
			return '0' + rune(d)
		}
		return r
	}, s)
	return strconv.ParseFloat(ascii, 64)
}

// digitValue возвращает значение десятичной цифры. Диапазоны unicode.Nd
// начинаются с нуля и идут блоками по десять.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) / int(rg.Stride) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) / int(rg.Stride) % 10, true
		}
	}
	return 0, false
}

// formatDecimal печатает число с обязательной дробной частью: 12 -> "12.0".
// Очень малые и очень большие значения идут в экспоненциальной записи: 1e-05, 1e+16.
func formatDecimal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
