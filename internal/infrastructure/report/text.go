package report

import (
	"fmt"
	"strconv"
	"strings"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/measure"
)

const (
	ruleWide   = 60
	ruleNarrow = 40
)

// RenderReading печатает результат одного изображения с полным JSON в конце.
func RenderReading(r *entity.Reading) string {
	var sb strings.Builder
	sb.WriteString("SINGLE IMAGE ANALYSIS RESULTS\n")
	sb.WriteString(strings.Repeat("=", ruleWide) + "\n\n")

	if r.Detected() {
		fmt.Fprintf(&sb, "DETECTED LENGTH: %s %s\n", FormatNumber(r.Length()), r.Unit)
		fmt.Fprintf(&sb, "CONFIDENCE: %d%%\n", r.Confidence)
		fmt.Fprintf(&sb, "STATUS: %s CONFIDENCE\n\n", measure.LevelOf(r.Confidence))
	} else {
		sb.WriteString("NO LENGTH DETECTED\n\n")
	}

	sb.WriteString("ADDITIONAL DETAILS:\n")
	sb.WriteString(strings.Repeat("-", ruleNarrow) + "\n")
	fmt.Fprintf(&sb, "Method: %s\n", orNA(r.Method))
	fmt.Fprintf(&sb, "Model Used: %s\n", orNA(r.ModelUsed))

	if r.RawText != "" {
		fmt.Fprintf(&sb, "\nRaw AI Response:\n%s\n", r.RawText)
	}
	if len(r.AdditionalNumbers) > 0 {
		fmt.Fprintf(&sb, "\nOther Numbers Found: %s\n", joinNumbers(r.AdditionalNumbers))
	}

	writeFullJSON(&sb, r)
	return sb.String()
}

// RenderComparison печатает результат сравнения двух снимков.
func RenderComparison(c *entity.Comparison) string {
	var sb strings.Builder
	sb.WriteString("DUAL IMAGE COMPARISON RESULTS\n")
	sb.WriteString(strings.Repeat("=", ruleWide) + "\n\n")

	if c.Error != "" {
		fmt.Fprintf(&sb, "Failed to process image(s).\nError: %s\n\n", c.Error)
	}

	if c.HasDifference() {
		fmt.Fprintf(&sb, "FIBER LENGTH DIFFERENCE: %s meters\n", FormatNumber(*c.Difference))
		fmt.Fprintf(&sb, "DIFFERENCE CONFIDENCE: %d%%\n\n", c.DifferenceConfidence)
		fmt.Fprintf(&sb, "STATUS: %s CONFIDENCE COMPARISON\n\n", measure.LevelOf(c.DifferenceConfidence))
	} else {
		sb.WriteString("COULD NOT CALCULATE DIFFERENCE\n\n")
	}

	sb.WriteString("INDIVIDUAL RESULTS SUMMARY:\n")
	sb.WriteString(strings.Repeat("-", ruleNarrow) + "\n")
	writeImageSummary(&sb, "IMAGE 1", c.Image1Result)
	writeImageSummary(&sb, "IMAGE 2", c.Image2Result)

	writeFullJSON(&sb, c)
	return sb.String()
}

// RenderPanel печатает короткую сводку по одному снимку (без JSON).
func RenderPanel(r *entity.Reading) string {
	if r == nil {
		return "NO RESULT\n"
	}
	var sb strings.Builder
	if r.Detected() {
		fmt.Fprintf(&sb, "Detected Length: %s %s\n", FormatNumber(r.Length()), r.Unit)
		fmt.Fprintf(&sb, "Confidence: %d%%\n", r.Confidence)
		fmt.Fprintf(&sb, "Status: %s CONFIDENCE\n\n", measure.LevelOf(r.Confidence))
	} else {
		sb.WriteString("NO LENGTH DETECTED\n\n")
	}
	fmt.Fprintf(&sb, "Method: %s\n", orNA(r.Method))
	if len(r.AdditionalNumbers) > 0 {
		fmt.Fprintf(&sb, "Other Numbers: %s\n", joinNumbers(r.AdditionalNumbers))
	}
	if r.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", r.Error)
	}
	return sb.String()
}

// FormatNumber печатает число без лишних нулей.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeImageSummary(sb *strings.Builder, title string, r *entity.Reading) {
	fmt.Fprintf(sb, "%s:\n", title)
	length := "Not detected"
	conf := 0
	if r != nil {
		if r.Detected() {
			length = FormatNumber(r.Length())
		}
		conf = r.Confidence
	}
	fmt.Fprintf(sb, "   Length: %s meters\n", length)
	fmt.Fprintf(sb, "   Confidence: %d%%\n\n", conf)
}

func writeFullJSON(sb *strings.Builder, v any) {
	sb.WriteString("\n" + strings.Repeat("=", ruleWide) + "\n")
	sb.WriteString("FULL JSON RESULT:\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	data, err := MarshalIndent(v)
	if err != nil {
		fmt.Fprintf(sb, "<%v>\n", err)
		return
	}
	sb.Write(data)
	sb.WriteString("\n")
}

func joinNumbers(nums []float64) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = FormatNumber(n)
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return entity.UnitNA
	}
	return s
}
