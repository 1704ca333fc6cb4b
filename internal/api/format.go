package telegram

import (
	"fmt"
	"strings"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/measure"
	"fiber-meter/internal/infrastructure/report"
)

func formatReading(r *entity.Reading) string {
	var sb strings.Builder
	if r.Detected() {
		fmt.Fprintf(&sb, "📏 Длина: %s м\n", report.FormatNumber(r.Length()))
		fmt.Fprintf(&sb, "🎯 Уверенность: %d%% (%s)\n", r.Confidence, measure.LevelOf(r.Confidence))
	} else {
		sb.WriteString("🔍 Длина не найдена.\n")
	}
	if len(r.AdditionalNumbers) > 0 {
		parts := make([]string, len(r.AdditionalNumbers))
		for i, n := range r.AdditionalNumbers {
			parts[i] = report.FormatNumber(n)
		}
		fmt.Fprintf(&sb, "🔢 Другие числа: %s\n", strings.Join(parts, ", "))
	}
	if r.RawText != "" {
		fmt.Fprintf(&sb, "\n💬 Ответ модели:\n%s", r.RawText)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatComparison(c *entity.Comparison) string {
	if c.Error != "" {
		return "⚠️ Не удалось сравнить фото: " + c.Error
	}

	var sb strings.Builder
	if c.HasDifference() {
		fmt.Fprintf(&sb, "📐 Разница длин: %s м\n", report.FormatNumber(*c.Difference))
		fmt.Fprintf(&sb, "🎯 Уверенность: %d%% (%s)\n\n", c.DifferenceConfidence, measure.LevelOf(c.DifferenceConfidence))
	} else {
		sb.WriteString("⚠️ Не удалось посчитать разницу: число найдено не на обоих фото.\n\n")
	}
	writeShort(&sb, "Фото 1", c.Image1Result)
	writeShort(&sb, "Фото 2", c.Image2Result)
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(records []entity.HistoryRecord) string {
	var sb strings.Builder
	sb.WriteString("🗂 Последние замеры:\n")
	for _, rec := range records {
		length := "—"
		if rec.Reading.Detected() {
			length = report.FormatNumber(rec.Reading.Length()) + " м"
		}
		fmt.Fprintf(&sb, "• %s %s: %s (%d%%)\n",
			rec.CreatedAt.Format("02.01 15:04"), rec.ImageName, length, rec.Reading.Confidence)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeShort(sb *strings.Builder, title string, r *entity.Reading) {
	if r.Detected() {
		fmt.Fprintf(sb, "%s: %s м (%d%%)\n", title, report.FormatNumber(r.Length()), r.Confidence)
		return
	}
	fmt.Fprintf(sb, "%s: не найдено\n", title)
}
