package service

import (
	"fmt"
	"strings"

	"habittracker/internal/model"
)

// buildDailyPrompt 渲染每日建议提示词。
// 包含平均7日完成率、今日完成/跳过数量和当天复盘文本；复盘为空时用"无"占位。
func buildDailyPrompt(stats model.AggregateStats, reviewText string) string {
	total := stats.HabitCount
	if total == 0 {
		total = 1
	}
	averageRate := stats.TotalCompletionRate / float64(total)

	reviewText = strings.TrimSpace(reviewText)
	if reviewText == "" {
		reviewText = "无"
	}

	return fmt.Sprintf(
		"过去7天平均完成率：%d%%\n今日完成情况：已完成 %d / %d，跳过 %d\n今日复盘：%s\n请输出 1 句中文的具体可执行建议，不要复述输入。",
		int(averageRate*100),
		stats.CompletedToday,
		total,
		stats.SkippedToday,
		reviewText,
	)
}

// habitReportLine 周报中的单个习惯行
func habitReportLine(title string, rate float64, todayStatus model.RecordStatus) string {
	return fmt.Sprintf("- %s: 7日完成率 %d%%，%s", title, int(rate*100), todayStatus.Label())
}

// buildWeeklyReport 渲染周总结提示词：逐习惯完成率 + 整体平均 + 本周复盘摘录
func buildWeeklyReport(lines []string, averageRate float64, reviewText string) string {
	reviewText = strings.TrimSpace(reviewText)
	if reviewText == "" {
		reviewText = "本周暂无特别复盘"
	}

	return fmt.Sprintf(
		"整体7日平均完成率：%d%%\n习惯列表：\n%s\n本周复盘摘录：%s\n请输出一段中文周总结，聚焦可执行改进，不要复述输入。",
		int(averageRate*100),
		strings.Join(lines, "\n"),
		reviewText,
	)
}
