package service

// 规则表降级建议：AI 不可用或调用失败时使用。
// 纯函数，相同输入必然产生相同输出。

// 完成率分层阈值
const (
	highTierRate   = 0.8
	mediumTierRate = 0.5
)

// dailyFallback 按平均完成率分层、再按今日完成情况细分的固定文案
func dailyFallback(averageRate float64, completedToday, totalHabits int) string {
	switch {
	case averageRate >= highTierRate:
		if totalHabits > 0 && completedToday == totalHabits {
			return "太棒了！今天所有习惯都完成了，继续保持这个完美的节奏！"
		}
		return "你的完成率很高，试着把剩余的习惯也完成，今天就能达到100%了！"
	case averageRate >= mediumTierRate:
		if completedToday > 0 {
			return "不错的开始！试着把最重要的习惯放在早上完成，这样成功率会更高。"
		}
		return "今天还没开始，选择一个最简单的习惯先完成，建立信心。"
	default:
		if completedToday > 0 {
			return "很好，至少完成了一个习惯。明天试着完成更多，慢慢建立习惯。"
		}
		return "没关系，重新开始总是需要勇气的。选择一个习惯，从今天开始。"
	}
}

// weeklyFallback 仅按平均完成率分层的周总结固定文案
func weeklyFallback(averageRate float64) string {
	switch {
	case averageRate >= highTierRate:
		return "本周完成率很高，保持当前节奏，下周可以微调时间段提升稳定性。"
	case averageRate >= mediumTierRate:
		return "本周有一定进展，挑一到两个关键习惯放到精力最好的时段去做，提升成功率。"
	default:
		return "本周完成度偏低，先挑一个最重要且最容易执行的习惯，设定固定时间坚持一周。"
	}
}
