package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/service"
)

type StatsHandler struct {
	habits *service.HabitService
	stats  *service.StatsService
	logger *zap.Logger
}

func NewStatsHandler(habits *service.HabitService, stats *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{habits: habits, stats: stats, logger: logger}
}

// HabitStats 单个习惯的完成率
func (h *StatsHandler) HabitStats(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	days := service.DefaultRateWindowDays
	if raw := c.Query("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
	}

	rate := h.stats.CompletionRate(c.Request.Context(), id, days)
	c.JSON(http.StatusOK, gin.H{
		"habit_id":        id,
		"days":            days,
		"completion_rate": rate,
	})
}

// Overview 全局汇总：聚合统计 + 连续打卡天数
func (h *StatsHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	habits, err := h.habits.List(ctx)
	if err != nil {
		h.logger.Error("Overview: failed to fetch habits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch habits"})
		return
	}

	stats := h.stats.Aggregate(ctx, habits)
	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"average_rate": stats.AverageRate(),
		"streak":       h.stats.CurrentStreak(ctx),
	})
}
