package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/service"
)

type SuggestionHandler struct {
	suggestions *service.SuggestionService
	logger      *zap.Logger
}

func NewSuggestionHandler(suggestions *service.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions, logger: logger}
}

// GenerateDaily 生成今日建议（AI 或规则表降级，总会产出文本）
func (h *SuggestionHandler) GenerateDaily(c *gin.Context) {
	suggestion, err := h.suggestions.GenerateDaily(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Daily suggestion generated", zap.Bool("fallback", suggestion.Fallback))
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

// GenerateWeekly 生成本周总结（订阅用户才走 AI 路径）
func (h *SuggestionHandler) GenerateWeekly(c *gin.Context) {
	suggestion, err := h.suggestions.GenerateWeekly(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Weekly summary generated", zap.Bool("fallback", suggestion.Fallback))
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

// CachedWeekly 返回本周已缓存的总结
func (h *SuggestionHandler) CachedWeekly(c *gin.Context) {
	text, ok := h.suggestions.CachedWeekly(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached summary for current week"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": text})
}
