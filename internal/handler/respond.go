package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"habittracker/internal/dateutil"
	"habittracker/internal/repository"
	"habittracker/internal/service"
)

// respondError 统一错误到 HTTP 状态码的映射
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGenerationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "生成请求正在进行中，请稍后再试"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseDay 解析 YYYY-MM-DD 路径参数为本地自然日
func parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation(dateutil.DayFormat, raw, time.Local)
}
