package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/openai"
	"habittracker/internal/settings"
)

type SettingsHandler struct {
	store  settings.Store
	logger *zap.Logger
}

func NewSettingsHandler(store settings.Store, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

// GetSettings 返回提醒开关与 Key 覆盖状态（不回传 Key 本身）
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()

	reminderTime, err := h.store.Get(ctx, settings.KeyReminderTime)
	if err != nil {
		h.logger.Error("GetSettings: failed to read settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}
	override, err := h.store.Get(ctx, settings.KeyAPIKeyOverride)
	if err != nil {
		h.logger.Error("GetSettings: failed to read settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminder_enabled": settings.GetBool(ctx, h.store, settings.KeyReminderEnabled, false),
		"reminder_time":    reminderTime,
		"has_key_override": override != "",
	})
}

type settingsRequest struct {
	ReminderEnabled *bool   `json:"reminder_enabled"`
	ReminderTime    *string `json:"reminder_time"`
	APIKeyOverride  *string `json:"api_key_override"`
}

// UpdateSettings 局部更新：只修改请求里出现的字段。
// api_key_override 传空字符串表示清除覆盖，非空时校验格式。
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	if req.APIKeyOverride != nil {
		key := *req.APIKeyOverride
		if key == "" {
			if err := h.store.Delete(ctx, settings.KeyAPIKeyOverride); err != nil {
				h.logger.Error("UpdateSettings: failed to clear key override", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
				return
			}
		} else {
			if !openai.IsLikelyValidKey(key) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "API Key 格式无效（需以 sk- 开头且长度不少于 20）"})
				return
			}
			if err := h.store.Set(ctx, settings.KeyAPIKeyOverride, key); err != nil {
				h.logger.Error("UpdateSettings: failed to save key override", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
				return
			}
		}
	}

	if req.ReminderEnabled != nil {
		if err := settings.SetBool(ctx, h.store, settings.KeyReminderEnabled, *req.ReminderEnabled); err != nil {
			h.logger.Error("UpdateSettings: failed to save reminder flag", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
			return
		}
	}

	if req.ReminderTime != nil {
		if err := h.store.Set(ctx, settings.KeyReminderTime, *req.ReminderTime); err != nil {
			h.logger.Error("UpdateSettings: failed to save reminder time", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
