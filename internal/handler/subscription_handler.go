package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/entitlement"
)

type SubscriptionHandler struct {
	manager *entitlement.Manager
	logger  *zap.Logger
}

func NewSubscriptionHandler(manager *entitlement.Manager, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{manager: manager, logger: logger}
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"is_subscribed": h.manager.IsSubscribed()})
}

type subscriptionRequest struct {
	IsSubscribed bool `json:"is_subscribed"`
}

// SetSubscription 手动切换订阅状态（幂等）
func (h *SubscriptionHandler) SetSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.manager.SetSubscribed(c.Request.Context(), req.IsSubscribed); err != nil {
		h.logger.Error("SetSubscription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_subscribed": h.manager.IsSubscribed()})
}

// Refresh 从权益源刷新订阅状态，失败保留缓存值
func (h *SubscriptionHandler) Refresh(c *gin.Context) {
	h.manager.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"is_subscribed": h.manager.IsSubscribed()})
}

func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	ok, err := h.manager.Purchase(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "购买失败，请稍后重试"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       ok,
		"is_subscribed": h.manager.IsSubscribed(),
	})
}

func (h *SubscriptionHandler) Restore(c *gin.Context) {
	ok, err := h.manager.Restore(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "恢复购买失败，请稍后重试"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restored":      ok,
		"is_subscribed": h.manager.IsSubscribed(),
	})
}
