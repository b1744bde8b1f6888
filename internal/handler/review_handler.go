package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	day, err := parseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	rev, err := h.reviews.Get(c.Request.Context(), day)
	if err != nil {
		h.logger.Error("GetReview failed", zap.Time("date", day), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch review"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": rev})
}

type reviewRequest struct {
	Text string `json:"text"`
}

func (h *ReviewHandler) SaveReview(c *gin.Context) {
	day, err := parseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rev, err := h.reviews.Save(c.Request.Context(), day, req.Text)
	if err != nil {
		if !service.IsValidation(err) {
			h.logger.Error("SaveReview failed", zap.Time("date", day), zap.Error(err))
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": rev})
}
