package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/service"
)

type HabitHandler struct {
	habits *service.HabitService
	logger *zap.Logger
}

func NewHabitHandler(habits *service.HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

type habitRequest struct {
	Title string `json:"title"`
}

func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), req.Title)
	if err != nil {
		if !service.IsValidation(err) {
			h.logger.Error("CreateHabit failed", zap.Error(err))
		}
		respondError(c, err)
		return
	}

	h.logger.Info("CreateHabit: success",
		zap.Int("habit_id", habit.ID),
		zap.String("title", habit.Title),
	)
	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

func (h *HabitHandler) ListHabits(c *gin.Context) {
	habits, err := h.habits.List(c.Request.Context())
	if err != nil {
		h.logger.Error("ListHabits: failed to fetch habits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch habits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *HabitHandler) RenameHabit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.habits.Rename(c.Request.Context(), id, req.Title); err != nil {
		if !service.IsValidation(err) {
			h.logger.Error("RenameHabit failed", zap.Int("habit_id", id), zap.Error(err))
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	if err := h.habits.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("DeleteHabit failed", zap.Int("habit_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	h.logger.Info("DeleteHabit: success", zap.Int("habit_id", id))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type recordRequest struct {
	Status int16  `json:"status"`
	Note   string `json:"note"`
}

// UpsertRecord 按 (habit, 日期) 创建或更新打卡记录
func (h *HabitHandler) UpsertRecord(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	day, err := parseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.habits.UpsertRecord(c.Request.Context(), id, day, model.RecordStatus(req.Status), req.Note)
	if err != nil {
		if !service.IsValidation(err) {
			h.logger.Error("UpsertRecord failed",
				zap.Int("habit_id", id),
				zap.Time("date", day),
				zap.Error(err),
			)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// ListRecords 返回某天所有习惯的打卡记录，默认今天
func (h *HabitHandler) ListRecords(c *gin.Context) {
	raw := c.Query("date")

	var day time.Time
	var err error
	if raw == "" {
		day = time.Now()
	} else if day, err = parseDay(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	records, err := h.habits.RecordsOn(c.Request.Context(), day)
	if err != nil {
		h.logger.Error("ListRecords failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}
