package httpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habittracker/internal/handler"
	"habittracker/internal/settings"
	"habittracker/pkg/metrics"
	"habittracker/pkg/mq"
	"habittracker/pkg/trace"
)

type Handlers struct {
	Habits        *handler.HabitHandler
	Stats         *handler.StatsHandler
	Reviews       *handler.ReviewHandler
	Suggestions   *handler.SuggestionHandler
	Subscriptions *handler.SubscriptionHandler
	Settings      *handler.SettingsHandler
}

func NewRouter(h Handlers, logger *zap.Logger, db *pgxpool.Pool, store *settings.RedisStore, publisher *mq.Publisher) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// trace_id 注入：优先取请求头，没有就生成一个
	r.Use(func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	})

	// 请求日志 + 延迟指标
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequestDuration(c.Request.Method, c.FullPath(), fmt.Sprintf("%d", status), latency)

		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
		)
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if store != nil {
			if err := store.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/habits", h.Habits.CreateHabit)
	r.GET("/habits", h.Habits.ListHabits)
	r.PUT("/habits/:id", h.Habits.RenameHabit)
	r.DELETE("/habits/:id", h.Habits.DeleteHabit)
	r.PUT("/habits/:id/records/:date", h.Habits.UpsertRecord)
	r.GET("/habits/:id/stats", h.Stats.HabitStats)

	r.GET("/records", h.Habits.ListRecords)
	r.GET("/stats", h.Stats.Overview)

	r.GET("/reviews/:date", h.Reviews.GetReview)
	r.PUT("/reviews/:date", h.Reviews.SaveReview)

	r.POST("/suggestions/daily", h.Suggestions.GenerateDaily)
	r.POST("/suggestions/weekly", h.Suggestions.GenerateWeekly)
	r.GET("/suggestions/weekly", h.Suggestions.CachedWeekly)

	r.GET("/subscription", h.Subscriptions.GetSubscription)
	r.PUT("/subscription", h.Subscriptions.SetSubscription)
	r.POST("/subscription/refresh", h.Subscriptions.Refresh)
	r.POST("/subscription/purchase", h.Subscriptions.Purchase)
	r.POST("/subscription/restore", h.Subscriptions.Restore)

	r.GET("/settings", h.Settings.GetSettings)
	r.PUT("/settings", h.Settings.UpdateSettings)

	return r
}
